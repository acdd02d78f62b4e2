package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/torbar/internal/model"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is embedded in diagnosis output.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion sets the version reported alongside a diagnosis.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DiagnosisReport wraps a diagnosis with output metadata.
type DiagnosisReport struct {
	Version   string           `json:"version,omitempty"`
	Healthy   bool             `json:"healthy"`
	Diagnosis *model.Diagnosis `json:"diagnosis"`
}

// WriteDiagnosis outputs the diagnosis wrapped in a DiagnosisReport.
func (w *JSONWriter) WriteDiagnosis(diag *model.Diagnosis) (int, error) {
	return w.writeJSON(DiagnosisReport{
		Version:   w.version,
		Healthy:   diag.Healthy(),
		Diagnosis: diag,
	})
}

// WriteHistory outputs the transitions as a JSON array. An empty history
// is "[]", never "null".
func (w *JSONWriter) WriteHistory(transitions []model.Transition) (int, error) {
	if transitions == nil {
		transitions = []model.Transition{}
	}
	return w.writeJSON(transitions)
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
