package report

import (
	"fmt"
	"io"

	"github.com/nao1215/torbar/internal/model"
)

// Format names accepted by NewWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Writer renders diagnoses and transition lists.
type Writer interface {
	// WriteDiagnosis outputs a doctor report.
	// Returns the number of bytes written and any error encountered.
	WriteDiagnosis(diag *model.Diagnosis) (int, error)

	// WriteHistory outputs transitions, newest first.
	WriteHistory(transitions []model.Transition) (int, error)
}

// NewWriter returns the Writer for format. version is embedded in JSON
// output.
func NewWriter(format string, output io.Writer, version string) (Writer, error) {
	switch format {
	case "", FormatText:
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint(), WithVersion(version)), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used for every timestamp in text and Markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// egressText describes the connectivity verdict.
func egressText(isTor *bool) string {
	switch {
	case isTor == nil:
		return "unknown"
	case *isTor:
		return "through Tor"
	default:
		return "direct (not Tor)"
	}
}

// statusText is the persisted status name, "none" for StatusNone.
func statusText(s model.Status) string {
	if s == model.StatusNone {
		return "none"
	}
	return s.String()
}

// firewallHint is shown when a rule could not be inspected.
const firewallHint = "checking nat rules needs root or a passwordless privilege command (privilege.command)"
