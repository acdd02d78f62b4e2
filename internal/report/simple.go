package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/torbar/internal/model"
)

// SimpleWriter outputs human-readable text.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// WriteDiagnosis outputs the diagnosis as aligned text sections.
func (w *SimpleWriter) WriteDiagnosis(diag *model.Diagnosis) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("                      TORBAR DOCTOR\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Checked:        %s\n", diag.GeneratedAt.Format(timeLayout))
	fmt.Fprintf(&sb, "Service:        %s (active: %s)\n", diag.Unit, yesNo(diag.ServiceActive))
	fmt.Fprintf(&sb, "Bootstrap:      %d%%\n", diag.Bootstrap)
	fmt.Fprintf(&sb, "SOCKS listener: %s (%s)\n", diag.Socks.Address, diag.Socks.Result)
	fmt.Fprintf(&sb, "Egress:         %s\n", egressText(diag.IsTor))
	sb.WriteString("\n")

	w.writeArtifacts(&sb, diag)

	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Status:         %s\n", statusText(diag.Status))
	fmt.Fprintf(&sb, "Next action:    %s\n", diag.Action)
	if diag.Healthy() {
		sb.WriteString("Verdict:        healthy\n")
	} else {
		sb.WriteString("Verdict:        attention needed\n")
	}

	if len(diag.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range diag.Errors {
			fmt.Fprintf(&sb, "  - %s: %s\n", e.Step, e.Message)
		}
		if hasRuleErrors(diag) {
			fmt.Fprintf(&sb, "  (%s)\n", firewallHint)
		}
	}

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeArtifacts(sb *strings.Builder, diag *model.Diagnosis) {
	presence := "missing"
	if diag.ProxyEnv.Present {
		presence = "present"
	}
	fmt.Fprintf(sb, "Proxy env file: %s (%s)\n", diag.ProxyEnv.Path, presence)

	sb.WriteString("Redirection rules:\n")
	for _, r := range diag.Rules {
		mark := " "
		switch {
		case r.Error != "":
			mark = "?"
		case r.Present:
			mark = "x"
		}
		fmt.Fprintf(sb, "  [%s] %s\n", mark, r.Rule)
	}

	sb.WriteString("Browser flag files:\n")
	for _, f := range diag.FlagFiles {
		if !f.Exists {
			fmt.Fprintf(sb, "  %s: not found\n", f.Path)
			continue
		}
		fmt.Fprintf(sb, "  %s: %d proxy line(s)\n", f.Path, f.ProxyLines)
	}
	sb.WriteString("\n")
}

// WriteHistory outputs one line per transition.
func (w *SimpleWriter) WriteHistory(transitions []model.Transition) (int, error) {
	if len(transitions) == 0 {
		return w.output.Write([]byte("No transitions recorded.\n"))
	}

	var sb strings.Builder
	for _, tr := range transitions {
		fmt.Fprintf(&sb, "%s  %-10s -> %-10s %3d%%  %s\n",
			tr.Timestamp.Local().Format(timeLayout),
			statusText(tr.From),
			statusText(tr.To),
			tr.Bootstrap,
			tr.Action,
		)
	}
	return w.output.Write([]byte(sb.String()))
}

func hasRuleErrors(diag *model.Diagnosis) bool {
	for _, r := range diag.Rules {
		if r.Error != "" {
			return true
		}
	}
	return false
}
