package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/torbar/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown using
// nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteDiagnosis outputs the diagnosis as Markdown tables with an alert
// summarising the verdict.
func (w *MarkdownWriter) WriteDiagnosis(diag *model.Diagnosis) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("torbar doctor")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Check", "Result"},
		Rows: [][]string{
			{"Checked", diag.GeneratedAt.Format(timeLayout)},
			{"Service", "`" + diag.Unit + "` active: " + yesNo(diag.ServiceActive)},
			{"Bootstrap", strconv.Itoa(diag.Bootstrap) + "%"},
			{"SOCKS listener", "`" + diag.Socks.Address + "` " + diag.Socks.Result},
			{"Egress", egressText(diag.IsTor)},
			{"Status", statusText(diag.Status)},
			{"Next action", diag.Action.String()},
		},
	})
	md.PlainText("")

	w.writeVerdict(md, diag)
	w.writeArtifacts(md, diag)
	w.writeErrors(md, diag)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [torbar](https://github.com/nao1215/torbar)*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, diag *model.Diagnosis) {
	switch {
	case diag.Healthy():
		md.Tip("Tor routing is fully in place.")
	case !diag.ServiceActive && diag.ProxyEnv.Present:
		md.Warningf("Tor is not running but proxy settings are still installed; the next status run removes them.")
	case !diag.ServiceActive:
		md.Note("Tor is not running. Traffic goes out directly.")
	case diag.Bootstrap < 100:
		md.Importantf("Tor is bootstrapping (%d%%).", diag.Bootstrap)
	default:
		md.Warningf("Tor is running but routing is incomplete. Next action: %s.", diag.Action)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, diag *model.Diagnosis) {
	md.H2("Proxy artifacts")
	md.PlainText("")

	rows := [][]string{{"env file", "`" + diag.ProxyEnv.Path + "`", presentText(diag.ProxyEnv.Present)}}
	for _, r := range diag.Rules {
		state := presentText(r.Present)
		if r.Error != "" {
			state = "unknown"
		}
		rows = append(rows, []string{"nat rule", "`" + r.Rule + "`", state})
	}
	for _, f := range diag.FlagFiles {
		state := "not found"
		if f.Exists {
			state = strconv.Itoa(f.ProxyLines) + " proxy line(s)"
		}
		rows = append(rows, []string{"flag file", "`" + f.Path + "`", state})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Artifact", "Location", "State"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, diag *model.Diagnosis) {
	if len(diag.Errors) == 0 {
		return
	}
	md.H2("Errors")
	md.PlainText("")

	items := make([]string, 0, len(diag.Errors))
	for _, e := range diag.Errors {
		items = append(items, "**"+e.Step+"**: "+e.Message)
	}
	md.BulletList(items...)
	md.PlainText("")

	if hasRuleErrors(diag) {
		md.Details("Firewall inspection", firewallHint)
		md.PlainText("")
	}
}

// WriteHistory outputs the transitions as a table followed by a pie chart
// of the states entered.
func (w *MarkdownWriter) WriteHistory(transitions []model.Transition) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("torbar history")
	md.PlainText("")

	if len(transitions) == 0 {
		md.PlainText("No transitions recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(transitions))
	for i, tr := range transitions {
		rows[i] = []string{
			tr.Timestamp.Local().Format(timeLayout),
			statusText(tr.From),
			statusText(tr.To),
			strconv.Itoa(tr.Bootstrap) + "%",
			tr.Action.String(),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Time", "From", "To", "Bootstrap", "Action"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, transitions)

	return len(md.String()), md.Build()
}

// writePieChart counts how often each status was entered.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, transitions []model.Transition) {
	counts := make(map[model.Status]uint64)
	for _, tr := range transitions {
		counts[tr.To]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("States entered"),
		piechart.WithShowData(true),
	)
	for _, s := range []model.Status{model.StatusConnected, model.StatusConnecting, model.StatusStarting, model.StatusOff} {
		if counts[s] > 0 {
			chart.LabelAndIntValue(s.String(), counts[s])
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func presentText(b bool) string {
	if b {
		return "present"
	}
	return "missing"
}
