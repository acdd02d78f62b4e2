// Package report renders doctor diagnoses and status history.
//
// Writers exist for three formats:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for scripts
//   - MarkdownWriter: Markdown for pasting into bug reports
//
// All of them implement Writer so the CLI picks one by flag and never
// looks at the format again.
package report
