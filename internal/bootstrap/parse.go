package bootstrap

import (
	"strconv"
	"strings"

	"github.com/nao1215/torbar/internal/model"
)

const (
	marker   = "Bootstrapped "
	complete = "Bootstrapped 100%"
)

// ParseProgress returns the bootstrap percent reported by the newest line in
// lines (ordered oldest first) that carries a parseable marker.
//
// A line containing "Bootstrapped 100%" returns 100 immediately. Other lines
// are parsed as the integer between "Bootstrapped " and the next "%"; lines
// that do not parse are skipped. The newest parseable line wins even when an
// older line reported a higher value, since Tor restarts bootstrap from zero
// after a restart. No marker returns 0. Results are clamped to 0..100.
func ParseProgress(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if strings.Contains(line, complete) {
			return 100
		}
		p, ok := parseLine(line)
		if ok {
			return model.ClampPercent(p)
		}
	}
	return 0
}

func parseLine(line string) (int, bool) {
	_, rest, found := strings.Cut(line, marker)
	if !found {
		return 0, false
	}
	num, _, found := strings.Cut(rest, "%")
	if !found {
		return 0, false
	}
	p, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, false
	}
	return p, true
}

// SplitLines splits command output into lines, dropping a trailing empty line.
func SplitLines(out []byte) []string {
	s := strings.TrimRight(string(out), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
