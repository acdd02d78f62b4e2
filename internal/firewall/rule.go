package firewall

import (
	"strconv"
	"strings"
)

const (
	// TableNAT is the packet filter table holding the redirections.
	TableNAT = "nat"
	// ChainOutput is the chain for locally generated packets.
	ChainOutput = "OUTPUT"
)

// Rule is one packet filter rule.
type Rule struct {
	Table string
	Chain string
	Spec  []string
}

// String returns the rule specification without table and chain.
func (r Rule) String() string {
	return strings.Join(r.Spec, " ")
}

// parseRule splits a "table chain spec..." line.
func parseRule(line string) Rule {
	f := strings.Fields(line)
	return Rule{Table: f[0], Chain: f[1], Spec: f[2:]}
}

// RedirectRules returns the three redirections for the given ports, in the
// order they are installed.
func RedirectRules(transPort, dnsPort int) []Rule {
	tp := strconv.Itoa(transPort)
	dp := strconv.Itoa(dnsPort)
	return []Rule{
		parseRule("nat OUTPUT -p tcp --syn -j REDIRECT --to-ports " + tp),
		parseRule("nat OUTPUT -p udp --dport 53 -j REDIRECT --to-ports " + dp),
		parseRule("nat OUTPUT -p tcp --dport 53 -j REDIRECT --to-ports " + dp),
	}
}
