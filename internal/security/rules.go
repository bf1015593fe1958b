// Package security builds the access-policy rule sets attached to a
// demo network. A RuleSet is append-only within a run: feature flags
// and version gates only ever add rules, so enabling a flag is always
// a superset of the previous rule set.
package security

import (
	"fmt"
	"strings"

	"github.com/iac-labs/pulumi-aws-demos/internal/params"
)

// Anywhere is the open IPv4 source range used by the demo rules.
var Anywhere = []string{"0.0.0.0/0"}

// Rule describes one ingress allow-rule.
type Rule struct {
	Description string
	FromPort    int
	ToPort      int
	Protocol    string
	CidrBlocks  []string
}

// HTTP allows port 80 from anywhere.
func HTTP() Rule {
	return Rule{Description: "HTTP access", FromPort: 80, ToPort: 80, Protocol: "tcp", CidrBlocks: Anywhere}
}

// HTTPS allows port 443 from anywhere.
func HTTPS() Rule {
	return Rule{Description: "HTTPS access", FromPort: 443, ToPort: 443, Protocol: "tcp", CidrBlocks: Anywhere}
}

// SSH allows port 22 from the given source ranges, or from anywhere
// when none are given.
func SSH(sources ...string) Rule {
	if len(sources) == 0 {
		sources = Anywhere
	}
	return Rule{Description: "SSH access", FromPort: 22, ToPort: 22, Protocol: "tcp", CidrBlocks: sources}
}

// Monitoring returns the scrape-endpoint rules added when the
// monitoring flag is on: Prometheus (9090) and node exporter (9100).
func Monitoring() []Rule {
	return []Rule{
		{Description: "Prometheus", FromPort: 9090, ToPort: 9090, Protocol: "tcp", CidrBlocks: Anywhere},
		{Description: "Node exporter", FromPort: 9100, ToPort: 9100, Protocol: "tcp", CidrBlocks: Anywhere},
	}
}

// RuleSet is an append-only ordered collection of ingress rules.
type RuleSet struct {
	rules []Rule
	seen  map[string]bool
}

// NewRuleSet builds a rule set seeded with the given rules.
func NewRuleSet(rules ...Rule) *RuleSet {
	s := &RuleSet{seen: make(map[string]bool)}
	s.Add(rules...)
	return s
}

// Add appends rules, collapsing exact duplicates (same port span,
// protocol, and sources) so re-applying a gate stays idempotent.
func (s *RuleSet) Add(rules ...Rule) *RuleSet {
	for _, r := range rules {
		k := ruleKey(r)
		if s.seen[k] {
			continue
		}
		s.seen[k] = true
		s.rules = append(s.rules, r)
	}
	return s
}

// Rules returns the rules in insertion order.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of distinct rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Ports returns the distinct from-ports in insertion order, used by
// tests and exported summaries.
func (s *RuleSet) Ports() []int {
	out := make([]int, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r.FromPort)
	}
	return out
}

// ApplyVersionGates adds the rules a deployment version unlocks: SSH
// at 2.0 and HTTPS at 3.0. Raising the version never removes a rule.
func (s *RuleSet) ApplyVersionGates(version float64) *RuleSet {
	if version >= 2.0 {
		s.Add(SSH())
	}
	if version >= 3.0 {
		s.Add(HTTPS())
	}
	return s
}

// ApplyProfile adds the rules an environment profile calls for:
// operator SSH outside development, and the monitoring endpoints when
// the profile enables monitoring.
func (s *RuleSet) ApplyProfile(p params.Profile) *RuleSet {
	if p.Environment != "development" {
		s.Add(SSH())
	}
	if p.EnableMonitoring {
		s.Add(Monitoring()...)
	}
	return s
}

func ruleKey(r Rule) string {
	return fmt.Sprintf("%d-%d-%s-%s", r.FromPort, r.ToPort, r.Protocol, strings.Join(r.CidrBlocks, ","))
}
