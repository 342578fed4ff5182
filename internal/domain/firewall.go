package domain

import "strings"

// FirewallRule is a single iptables rule, without the command verb.
type FirewallRule struct {
	Table string
	Chain string
	Spec  []string
}

// Tagged returns a copy of the rule carrying an iptables comment match,
// inserted before the jump target so that listings print it in the same order.
func (r FirewallRule) Tagged(comment string) FirewallRule {
	if comment == "" || r.HasComment(comment) {
		return r
	}
	spec := make([]string, 0, len(r.Spec)+4)
	inserted := false
	for i := 0; i < len(r.Spec); i++ {
		if !inserted && r.Spec[i] == "-j" {
			spec = append(spec, "-m", "comment", "--comment", comment)
			inserted = true
		}
		spec = append(spec, r.Spec[i])
	}
	if !inserted {
		spec = append(spec, "-m", "comment", "--comment", comment)
	}
	return FirewallRule{Table: r.Table, Chain: r.Chain, Spec: spec}
}

// HasComment reports whether the rule carries the given comment tag.
func (r FirewallRule) HasComment(comment string) bool {
	for i := 0; i+1 < len(r.Spec); i++ {
		if r.Spec[i] == "--comment" && strings.Trim(r.Spec[i+1], `"`) == comment {
			return true
		}
	}
	return false
}

// Key identifies the rule for set comparisons.
func (r FirewallRule) Key() string {
	fields := make([]string, 0, len(r.Spec)+2)
	fields = append(fields, r.Table, r.Chain)
	for _, f := range r.Spec {
		fields = append(fields, strings.Trim(f, `"`))
	}
	return strings.Join(fields, " ")
}

func (r FirewallRule) String() string {
	return "-t " + r.Table + " " + r.Chain + " " + strings.Join(r.Spec, " ")
}

// FirewallRuleSet is the desired rule set of one scope (host or container).
type FirewallRuleSet struct {
	Scope string
	Rules []FirewallRule
}

// Chains returns the distinct table/chain pairs referenced by the set.
func (s FirewallRuleSet) Chains() [][2]string {
	var chains [][2]string
	seen := make(map[[2]string]bool)
	for _, r := range s.Rules {
		k := [2]string{r.Table, r.Chain}
		if !seen[k] {
			seen[k] = true
			chains = append(chains, k)
		}
	}
	return chains
}

// MasqueradeRule returns the NAT rule for a subnet leaving through an interface.
func MasqueradeRule(subnet, outIface string) FirewallRule {
	return FirewallRule{
		Table: "nat",
		Chain: "POSTROUTING",
		Spec:  []string{"-s", subnet, "-o", outIface, "-j", "MASQUERADE"},
	}
}

// ForwardRules returns the forward pair allowing traffic from in to out and
// established replies back.
func ForwardRules(inIface, outIface string) []FirewallRule {
	return []FirewallRule{
		{
			Table: "filter",
			Chain: "FORWARD",
			Spec:  []string{"-i", inIface, "-o", outIface, "-j", "ACCEPT"},
		},
		{
			Table: "filter",
			Chain: "FORWARD",
			Spec:  []string{"-i", outIface, "-o", inIface, "-m", "state", "--state", "RELATED,ESTABLISHED", "-j", "ACCEPT"},
		},
	}
}
