// Package iptables implements the Firewall port over the iptables tools,
// run either on the host or inside a container through pct exec.
package iptables

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/bnema/wgate/internal/adapters/out/command"
	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
)

// RulesFile is where iptables-persistent restores IPv4 rules from at boot.
const RulesFile = "/etc/iptables/rules.v4"

// Firewall runs iptables commands, optionally wrapped in a prefix such as
// "pct exec 200 --".
type Firewall struct {
	runner out.CommandRunner
	prefix []string
}

// NewHost returns a Firewall acting on the host.
func NewHost(runner out.CommandRunner) *Firewall {
	return &Firewall{runner: runner}
}

// NewContainer returns a Firewall acting inside container id.
func NewContainer(runner out.CommandRunner, id int) *Firewall {
	return &Firewall{runner: runner, prefix: []string{"pct", "exec", strconv.Itoa(id), "--"}}
}

func (f *Firewall) run(ctx context.Context, name string, args ...string) (*out.ExecResult, error) {
	if len(f.prefix) == 0 {
		return f.runner.Run(ctx, out.Command{Name: name, Args: args})
	}
	full := make([]string, 0, len(f.prefix)+len(args))
	full = append(full, f.prefix[1:]...)
	full = append(full, name)
	full = append(full, args...)
	return f.runner.Run(ctx, out.Command{Name: f.prefix[0], Args: full})
}

func ruleArgs(verb string, rule domain.FirewallRule) []string {
	args := make([]string, 0, len(rule.Spec)+4)
	args = append(args, "-t", rule.Table, verb, rule.Chain)
	return append(args, rule.Spec...)
}

// Exists checks the rule with iptables -C. Exit status 1 means the rule is
// absent; anything else is a failure.
func (f *Firewall) Exists(ctx context.Context, rule domain.FirewallRule) (bool, error) {
	_, err := f.run(ctx, "iptables", ruleArgs("-C", rule)...)
	if err == nil {
		return true, nil
	}
	var exitErr *command.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to check rule %s: %w", rule, err)
}

func (f *Firewall) Append(ctx context.Context, rule domain.FirewallRule) error {
	if _, err := f.run(ctx, "iptables", ruleArgs("-A", rule)...); err != nil {
		return fmt.Errorf("failed to append rule %s: %w", rule, err)
	}
	return nil
}

func (f *Firewall) Delete(ctx context.Context, rule domain.FirewallRule) error {
	if _, err := f.run(ctx, "iptables", ruleArgs("-D", rule)...); err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", rule, err)
	}
	return nil
}

// List returns the rules of a chain as printed by iptables -S.
func (f *Firewall) List(ctx context.Context, table, chain string) ([]domain.FirewallRule, error) {
	res, err := f.run(ctx, "iptables", "-t", table, "-S", chain)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s/%s: %w", table, chain, err)
	}
	return ParseRules(table, string(res.Stdout))
}

// ParseRules parses iptables -S output. Policy and chain declarations are
// skipped.
func ParseRules(table, output string) ([]domain.FirewallRule, error) {
	var rules []domain.FirewallRule
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-A ") {
			continue
		}
		fields, err := shellquote.Split(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rule %q: %w", line, err)
		}
		if len(fields) < 2 {
			continue
		}
		rules = append(rules, domain.FirewallRule{Table: table, Chain: fields[1], Spec: fields[2:]})
	}
	return rules, nil
}

// Persist saves the running rule set to RulesFile.
func (f *Firewall) Persist(ctx context.Context) error {
	script := "mkdir -p /etc/iptables && iptables-save > " + RulesFile
	if _, err := f.run(ctx, "sh", "-c", script); err != nil {
		return fmt.Errorf("failed to persist firewall rules: %w", err)
	}
	return nil
}

// Provider hands out host and container firewalls sharing one runner.
type Provider struct {
	runner out.CommandRunner
}

func NewProvider(runner out.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

func (p *Provider) Host() out.Firewall {
	return NewHost(p.runner)
}

func (p *Provider) Container(id int) out.Firewall {
	return NewContainer(p.runner, id)
}
