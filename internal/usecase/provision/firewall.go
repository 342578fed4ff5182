package provision

import (
	"context"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

// ReconcileResult counts the changes made to a rule set.
type ReconcileResult struct {
	Added   int
	Removed int
}

// reconcile converges fw onto set. Managed rules carry the policy comment;
// with pruning enabled, managed rules not in the set are deleted first, then
// missing rules are appended. Rerunning with an unchanged set is a no-op.
func (s *Service) reconcile(ctx context.Context, fw out.Firewall, set domain.FirewallRuleSet) (ReconcileResult, error) {
	var result ReconcileResult
	policy := s.config.Firewall

	desired := make([]domain.FirewallRule, 0, len(set.Rules))
	keys := make(map[string]bool, len(set.Rules))
	for _, r := range set.Rules {
		tagged := r.Tagged(policy.Comment)
		desired = append(desired, tagged)
		keys[tagged.Key()] = true
	}

	if policy.Prune && policy.Comment != "" {
		for _, chain := range set.Chains() {
			current, err := fw.List(ctx, chain[0], chain[1])
			if err != nil {
				return result, err
			}
			for _, r := range current {
				if !r.HasComment(policy.Comment) || keys[r.Key()] {
					continue
				}
				logger.Info("Removing stale rule", "scope", set.Scope, "rule", r.String())
				if err := fw.Delete(ctx, r); err != nil {
					return result, err
				}
				result.Removed++
			}
		}
	}

	for _, r := range desired {
		exists, err := fw.Exists(ctx, r)
		if err != nil {
			return result, err
		}
		if exists {
			continue
		}
		if err := fw.Append(ctx, r); err != nil {
			return result, err
		}
		result.Added++
	}

	if policy.Persist {
		if err := fw.Persist(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}
