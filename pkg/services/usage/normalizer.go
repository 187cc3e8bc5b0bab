package usage

import "github.com/de-tools/cost-planner/pkg/models/domain"

// Normalizer turns structured usage answers into usage percentages.
type Normalizer struct {
	rules Rules
}

func NewNormalizer(rules Rules) *Normalizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Normalizer{rules: rules.Merge(nil)}
}

// Normalize returns the percentage for a resource of the given type.
// Without a matching rule or a usable field the resource is charged in full.
func (n *Normalizer) Normalize(resourceType string, record domain.UsageRecord) int {
	rule, ok := n.rules[resourceType]
	if !ok {
		return domain.DefaultAdjustment
	}

	pct, ok := rule.Percentage(record)
	if !ok {
		return domain.DefaultAdjustment
	}
	return pct
}

// NormalizeAll builds an adjustment entry for every resource, looking its
// record up by name.
func (n *Normalizer) NormalizeAll(resources []domain.Resource, answer domain.UsageAnswer) domain.Adjustments {
	adjustments := make(domain.Adjustments, len(resources))
	for _, r := range resources {
		adjustments[r.Index] = n.Normalize(r.ResourceType, answer[r.Name])
	}
	return adjustments
}

func (n *Normalizer) Rules() Rules {
	return n.rules.Merge(nil)
}
