package comparison

import (
	"sort"

	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Compare builds a resource-level diff between two scenarios. It returns nil
// when either scenario is missing.
func Compare(baseline, proposed *domain.Scenario) *domain.Comparison {
	if baseline == nil || proposed == nil {
		return nil
	}

	baseNames, baseMap := indexByName(baseline.Resources)
	propNames, propMap := indexByName(proposed.Resources)

	rows := make([]domain.ResourceComparison, 0, len(baseNames)+len(propNames))
	for _, name := range baseNames {
		base := baseMap[name]
		baseCost := base.AdjustedCost()

		prop, ok := propMap[name]
		if !ok {
			rows = append(rows, domain.ResourceComparison{
				Name:               name,
				ResourceType:       base.ResourceType,
				Status:             domain.StatusRemoved,
				BaselineCost:       baseCost,
				ProposedCost:       decimal.Zero,
				Difference:         baseCost.Neg(),
				PercentChange:      removedPercent(baseCost),
				BaselineAdjustment: base.Adjustment,
				ProposedAdjustment: 0,
			})
			continue
		}

		propCost := prop.AdjustedCost()
		diff := propCost.Sub(baseCost)
		rows = append(rows, domain.ResourceComparison{
			Name:               name,
			ResourceType:       base.ResourceType,
			Status:             domain.StatusChanged,
			BaselineCost:       baseCost,
			ProposedCost:       propCost,
			Difference:         diff,
			PercentChange:      decimal.NewNullDecimal(percentChange(diff, baseCost)),
			BaselineAdjustment: base.Adjustment,
			ProposedAdjustment: prop.Adjustment,
		})
	}

	for _, name := range propNames {
		if _, ok := baseMap[name]; ok {
			continue
		}
		prop := propMap[name]
		propCost := prop.AdjustedCost()
		rows = append(rows, domain.ResourceComparison{
			Name:               name,
			ResourceType:       prop.ResourceType,
			Status:             domain.StatusAdded,
			BaselineCost:       decimal.Zero,
			ProposedCost:       propCost,
			Difference:         propCost,
			PercentChange:      decimal.NullDecimal{},
			BaselineAdjustment: 0,
			ProposedAdjustment: prop.Adjustment,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if ri, rj := rows[i].Status.Rank(), rows[j].Status.Rank(); ri != rj {
			return ri < rj
		}
		return rows[i].Difference.Abs().GreaterThan(rows[j].Difference.Abs())
	})

	return &domain.Comparison{
		Baseline:  *baseline,
		Proposed:  *proposed,
		Summary:   summarize(baseline, proposed, rows),
		Resources: rows,
	}
}

// Totals come from the scenarios themselves, not from summing rows.
func summarize(baseline, proposed *domain.Scenario, rows []domain.ResourceComparison) domain.ComparisonSummary {
	diff := proposed.TotalCost.Sub(baseline.TotalCost)
	summary := domain.ComparisonSummary{
		TotalBaseline:      baseline.TotalCost,
		TotalProposed:      proposed.TotalCost,
		TotalDifference:    diff,
		TotalPercentChange: percentChange(diff, baseline.TotalCost),
	}

	for _, r := range rows {
		switch r.Status {
		case domain.StatusAdded:
			summary.AddedCount++
		case domain.StatusChanged:
			summary.ChangedCount++
		case domain.StatusRemoved:
			summary.RemovedCount++
		}
	}
	return summary
}

func percentChange(diff, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return diff.Div(base).Mul(hundred)
}

// A removed resource that cost nothing has no meaningful relative change.
func removedPercent(baseCost decimal.Decimal) decimal.NullDecimal {
	if !baseCost.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(hundred.Neg())
}

// indexByName keeps the last resource per name, ordered by first appearance.
func indexByName(resources []domain.ScenarioResource) ([]string, map[string]domain.ScenarioResource) {
	byName := make(map[string]domain.ScenarioResource, len(resources))
	names := make([]string, 0, len(resources))
	for _, r := range resources {
		if _, seen := byName[r.Name]; !seen {
			names = append(names, r.Name)
		}
		byName[r.Name] = r
	}
	return names, byName
}
