package cost

import (
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// AdjustedCost scales a baseline monthly cost by a usage percentage.
// The result is exact; rounding is left to presentation.
func AdjustedCost(monthlyCost decimal.Decimal, adjustment int) decimal.Decimal {
	return monthlyCost.Mul(decimal.NewFromInt(int64(adjustment))).Shift(-2)
}

// Total sums adjusted costs. A resource without an adjustment contributes 0.
func Total(resources []domain.Resource, adjustments domain.Adjustments) decimal.Decimal {
	total := decimal.Zero
	for _, r := range resources {
		total = total.Add(AdjustedCost(r.MonthlyCost, adjustments[r.Index]))
	}
	return total
}

func LineItems(resources []domain.Resource, adjustments domain.Adjustments) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(resources))
	for _, r := range resources {
		adj := adjustments[r.Index]
		items = append(items, domain.LineItem{
			Resource:     r,
			Adjustment:   adj,
			AdjustedCost: AdjustedCost(r.MonthlyCost, adj),
		})
	}
	return items
}

func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1)
}
