package usage

import (
	"fmt"

	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/shopspring/decimal"
)

const (
	ResourceTypeInstance = "aws_instance"
	ResourceTypeLambda   = "aws_lambda_function"

	// 720 hours is a full month of 24/7 usage.
	hoursPerPercent = "7.2"
	// 1,000,000 requests map to 100%.
	requestsPerPercent = 10000
)

// Rule converts one numeric usage field into a percentage by dividing it
// by the amount of usage that equals one percent.
type Rule struct {
	Field   string
	Divisor decimal.Decimal
}

// Rules maps a resource type to its conversion rule.
type Rules map[string]Rule

func DefaultRules() Rules {
	return Rules{
		ResourceTypeInstance: {Field: "monthly_hours", Divisor: decimal.RequireFromString(hoursPerPercent)},
		ResourceTypeLambda:   {Field: "monthly_requests", Divisor: decimal.NewFromInt(requestsPerPercent)},
	}
}

func NewRule(field string, divisor decimal.Decimal) (Rule, error) {
	if field == "" {
		return Rule{}, fmt.Errorf("rule field cannot be empty")
	}
	if !divisor.IsPositive() {
		return Rule{}, fmt.Errorf("rule divisor for %q must be positive, got %s", field, divisor)
	}
	return Rule{Field: field, Divisor: divisor}, nil
}

// Percentage reports false when the rule's field is absent or not numeric.
func (r Rule) Percentage(record domain.UsageRecord) (int, bool) {
	value, ok := record.Number(r.Field)
	if !ok || !r.Divisor.IsPositive() {
		return 0, false
	}

	return domain.ClampAdjustmentDecimal(value.Div(r.Divisor)), true
}

// Merge returns a copy of r with overrides applied on top.
func (r Rules) Merge(overrides Rules) Rules {
	out := make(Rules, len(r)+len(overrides))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
