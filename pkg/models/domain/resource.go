package domain

import "github.com/shopspring/decimal"

const (
	MinAdjustment     = 0
	MaxAdjustment     = 100
	DefaultAdjustment = 100
)

// Resource is one billable object of an uploaded project.
type Resource struct {
	Index        int
	Name         string
	ResourceType string
	MonthlyCost  decimal.Decimal // baseline at 100% usage
}

// Project is the result of a single upload.
type Project struct {
	ID        string
	Resources []Resource
}

// Adjustments maps a resource index to its usage percentage.
type Adjustments map[int]int

func (a Adjustments) Clone() Adjustments {
	out := make(Adjustments, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ClampAdjustment bounds a usage percentage to [0,100].
func ClampAdjustment(value int) int {
	if value < MinAdjustment {
		return MinAdjustment
	}
	if value > MaxAdjustment {
		return MaxAdjustment
	}
	return value
}

// ClampAdjustmentDecimal rounds and bounds a percentage before it is narrowed
// to int, so values past the int64 range still land on a bound.
func ClampAdjustmentDecimal(value decimal.Decimal) int {
	value = value.Round(0)
	if value.LessThan(decimal.NewFromInt(MinAdjustment)) {
		return MinAdjustment
	}
	if value.GreaterThan(decimal.NewFromInt(MaxAdjustment)) {
		return MaxAdjustment
	}
	return int(value.IntPart())
}

// LineItem is a resource joined with its adjustment.
type LineItem struct {
	Resource     Resource
	Adjustment   int
	AdjustedCost decimal.Decimal
}

// TypeGroup aggregates line items of one resource type.
type TypeGroup struct {
	ResourceType string
	Count        int
	Cost         decimal.Decimal
}
