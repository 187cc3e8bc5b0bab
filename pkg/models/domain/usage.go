package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// UsageRecord holds usage fields for one resource, e.g. {"monthly_hours": 360}.
type UsageRecord map[string]any

// Number returns the numeric value of field. Absent and non-numeric values
// report false.
func (u UsageRecord) Number(field string) (decimal.Decimal, bool) {
	if u == nil {
		return decimal.Zero, false
	}
	raw, ok := u[field]
	if !ok || raw == nil {
		return decimal.Zero, false
	}

	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	case decimal.Decimal:
		return v, true
	default:
		return decimal.Zero, false
	}
}

// UsageAnswer maps a resource name to its usage record.
type UsageAnswer map[string]UsageRecord

// UsageTemplate is a reusable set of usage records keyed by resource type.
type UsageTemplate struct {
	ID          string
	Name        string
	Description string
	Template    map[string]UsageRecord
}

// Question is a clarifying question generated for one resource.
type Question struct {
	ResourceName string
	Question     string
}

// ResourceAnswer is the legacy per-resource wizard answer.
type ResourceAnswer struct {
	ResourceName string
	Answer       string
}
