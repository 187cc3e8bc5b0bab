package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scenario is an immutable snapshot of resources and their adjustments.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Date        time.Time
	Resources   []ScenarioResource
	TotalCost   decimal.Decimal
}

type ScenarioResource struct {
	Name         string
	ResourceType string
	MonthlyCost  decimal.Decimal
	Index        int
	Adjustment   int
}

// AdjustedCost is the snapshot cost with its baked-in adjustment applied.
func (r ScenarioResource) AdjustedCost() decimal.Decimal {
	return r.MonthlyCost.Mul(decimal.NewFromInt(int64(r.Adjustment))).Shift(-2)
}

// LoadedScenario is a live-editable pair rebuilt from a snapshot.
type LoadedScenario struct {
	Resources   []Resource
	Adjustments Adjustments
}

// Selection tracks which scenarios are active or being compared.
type Selection struct {
	ActiveID       string
	BaselineID     string
	ProposedID     string
	ComparisonMode bool
}
