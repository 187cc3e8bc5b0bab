package store

import (
	"time"

	"github.com/shopspring/decimal"
)

type Scenario struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	TotalCost   decimal.Decimal
	Resources   []ScenarioResource
}

type ScenarioResource struct {
	Position      int
	ResourceIndex int
	Name          string
	ResourceType  string
	MonthlyCost   decimal.Decimal
	Adjustment    int
}
