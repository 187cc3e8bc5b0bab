package domain

import "github.com/shopspring/decimal"

type ComparisonStatus string

const (
	StatusAdded   ComparisonStatus = "added"
	StatusChanged ComparisonStatus = "changed"
	StatusRemoved ComparisonStatus = "removed"
)

// Rank orders statuses for display: added, changed, removed.
func (s ComparisonStatus) Rank() int {
	switch s {
	case StatusAdded:
		return 1
	case StatusChanged:
		return 2
	case StatusRemoved:
		return 3
	default:
		return 4
	}
}

type ResourceComparison struct {
	Name               string
	ResourceType       string
	Status             ComparisonStatus
	BaselineCost       decimal.Decimal
	ProposedCost       decimal.Decimal
	Difference         decimal.Decimal
	PercentChange      decimal.NullDecimal // invalid means not applicable
	BaselineAdjustment int
	ProposedAdjustment int
}

type ComparisonSummary struct {
	TotalBaseline      decimal.Decimal
	TotalProposed      decimal.Decimal
	TotalDifference    decimal.Decimal
	TotalPercentChange decimal.Decimal
	AddedCount         int
	ChangedCount       int
	RemovedCount       int
}

type Comparison struct {
	Baseline  Scenario
	Proposed  Scenario
	Summary   ComparisonSummary
	Resources []ResourceComparison
}
