package api

import "time"

type SaveScenarioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SaveScenarioResponse struct {
	ID string `json:"id"`
}

type ScenarioSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	TotalCost     string    `json:"total_cost"`
	ResourceCount int       `json:"resource_count"`
}

type ScenarioResource struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	ResourceType string `json:"resource_type"`
	MonthlyCost  string `json:"monthly_cost"`
	Adjustment   int    `json:"adjustment"`
	AdjustedCost string `json:"adjusted_cost"`
}

type Scenario struct {
	ScenarioSummary
	Resources []ScenarioResource `json:"resources"`
}

type ComparisonSummary struct {
	TotalBaseline      string `json:"total_baseline"`
	TotalProposed      string `json:"total_proposed"`
	TotalDifference    string `json:"total_difference"`
	TotalPercentChange string `json:"total_percent_change"`
	AddedCount         int    `json:"added_count"`
	ChangedCount       int    `json:"changed_count"`
	RemovedCount       int    `json:"removed_count"`
}

type ResourceComparison struct {
	Name               string `json:"name"`
	ResourceType       string `json:"resource_type"`
	Status             string `json:"status"`
	BaselineCost       string `json:"baseline_cost"`
	ProposedCost       string `json:"proposed_cost"`
	Difference         string `json:"difference"`
	PercentChange      string `json:"percent_change"`
	BaselineAdjustment int    `json:"baseline_adjustment"`
	ProposedAdjustment int    `json:"proposed_adjustment"`
}

type Comparison struct {
	Baseline  ScenarioSummary      `json:"baseline"`
	Proposed  ScenarioSummary      `json:"proposed"`
	Summary   ComparisonSummary    `json:"summary"`
	Resources []ResourceComparison `json:"resources"`
}

type Selection struct {
	ActiveID       string `json:"active_id"`
	BaselineID     string `json:"baseline_id"`
	ProposedID     string `json:"proposed_id"`
	ComparisonMode bool   `json:"comparison_mode"`
}

type SelectActiveRequest struct {
	ID string `json:"id"`
}
