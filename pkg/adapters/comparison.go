package adapters

import (
	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/cost"
	"github.com/shopspring/decimal"
)

const notApplicable = "N/A"

func MapDomainScenarioSummaryToAPI(s domain.Scenario) api.ScenarioSummary {
	return api.ScenarioSummary{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		Date:          s.Date,
		TotalCost:     cost.FormatAmount(s.TotalCost),
		ResourceCount: len(s.Resources),
	}
}

func MapDomainScenarioToAPI(s domain.Scenario) api.Scenario {
	resources := make([]api.ScenarioResource, 0, len(s.Resources))
	for _, r := range s.Resources {
		resources = append(resources, api.ScenarioResource{
			Index:        r.Index,
			Name:         r.Name,
			ResourceType: r.ResourceType,
			MonthlyCost:  cost.FormatAmount(r.MonthlyCost),
			Adjustment:   r.Adjustment,
			AdjustedCost: cost.FormatAmount(r.AdjustedCost()),
		})
	}

	return api.Scenario{
		ScenarioSummary: MapDomainScenarioSummaryToAPI(s),
		Resources:       resources,
	}
}

func MapDomainSelectionToAPI(s domain.Selection) api.Selection {
	return api.Selection{
		ActiveID:       s.ActiveID,
		BaselineID:     s.BaselineID,
		ProposedID:     s.ProposedID,
		ComparisonMode: s.ComparisonMode,
	}
}

func MapDomainComparisonToAPI(c *domain.Comparison) *api.Comparison {
	if c == nil {
		return nil
	}

	resources := make([]api.ResourceComparison, 0, len(c.Resources))
	for _, r := range c.Resources {
		resources = append(resources, api.ResourceComparison{
			Name:               r.Name,
			ResourceType:       r.ResourceType,
			Status:             string(r.Status),
			BaselineCost:       cost.FormatAmount(r.BaselineCost),
			ProposedCost:       cost.FormatAmount(r.ProposedCost),
			Difference:         cost.FormatAmount(r.Difference),
			PercentChange:      FormatNullPercent(r.PercentChange),
			BaselineAdjustment: r.BaselineAdjustment,
			ProposedAdjustment: r.ProposedAdjustment,
		})
	}

	return &api.Comparison{
		Baseline: MapDomainScenarioSummaryToAPI(c.Baseline),
		Proposed: MapDomainScenarioSummaryToAPI(c.Proposed),
		Summary: api.ComparisonSummary{
			TotalBaseline:      cost.FormatAmount(c.Summary.TotalBaseline),
			TotalProposed:      cost.FormatAmount(c.Summary.TotalProposed),
			TotalDifference:    cost.FormatAmount(c.Summary.TotalDifference),
			TotalPercentChange: cost.FormatPercent(c.Summary.TotalPercentChange),
			AddedCount:         c.Summary.AddedCount,
			ChangedCount:       c.Summary.ChangedCount,
			RemovedCount:       c.Summary.RemovedCount,
		},
		Resources: resources,
	}
}

// FormatNullPercent renders an undefined percentage as "N/A".
func FormatNullPercent(p decimal.NullDecimal) string {
	if !p.Valid {
		return notApplicable
	}
	return cost.FormatPercent(p.Decimal)
}
