package adapters

import (
	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/cost"
)

func MapDomainLineItemsToAPI(items []domain.LineItem) []api.LineItem {
	out := make([]api.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, api.LineItem{
			Index:        item.Resource.Index,
			Name:         item.Resource.Name,
			ResourceType: item.Resource.ResourceType,
			MonthlyCost:  cost.FormatAmount(item.Resource.MonthlyCost),
			Adjustment:   item.Adjustment,
			AdjustedCost: cost.FormatAmount(item.AdjustedCost),
		})
	}
	return out
}

func MapDomainSessionToAPI(projectID string, resources []domain.Resource, adjustments domain.Adjustments) api.Session {
	return api.Session{
		ProjectID:   projectID,
		Resources:   MapDomainLineItemsToAPI(cost.LineItems(resources, adjustments)),
		Adjustments: adjustments.Clone(),
		Total:       cost.FormatAmount(cost.Total(resources, adjustments)),
	}
}

func MapDomainTypeGroupsToAPI(groups []domain.TypeGroup) []api.TypeGroup {
	out := make([]api.TypeGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, api.TypeGroup{
			ResourceType: g.ResourceType,
			Count:        g.Count,
			Cost:         cost.FormatAmount(g.Cost),
		})
	}
	return out
}

func MapAPIUsageToDomain(usage map[string]map[string]any) domain.UsageAnswer {
	return MapEstimatorUsageToDomain(usage)
}

func MapAPIQuestionsToDomain(questions []api.Question) []domain.Question {
	return MapEstimatorQuestionsToDomain(questions)
}

func MapAPIResourceAnswersToDomain(answers []api.ResourceAnswer) []domain.ResourceAnswer {
	out := make([]domain.ResourceAnswer, 0, len(answers))
	for _, a := range answers {
		out = append(out, domain.ResourceAnswer{ResourceName: a.ResourceName, Answer: a.Answer})
	}
	return out
}

func MapDomainQuestionsToAPI(questions []domain.Question) []api.Question {
	out := make([]api.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, api.Question{ResourceName: q.ResourceName, Question: q.Question})
	}
	return out
}

func MapDomainTemplatesToAPI(templates []domain.UsageTemplate) []api.UsageTemplate {
	out := make([]api.UsageTemplate, 0, len(templates))
	for _, t := range templates {
		template := make(map[string]map[string]any, len(t.Template))
		for resourceType, record := range t.Template {
			template[resourceType] = map[string]any(record)
		}
		out = append(out, api.UsageTemplate{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Template:    template,
		})
	}
	return out
}
