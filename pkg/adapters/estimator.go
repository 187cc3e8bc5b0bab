package adapters

import (
	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
)

func MapEstimatorResourcesToDomain(resources []api.EstimatorResource) []domain.Resource {
	out := make([]domain.Resource, 0, len(resources))
	for i, r := range resources {
		out = append(out, domain.Resource{
			Index:        i,
			Name:         r.Name,
			ResourceType: r.ResourceType,
			MonthlyCost:  r.MonthlyCost.Decimal,
		})
	}
	return out
}

func MapDomainResourceToEstimator(r domain.Resource) api.EstimatorResource {
	return api.EstimatorResource{
		Name:         r.Name,
		ResourceType: r.ResourceType,
		MonthlyCost:  api.NewAmount(r.MonthlyCost),
	}
}

func MapDomainResourcesToEstimator(resources []domain.Resource) []api.EstimatorResource {
	out := make([]api.EstimatorResource, 0, len(resources))
	for _, r := range resources {
		out = append(out, MapDomainResourceToEstimator(r))
	}
	return out
}

func MapEstimatorQuestionsToDomain(questions []api.Question) []domain.Question {
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, domain.Question{ResourceName: q.ResourceName, Question: q.Question})
	}
	return out
}

func MapDomainQuestionsToText(questions []domain.Question) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Question)
	}
	return out
}

func MapDomainAnswersToEstimator(answers []domain.ResourceAnswer) []api.ResourceAnswer {
	out := make([]api.ResourceAnswer, 0, len(answers))
	for _, a := range answers {
		out = append(out, api.ResourceAnswer{ResourceName: a.ResourceName, Answer: a.Answer})
	}
	return out
}

func MapEstimatorUsageToDomain(usage map[string]map[string]any) domain.UsageAnswer {
	out := make(domain.UsageAnswer, len(usage))
	for name, record := range usage {
		out[name] = domain.UsageRecord(record)
	}
	return out
}

func MapEstimatorTemplateToDomain(t api.UsageTemplate) domain.UsageTemplate {
	template := make(map[string]domain.UsageRecord, len(t.Template))
	for resourceType, record := range t.Template {
		template[resourceType] = domain.UsageRecord(record)
	}

	return domain.UsageTemplate{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Template:    template,
	}
}
