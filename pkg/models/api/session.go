package api

type LineItem struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	ResourceType string `json:"resource_type"`
	MonthlyCost  string `json:"monthly_cost"`
	Adjustment   int    `json:"adjustment"`
	AdjustedCost string `json:"adjusted_cost"`
}

type Session struct {
	ProjectID   string      `json:"project_id"`
	Resources   []LineItem  `json:"resources"`
	Adjustments map[int]int `json:"adjustments"`
	Total       string      `json:"total"`
}

type TypeGroup struct {
	ResourceType string `json:"resource_type"`
	Count        int    `json:"count"`
	Cost         string `json:"cost"`
}

type Breakdown struct {
	Resources []LineItem  `json:"resources"`
	Groups    []TypeGroup `json:"groups"`
	Types     []string    `json:"types"`
	Total     string      `json:"total"`
}

type AdjustmentRequest struct {
	Adjustment *int `json:"adjustment"`
}

type UsageRequest struct {
	Usage map[string]map[string]any `json:"usage"`
}

type QuestionsResponse struct {
	Questions []Question `json:"questions"`
}

// WizardUsageRequest carries either answers aligned with questions or
// resource_answers keyed by resource name.
type WizardUsageRequest struct {
	Questions       []Question       `json:"questions"`
	Answers         []string         `json:"answers"`
	ResourceAnswers []ResourceAnswer `json:"resource_answers,omitempty"`
}

type CopilotQuestion struct {
	Question string `json:"question"`
}

type CopilotAnswer struct {
	Answer string `json:"answer"`
}
