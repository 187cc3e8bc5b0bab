package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money value that the estimator may send as a JSON string or
// number. Null, empty and unparsable values decode to zero.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Decimal = decimal.Zero

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	if d, err := decimal.NewFromString(raw); err == nil {
		a.Decimal = d
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Decimal.String())
}

type EstimatorResource struct {
	Name         string `json:"name"`
	ResourceType string `json:"resource_type"`
	MonthlyCost  Amount `json:"monthlyCost"`
}

type UploadResponse struct {
	UID           string              `json:"uid"`
	CostBreakdown []EstimatorResource `json:"cost_breakdown"`
}

type SuggestUsageRequest struct {
	Resource EstimatorResource `json:"resource"`
	LLM      string            `json:"llm"`
}

type SuggestUsageResponse struct {
	SuggestedUsage *float64 `json:"suggested_usage"`
}

type ClarifyRequest struct {
	Resources []EstimatorResource `json:"resources"`
}

type Question struct {
	ResourceName string `json:"resource_name"`
	Question     string `json:"question"`
}

type ClarifyResponse struct {
	Questions []Question `json:"questions"`
}

// GenerateUsageRequest carries the wizard's question texts and the answers
// given for them, position by position.
type GenerateUsageRequest struct {
	Resources []EstimatorResource `json:"resources"`
	Questions []string            `json:"questions"`
	Answers   []string            `json:"answers"`
}

type ResourceAnswer struct {
	ResourceName string `json:"resource_name"`
	Answer       string `json:"answer"`
}

type GenerateUsageLegacyRequest struct {
	Resources []EstimatorResource `json:"resources"`
	Answers   []ResourceAnswer    `json:"answers"`
}

type UsageResponse struct {
	Usage map[string]map[string]any `json:"usage"`
}

type CopilotRequest struct {
	Question  string              `json:"question"`
	Resources []EstimatorResource `json:"resources"`
}

type CopilotResponse struct {
	Answer string `json:"answer"`
}

type UsageTemplate struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Template    map[string]map[string]any `json:"template"`
}

type TemplatesResponse struct {
	Templates []UsageTemplate `json:"templates"`
}

type ApplyTemplateRequest struct {
	TemplateID string              `json:"template_id"`
	Resources  []EstimatorResource `json:"resources"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
