package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	scenarios []domain.Scenario
	err       error
}

func (s stubLister) List(_ context.Context) ([]domain.Scenario, error) {
	return s.scenarios, s.err
}

func fixtures() stubLister {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return stubLister{scenarios: []domain.Scenario{
		{
			ID:        "before",
			Name:      "Before",
			Date:      date,
			TotalCost: decimal.RequireFromString("20"),
			Resources: []domain.ScenarioResource{
				{Name: "web", ResourceType: "aws_instance", MonthlyCost: decimal.RequireFromString("20"), Adjustment: 100},
			},
		},
		{
			ID:        "after",
			Name:      "After",
			Date:      date.Add(time.Hour),
			TotalCost: decimal.RequireFromString("10"),
			Resources: []domain.ScenarioResource{
				{Name: "web", ResourceType: "aws_instance", MonthlyCost: decimal.RequireFromString("20"), Adjustment: 50},
			},
		},
	}}
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestListScenarios(t *testing.T) {
	result, err := makeListScenariosHandler(fixtures())(context.Background(), request(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var summaries []api.ScenarioSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "before", summaries[0].ID)
	assert.Equal(t, "20.00", summaries[0].TotalCost)
	assert.Equal(t, 1, summaries[1].ResourceCount)
}

func TestListScenarios_StorageError(t *testing.T) {
	result, err := makeListScenariosHandler(stubLister{err: errors.New("disk gone")})(context.Background(), request(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "disk gone")
}

func TestGetScenario(t *testing.T) {
	handler := makeGetScenarioHandler(fixtures())

	t.Run("found", func(t *testing.T) {
		result, err := handler(context.Background(), request(map[string]any{"id": "after"}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		var sc api.Scenario
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &sc))
		assert.Equal(t, "After", sc.Name)
		require.Len(t, sc.Resources, 1)
		assert.Equal(t, "10.00", sc.Resources[0].AdjustedCost)
	})

	t.Run("not found", func(t *testing.T) {
		result, err := handler(context.Background(), request(map[string]any{"id": "missing"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("missing id", func(t *testing.T) {
		result, err := handler(context.Background(), request(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestCompareScenarios(t *testing.T) {
	handler := makeCompareScenariosHandler(fixtures())

	t.Run("compares", func(t *testing.T) {
		result, err := handler(context.Background(), request(map[string]any{
			"baseline_id": "before",
			"proposed_id": "after",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		var c api.Comparison
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &c))
		assert.Equal(t, "-10.00", c.Summary.TotalDifference)
		assert.Equal(t, "-50.0", c.Summary.TotalPercentChange)
		require.Len(t, c.Resources, 1)
		assert.Equal(t, "changed", c.Resources[0].Status)
		assert.Equal(t, 50, c.Resources[0].ProposedAdjustment)
	})

	t.Run("unknown scenario", func(t *testing.T) {
		result, err := handler(context.Background(), request(map[string]any{
			"baseline_id": "before",
			"proposed_id": "gone",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "Select two scenarios to compare", resultText(t, result))
	})
}
