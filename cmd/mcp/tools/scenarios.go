package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/de-tools/cost-planner/pkg/adapters"
	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/comparison"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ScenarioLister reads saved scenarios. Every call goes back to storage, so
// scenarios saved by the web server or the CLI show up without a restart.
type ScenarioLister interface {
	List(ctx context.Context) ([]domain.Scenario, error)
}

// RegisterScenarioTools registers the read-only scenario tools with the MCP server
func RegisterScenarioTools(s *server.MCPServer, scenarios ScenarioLister) {
	s.AddTool(
		mcp.NewTool("list_scenarios",
			mcp.WithDescription("List saved cost scenarios with their monthly totals."),
		),
		makeListScenariosHandler(scenarios),
	)

	s.AddTool(
		mcp.NewTool("get_scenario",
			mcp.WithDescription("Get a saved cost scenario with every resource, its usage adjustment and adjusted monthly cost."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Scenario id")),
		),
		makeGetScenarioHandler(scenarios),
	)

	s.AddTool(
		mcp.NewTool("compare_scenarios",
			mcp.WithDescription("Compare two saved scenarios resource by resource, showing added, changed and removed resources with cost differences."),
			mcp.WithString("baseline_id", mcp.Required(), mcp.Description("Id of the baseline scenario")),
			mcp.WithString("proposed_id", mcp.Required(), mcp.Description("Id of the proposed scenario")),
		),
		makeCompareScenariosHandler(scenarios),
	)
}

func makeListScenariosHandler(scenarios ScenarioLister) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all, err := scenarios.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list scenarios: %v", err)), nil
		}

		summaries := make([]api.ScenarioSummary, 0, len(all))
		for _, sc := range all {
			summaries = append(summaries, adapters.MapDomainScenarioSummaryToAPI(sc))
		}
		return jsonResult(summaries)
	}
}

func makeGetScenarioHandler(scenarios ScenarioLister) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		sc, found, err := findScenario(ctx, scenarios, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load scenarios: %v", err)), nil
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("Scenario %s not found", id)), nil
		}
		return jsonResult(adapters.MapDomainScenarioToAPI(sc))
	}
}

func makeCompareScenariosHandler(scenarios ScenarioLister) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		baselineID, err := request.RequireString("baseline_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		proposedID, err := request.RequireString("proposed_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		all, err := scenarios.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load scenarios: %v", err)), nil
		}
		baseline, okBaseline := lookup(all, baselineID)
		proposed, okProposed := lookup(all, proposedID)
		if !okBaseline || !okProposed {
			return mcp.NewToolResultError("Select two scenarios to compare"), nil
		}

		return jsonResult(adapters.MapDomainComparisonToAPI(comparison.Compare(&baseline, &proposed)))
	}
}

func findScenario(ctx context.Context, scenarios ScenarioLister, id string) (domain.Scenario, bool, error) {
	all, err := scenarios.List(ctx)
	if err != nil {
		return domain.Scenario{}, false, err
	}
	sc, ok := lookup(all, id)
	return sc, ok, nil
}

func lookup(all []domain.Scenario, id string) (domain.Scenario, bool) {
	for _, sc := range all {
		if sc.ID == id {
			return sc, true
		}
	}
	return domain.Scenario{}, false
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
