package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/cost-planner/cmd/mcp/tools"
	"github.com/de-tools/cost-planner/pkg/services/config"
	"github.com/de-tools/cost-planner/pkg/services/scenario"
	"github.com/de-tools/cost-planner/pkg/store/sqlite"
	scenariostore "github.com/de-tools/cost-planner/pkg/store/sqlite/scenario"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

func main() {
	// stdout carries the protocol.
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	settings, err := config.Load(ctx, config.LoadOptions{
		SettingsPath: os.Getenv("CCP_SETTINGS_PATH"),
	})
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	db, err := sqlite.NewDB(ctx, sqlite.Settings{DbPath: settings.DBPath})
	if err != nil {
		return fmt.Errorf("failed to open scenario database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	store, err := scenariostore.NewStore(db)
	if err != nil {
		return err
	}
	repo, err := scenario.NewRepository(store)
	if err != nil {
		return err
	}

	s := server.NewMCPServer(
		"cost-planner-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	tools.RegisterScenarioTools(s, repo)

	return server.ServeStdio(s)
}
