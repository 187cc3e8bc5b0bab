package main

import (
	"fmt"
	"os"

	"github.com/de-tools/cost-planner/pkg/client/estimator"
	"github.com/de-tools/cost-planner/pkg/server"
	"github.com/de-tools/cost-planner/pkg/services/config"
	"github.com/de-tools/cost-planner/pkg/services/scenario"
	"github.com/de-tools/cost-planner/pkg/services/session"
	"github.com/de-tools/cost-planner/pkg/services/usage"
	"github.com/de-tools/cost-planner/pkg/store/sqlite"
	scenariostore "github.com/de-tools/cost-planner/pkg/store/sqlite/scenario"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	settingsPath    string
	credentialsPath string
	host            string
	port            int
	dbPath          string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Cost Planner",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&settingsPath, "config", "c", "",
		"Path to the settings file (default is $HOME/.cost-planner.yaml)")
	rootCmd.Flags().StringVar(&credentialsPath, "credentials", "",
		"Path to the credentials file (default is $HOME/.cost-planner/credentials)")
	rootCmd.Flags().StringVar(&host, "host", "", "Server host")
	rootCmd.Flags().IntVar(&port, "port", 0, "Server port")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Scenario database path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg(".env file not loaded")
	}

	overrides := map[string]any{}
	if cmd.Flags().Changed("host") {
		overrides["server.host"] = host
	}
	if cmd.Flags().Changed("port") {
		overrides["server.port"] = port
	}
	if cmd.Flags().Changed("db") {
		overrides["db_path"] = dbPath
	}

	settings, err := config.Load(ctx, config.LoadOptions{
		SettingsPath:    settingsPath,
		CredentialsPath: credentialsPath,
		Overrides:       overrides,
	})
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	rules, err := settings.Rules()
	if err != nil {
		return err
	}

	db, err := sqlite.NewDB(ctx, sqlite.Settings{DbPath: settings.DBPath})
	if err != nil {
		return fmt.Errorf("failed to create SQLite instance: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}()

	store, err := scenariostore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create scenario store: %w", err)
	}
	repo, err := scenario.NewRepository(store)
	if err != nil {
		return fmt.Errorf("failed to create scenario repository: %w", err)
	}
	scenarios, err := scenario.NewService(repo)
	if err != nil {
		return fmt.Errorf("failed to create scenario service: %w", err)
	}
	scenarios.Init(ctx)

	client, err := estimator.NewClient(estimator.Config{
		BaseURL:      settings.APIURL,
		GeminiKey:    settings.GeminiAPIKey,
		InfracostKey: settings.InfracostAPIKey,
		LLM:          settings.LLM,
		Timeout:      settings.ClientTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create estimator client: %w", err)
	}

	logger.Info().
		Str("estimator", settings.APIURL).
		Str("db", settings.DBPath).
		Int("scenarios", len(scenarios.List())).
		Msg("configuration loaded")

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: settings.Address(),
		Dependencies: server.Dependencies{
			Session:   session.NewStore(usage.NewNormalizer(rules)),
			Scenarios: scenarios,
			Estimator: client,
		},
	})

	return webAPI.Start(ctx)
}
