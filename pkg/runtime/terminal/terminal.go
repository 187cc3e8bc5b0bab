package terminal

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/cost-planner/pkg/client/estimator"
	"github.com/de-tools/cost-planner/pkg/runtime/terminal/commands"
	"github.com/de-tools/cost-planner/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-planner/pkg/services/config"
	"github.com/de-tools/cost-planner/pkg/services/scenario"
	"github.com/de-tools/cost-planner/pkg/services/usage"
	"github.com/de-tools/cost-planner/pkg/store/sqlite"
	scenariostore "github.com/de-tools/cost-planner/pkg/store/sqlite/scenario"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	output    io.Writer
	logOutput io.Writer
	reporter  *export.Reporter
	rootCmd   *cobra.Command

	settingsPath    string
	credentialsPath string
	verbose         bool

	settings  *config.Settings
	db        *sql.DB
	scenarios *scenario.Service
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// LogOutput receives diagnostics, stderr by default.
	LogOutput io.Writer
	// Input feeds interactive prompts, stdin by default.
	Input io.Reader
	Args  []string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) (*CLI, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	settingsReporter, err := NewSettingsReporter(opts.Output)
	if err != nil {
		return nil, err
	}

	cli := &CLI{
		output:    opts.Output,
		logOutput: opts.LogOutput,
		reporter:  export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd(settingsReporter)
	if opts.Input != nil {
		cli.rootCmd.SetIn(opts.Input)
	}
	if opts.Args != nil {
		cli.rootCmd.SetArgs(opts.Args)
	}
	return cli, nil
}

func (cli *CLI) Execute() error {
	defer cli.close()
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd(settingsReporter *SettingsReporter) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "ccp",
		Short:             "Cloud cost planner",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cli.setup,
	}
	cmd.SetOut(cli.output)

	flags := cmd.PersistentFlags()
	flags.StringVar(&cli.settingsPath, "config", "", "Settings file (default is $HOME/.cost-planner.yaml)")
	flags.StringVar(&cli.credentialsPath, "credentials", "", "Credentials file (default is $HOME/.cost-planner/credentials)")
	flags.String("api-url", "", "Estimator API base URL")
	flags.String("db", "", "Scenario database path")
	flags.String("profile", "", "Credentials profile")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(commands.NewEstimateCmd(cli, cli.reporter))
	cmd.AddCommand(commands.NewScenariosCmd(cli, cli.reporter))
	cmd.AddCommand(commands.NewCompareCmd(cli, cli.reporter))
	cmd.AddCommand(commands.NewSettingsCmd(cli, settingsReporter))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	level := zerolog.WarnLevel
	if cli.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.logOutput}).
		Level(level).
		With().
		Timestamp().
		Logger()
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	if cli.settingsPath == "" {
		path, err := config.DefaultSettingsPath()
		if err != nil {
			return fmt.Errorf("resolve settings path: %w", err)
		}
		cli.settingsPath = path
	}
	if cli.credentialsPath == "" {
		path, err := config.DefaultCredentialsPath()
		if err != nil {
			return fmt.Errorf("resolve credentials path: %w", err)
		}
		cli.credentialsPath = path
	}

	// Subcommands may shadow a persistent flag with a local one of the same
	// name, so values are read from the merged set.
	overrides := map[string]any{}
	flags := cmd.Flags()
	for flag, key := range map[string]string{
		"api-url": "api_url",
		"db":      "db_path",
		"profile": "profile",
	} {
		if !flags.Changed(flag) {
			continue
		}
		value, err := flags.GetString(flag)
		if err != nil {
			return err
		}
		overrides[key] = value
	}

	settings, err := config.Load(ctx, config.LoadOptions{
		SettingsPath:    cli.settingsPath,
		CredentialsPath: cli.credentialsPath,
		Overrides:       overrides,
	})
	if err != nil {
		return err
	}
	cli.settings = settings
	return nil
}

func (cli *CLI) Settings() *config.Settings {
	return cli.settings
}

func (cli *CLI) SettingsPath() string {
	return cli.settingsPath
}

func (cli *CLI) CredentialsPath() string {
	return cli.credentialsPath
}

func (cli *CLI) Estimator() (estimator.Client, error) {
	return estimator.NewClient(estimator.Config{
		BaseURL:      cli.settings.APIURL,
		GeminiKey:    cli.settings.GeminiAPIKey,
		InfracostKey: cli.settings.InfracostAPIKey,
		LLM:          cli.settings.LLM,
		Timeout:      cli.settings.ClientTimeout,
	})
}

func (cli *CLI) Normalizer() (*usage.Normalizer, error) {
	rules, err := cli.settings.Rules()
	if err != nil {
		return nil, err
	}
	return usage.NewNormalizer(rules), nil
}

// Scenarios opens the scenario database on first use.
func (cli *CLI) Scenarios(ctx context.Context) (*scenario.Service, error) {
	if cli.scenarios != nil {
		return cli.scenarios, nil
	}

	db, err := sqlite.NewDB(ctx, sqlite.Settings{DbPath: cli.settings.DBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario database: %w", err)
	}
	cli.db = db

	store, err := scenariostore.NewStore(db)
	if err != nil {
		return nil, err
	}
	repo, err := scenario.NewRepository(store)
	if err != nil {
		return nil, err
	}
	svc, err := scenario.NewService(repo)
	if err != nil {
		return nil, err
	}
	svc.Init(ctx)

	cli.scenarios = svc
	return svc, nil
}

func (cli *CLI) close() {
	if cli.db == nil {
		return
	}
	if err := cli.db.Close(); err != nil {
		fmt.Fprintf(cli.logOutput, "failed to close scenario database: %v\n", err)
	}
	cli.db = nil
	cli.scenarios = nil
}
