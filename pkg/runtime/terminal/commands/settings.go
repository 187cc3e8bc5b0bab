package commands

import (
	"fmt"

	"github.com/de-tools/cost-planner/pkg/services/config"
	"github.com/spf13/cobra"
)

// SettingsReporter prints resolved settings.
type SettingsReporter interface {
	Handle(settings *config.Settings) error
}

type SettingsCmd struct {
	apiURL     string
	llm        string
	dbPath     string
	profile    string
	serverHost string
	serverPort int
	env        Env
}

func NewSettingsCmd(env Env, reporter SettingsReporter) *cobra.Command {
	sc := &SettingsCmd{env: env}
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change persisted settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return reporter.Handle(env.Settings())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "profiles",
		Short: "List the profiles of the credentials file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := config.NewRegistry(env.CredentialsPath())
			if err != nil {
				return fmt.Errorf("failed to read credentials file: %w", err)
			}
			profiles, err := registry.GetProfiles(cmd.Context())
			if err != nil {
				return err
			}

			active := env.Settings().Profile
			for _, profile := range profiles {
				marker := " "
				if profile == active {
					marker = "*"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, profile); err != nil {
					return err
				}
			}
			return nil
		},
	})

	set := &cobra.Command{
		Use:   "set",
		Short: "Write settings to the settings file",
		Args:  cobra.NoArgs,
		RunE:  sc.runSet,
	}
	set.Flags().StringVar(&sc.apiURL, "api-url", "", "Estimator API base URL")
	set.Flags().StringVar(&sc.llm, "llm", "", "LLM used for usage suggestions")
	set.Flags().StringVar(&sc.dbPath, "db-path", "", "Path of the scenario database")
	set.Flags().StringVar(&sc.profile, "profile", "", "Credentials profile")
	set.Flags().StringVar(&sc.serverHost, "server-host", "", "Web server host")
	set.Flags().IntVar(&sc.serverPort, "server-port", 0, "Web server port")
	cmd.AddCommand(set)

	return cmd
}

func (sc *SettingsCmd) runSet(cmd *cobra.Command, _ []string) error {
	path := sc.env.SettingsPath()
	settings, err := config.ReadFile(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := 0
	if flags.Changed("api-url") {
		settings.APIURL = sc.apiURL
		changed++
	}
	if flags.Changed("llm") {
		settings.LLM = sc.llm
		changed++
	}
	if flags.Changed("db-path") {
		settings.DBPath = sc.dbPath
		changed++
	}
	if flags.Changed("profile") {
		settings.Profile = sc.profile
		changed++
	}
	if flags.Changed("server-host") {
		settings.Server.Host = sc.serverHost
		changed++
	}
	if flags.Changed("server-port") {
		settings.Server.Port = sc.serverPort
		changed++
	}
	if changed == 0 {
		return fmt.Errorf("nothing to set, pass at least one flag")
	}

	if err := config.Save(path, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", path)
	return err
}
