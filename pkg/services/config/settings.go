package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/cost-planner/pkg/services/usage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix = "CCP"

	DefaultAPIURL     = "http://localhost:8000"
	DefaultLLM        = "gemini"
	DefaultDBPath     = "cost-planner.db"
	DefaultServerHost = "localhost"
	DefaultServerPort = 8080

	settingsFileName    = ".cost-planner.yaml"
	credentialsDirName  = ".cost-planner"
	credentialsFileName = "credentials"
)

type ServerSettings struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// RuleSettings is a normalisation rule as written in the settings file.
type RuleSettings struct {
	Field   string `mapstructure:"field" yaml:"field"`
	Divisor string `mapstructure:"divisor" yaml:"divisor"`
}

type Settings struct {
	APIURL             string                  `mapstructure:"api_url" yaml:"api_url"`
	GeminiAPIKey       string                  `mapstructure:"gemini_api_key" yaml:"gemini_api_key,omitempty"`
	InfracostAPIKey    string                  `mapstructure:"infracost_api_key" yaml:"infracost_api_key,omitempty"`
	LLM                string                  `mapstructure:"llm" yaml:"llm"`
	DBPath             string                  `mapstructure:"db_path" yaml:"db_path"`
	Profile            string                  `mapstructure:"profile" yaml:"profile,omitempty"`
	ClientTimeout      time.Duration           `mapstructure:"client_timeout" yaml:"client_timeout,omitempty"`
	Server             ServerSettings          `mapstructure:"server" yaml:"server"`
	NormalizationRules map[string]RuleSettings `mapstructure:"normalization_rules" yaml:"normalization_rules,omitempty"`
}

type LoadOptions struct {
	// SettingsPath defaults to $HOME/.cost-planner.yaml. A missing file is
	// not an error.
	SettingsPath string
	// CredentialsPath defaults to $HOME/.cost-planner/credentials.
	CredentialsPath string
	// Overrides take precedence over every other source, keyed like the
	// settings file (e.g. "server.port").
	Overrides map[string]any
}

func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, settingsFileName), nil
}

func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, credentialsDirName, credentialsFileName), nil
}

func Default() *Settings {
	return &Settings{
		APIURL:  DefaultAPIURL,
		LLM:     DefaultLLM,
		DBPath:  DefaultDBPath,
		Profile: DefaultProfile,
		Server: ServerSettings{
			Host: DefaultServerHost,
			Port: DefaultServerPort,
		},
	}
}

// Load resolves settings from overrides, CCP_* environment variables, the
// settings file and built-in defaults, in that order. API keys left empty
// are then taken from the credentials profile.
func Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	logger := zerolog.Ctx(ctx)

	settingsPath := opts.SettingsPath
	if settingsPath == "" {
		path, err := DefaultSettingsPath()
		if err != nil {
			return nil, fmt.Errorf("resolve settings path: %w", err)
		}
		settingsPath = path
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(settingsPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		logger.Debug().Str("path", settingsPath).Msg("settings file not found, using defaults")
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if _, err := settings.Rules(); err != nil {
		return nil, err
	}

	if settings.GeminiAPIKey == "" || settings.InfracostAPIKey == "" {
		fillCredentials(ctx, &settings, opts.CredentialsPath)
	}

	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("infracost_api_key", "")
	v.SetDefault("llm", d.LLM)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("client_timeout", time.Duration(0))
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
}

func fillCredentials(ctx context.Context, settings *Settings, path string) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		p, err := DefaultCredentialsPath()
		if err != nil {
			return
		}
		path = p
	}

	registry, err := NewRegistry(path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("credentials file not loaded")
		return
	}

	profile := settings.Profile
	if profile == "" {
		profile = DefaultProfile
	}

	creds, err := registry.GetCredentials(ctx, profile)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("credentials profile not loaded")
		return
	}

	if settings.GeminiAPIKey == "" {
		settings.GeminiAPIKey = creds.GeminiAPIKey
	}
	if settings.InfracostAPIKey == "" {
		settings.InfracostAPIKey = creds.InfracostAPIKey
	}
}

// Rules returns the default normalisation rules with the configured ones
// applied on top.
func (s *Settings) Rules() (usage.Rules, error) {
	overrides := make(usage.Rules, len(s.NormalizationRules))
	for resourceType, rs := range s.NormalizationRules {
		divisor, err := decimal.NewFromString(strings.TrimSpace(rs.Divisor))
		if err != nil {
			return nil, fmt.Errorf("normalization rule %s: invalid divisor %q", resourceType, rs.Divisor)
		}
		rule, err := usage.NewRule(rs.Field, divisor)
		if err != nil {
			return nil, fmt.Errorf("normalization rule %s: %w", resourceType, err)
		}
		overrides[resourceType] = rule
	}
	return usage.DefaultRules().Merge(overrides), nil
}

func (s *Settings) Address() string {
	return net.JoinHostPort(s.Server.Host, strconv.Itoa(s.Server.Port))
}

// Save writes the settings file, readable only by the current user.
func Save(path string, settings *Settings) error {
	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0600)
}

// ReadFile returns the settings stored in the file alone, on top of the
// built-in defaults. Environment variables and credentials are not applied,
// so the result is safe to edit and Save back.
func ReadFile(path string) (*Settings, error) {
	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	settings := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}
