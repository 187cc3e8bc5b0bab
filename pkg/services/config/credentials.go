package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

const DefaultProfile = "default"

// Credentials are the estimator API keys stored in one credentials profile.
type Credentials struct {
	GeminiAPIKey    string
	InfracostAPIKey string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetCredentials(ctx context.Context, profile string) (Credentials, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetCredentials(_ context.Context, profile string) (Credentials, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return Credentials{}, fmt.Errorf("profile %s not found", profile)
	}

	return Credentials{
		GeminiAPIKey:    section.Key("gemini_api_key").String(),
		InfracostAPIKey: section.Key("infracost_api_key").String(),
	}, nil
}
