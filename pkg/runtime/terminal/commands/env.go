package commands

import (
	"context"
	"errors"

	"github.com/de-tools/cost-planner/pkg/client/estimator"
	"github.com/de-tools/cost-planner/pkg/services/config"
	"github.com/de-tools/cost-planner/pkg/services/scenario"
	"github.com/de-tools/cost-planner/pkg/services/usage"
)

var ErrNoComparison = errors.New("select two scenarios to compare")

// Env resolves the collaborators of a command once flags are parsed.
type Env interface {
	Settings() *config.Settings
	SettingsPath() string
	CredentialsPath() string
	Estimator() (estimator.Client, error)
	Normalizer() (*usage.Normalizer, error)
	Scenarios(ctx context.Context) (*scenario.Service, error)
}
