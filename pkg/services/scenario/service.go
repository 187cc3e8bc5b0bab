package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/comparison"
	"github.com/de-tools/cost-planner/pkg/services/cost"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrEmptyName = errors.New("scenario name cannot be empty")

// Repository persists scenarios.
type Repository interface {
	List(ctx context.Context) ([]domain.Scenario, error)
	Add(ctx context.Context, scenario domain.Scenario) error
	Delete(ctx context.Context, id string) error
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) { s.newID = newID }
}

// Service keeps the saved scenarios in memory, backed by a Repository, along
// with the active and comparison selection.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() (string, error)

	mu        sync.RWMutex
	scenarios []domain.Scenario
	selection domain.Selection
}

func NewService(repo Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("scenario repository is nil")
	}

	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: newScenarioID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init loads the stored collection. Unreadable storage leaves the service
// empty instead of failing.
func (s *Service) Init(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	scenarios, err := s.repo.List(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load scenarios, starting with an empty collection")
		scenarios = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios = scenarios
	s.selection = domain.Selection{}

	logger.Debug().Int("count", len(scenarios)).Msg("scenarios loaded")
}

// Save snapshots resources and adjustments into a new scenario and returns
// its id. The inputs are copied, never retained.
func (s *Service) Save(
	ctx context.Context,
	name, description string,
	resources []domain.Resource,
	adjustments domain.Adjustments,
) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate scenario id: %w", err)
	}

	snapshot := make([]domain.ScenarioResource, 0, len(resources))
	for _, r := range resources {
		snapshot = append(snapshot, domain.ScenarioResource{
			Name:         r.Name,
			ResourceType: r.ResourceType,
			MonthlyCost:  r.MonthlyCost,
			Index:        r.Index,
			Adjustment:   adjustments[r.Index],
		})
	}

	sc := domain.Scenario{
		ID:          id,
		Name:        name,
		Description: description,
		Date:        s.now().UTC(),
		Resources:   snapshot,
		TotalCost:   cost.Total(resources, adjustments).Round(2),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Add(ctx, sc); err != nil {
		return "", fmt.Errorf("persist scenario: %w", err)
	}
	s.scenarios = append(s.scenarios, sc)

	zerolog.Ctx(ctx).Info().
		Str("id", id).
		Str("name", name).
		Str("total", cost.FormatAmount(sc.TotalCost)).
		Msg("scenario saved")
	return id, nil
}

// Delete removes a scenario and any selection pointing at it. Unknown ids
// are ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.positionLocked(id)
	if pos < 0 {
		return nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete scenario %s: %w", id, err)
	}
	s.scenarios = append(s.scenarios[:pos:pos], s.scenarios[pos+1:]...)

	if s.selection.ActiveID == id {
		s.selection.ActiveID = ""
	}
	if s.selection.BaselineID == id || s.selection.ProposedID == id {
		if s.selection.BaselineID == id {
			s.selection.BaselineID = ""
		}
		if s.selection.ProposedID == id {
			s.selection.ProposedID = ""
		}
		s.selection.ComparisonMode = false
	}
	return nil
}

func (s *Service) Get(id string) (domain.Scenario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos := s.positionLocked(id)
	if pos < 0 {
		return domain.Scenario{}, false
	}
	return s.scenarios[pos], true
}

func (s *Service) List() []domain.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Scenario, len(s.scenarios))
	copy(out, s.scenarios)
	return out
}

// Load rebuilds live resources and adjustments from a saved scenario and
// marks it active.
func (s *Service) Load(id string) (domain.LoadedScenario, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.positionLocked(id)
	if pos < 0 {
		return domain.LoadedScenario{}, false
	}
	sc := s.scenarios[pos]

	loaded := domain.LoadedScenario{
		Resources:   make([]domain.Resource, 0, len(sc.Resources)),
		Adjustments: make(domain.Adjustments, len(sc.Resources)),
	}
	for _, r := range sc.Resources {
		loaded.Resources = append(loaded.Resources, domain.Resource{
			Index:        r.Index,
			Name:         r.Name,
			ResourceType: r.ResourceType,
			MonthlyCost:  r.MonthlyCost,
		})
		loaded.Adjustments[r.Index] = r.Adjustment
	}

	s.selection.ActiveID = id
	return loaded, true
}

func (s *Service) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.ActiveID = id
}

func (s *Service) SetComparison(baselineID, proposedID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.BaselineID = baselineID
	s.selection.ProposedID = proposedID
	s.selection.ComparisonMode = true
}

func (s *Service) ExitComparison() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.ComparisonMode = false
}

func (s *Service) Selection() domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Compare diffs the scenarios currently selected for comparison.
func (s *Service) Compare() (*domain.Comparison, bool) {
	sel := s.Selection()
	return s.CompareIDs(sel.BaselineID, sel.ProposedID)
}

func (s *Service) CompareIDs(baselineID, proposedID string) (*domain.Comparison, bool) {
	baseline, ok := s.Get(baselineID)
	if !ok {
		return nil, false
	}
	proposed, ok := s.Get(proposedID)
	if !ok {
		return nil, false
	}
	return comparison.Compare(&baseline, &proposed), true
}

func (s *Service) positionLocked(id string) int {
	for i, sc := range s.scenarios {
		if sc.ID == id {
			return i
		}
	}
	return -1
}

func newScenarioID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
