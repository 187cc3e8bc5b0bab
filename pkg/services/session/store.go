package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/cost"
	"github.com/de-tools/cost-planner/pkg/services/usage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var ErrUnknownResource = errors.New("unknown resource index")

// Suggester proposes a starting usage percentage for a resource.
type Suggester interface {
	SuggestUsage(ctx context.Context, resource domain.Resource) (int, error)
}

// Snapshot is a consistent copy of the live session.
type Snapshot struct {
	ProjectID   string
	Resources   []domain.Resource
	Adjustments domain.Adjustments
}

// Store holds the resources of the current upload and their adjustments.
type Store struct {
	normalizer *usage.Normalizer

	mu          sync.RWMutex
	projectID   string
	resources   []domain.Resource
	adjustments domain.Adjustments
}

func NewStore(normalizer *usage.Normalizer) *Store {
	if normalizer == nil {
		normalizer = usage.NewNormalizer(nil)
	}
	return &Store{
		normalizer:  normalizer,
		adjustments: domain.Adjustments{},
	}
}

// Ingest installs an uploaded project, seeding each adjustment from the
// suggester. Suggestions are gathered before the session is touched, so a
// slow or failing collaborator never leaves it half-initialised.
func (s *Store) Ingest(ctx context.Context, project domain.Project, suggester Suggester) Snapshot {
	logger := zerolog.Ctx(ctx)
	resources := reindex(project.Resources)

	adjustments := make(domain.Adjustments, len(resources))
	for _, r := range resources {
		adjustments[r.Index] = domain.DefaultAdjustment
		if suggester == nil {
			continue
		}

		suggested, err := suggester.SuggestUsage(ctx, r)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("resource", r.Name).
				Msg("usage suggestion failed, assuming full usage")
			continue
		}
		adjustments[r.Index] = domain.ClampAdjustment(suggested)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projectID = project.ID
	s.resources = resources
	s.adjustments = adjustments
	return s.snapshotLocked()
}

// ReplaceResources installs a new resource list. Adjustments follow resources
// by name, so a reordered re-upload keeps each resource's assumption.
func (s *Store) ReplaceResources(projectID string, resources []domain.Resource) Snapshot {
	resources = reindex(resources)

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]int, len(s.resources))
	for _, r := range s.resources {
		if adj, ok := s.adjustments[r.Index]; ok {
			previous[r.Name] = adj
		}
	}

	adjustments := make(domain.Adjustments, len(resources))
	for _, r := range resources {
		adj, ok := previous[r.Name]
		if !ok {
			adj = domain.DefaultAdjustment
		}
		adjustments[r.Index] = adj
	}

	s.projectID = projectID
	s.resources = resources
	s.adjustments = adjustments
	return s.snapshotLocked()
}

// Restore replaces the live state with a loaded scenario. Scenarios don't
// record the estimator project they came from, so the project id is cleared.
func (s *Store) Restore(loaded domain.LoadedScenario) Snapshot {
	resources := make([]domain.Resource, len(loaded.Resources))
	copy(resources, loaded.Resources)

	adjustments := make(domain.Adjustments, len(resources))
	for _, r := range resources {
		adjustments[r.Index] = domain.ClampAdjustment(loaded.Adjustments[r.Index])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projectID = ""
	s.resources = resources
	s.adjustments = adjustments
	return s.snapshotLocked()
}

func (s *Store) UpdateAdjustment(index, value int) error {
	return s.UpdateAdjustments(domain.Adjustments{index: value})
}

// UpdateAdjustments applies all values or none of them.
func (s *Store) UpdateAdjustments(values domain.Adjustments) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for index := range values {
		if !s.hasIndexLocked(index) {
			return fmt.Errorf("%w: %d", ErrUnknownResource, index)
		}
	}
	for index, value := range values {
		s.adjustments[index] = domain.ClampAdjustment(value)
	}
	return nil
}

// ApplyUsage converts structured usage answers into adjustments for every
// resource in the session.
func (s *Store) ApplyUsage(answer domain.UsageAnswer) domain.Adjustments {
	s.mu.Lock()
	defer s.mu.Unlock()

	for index, value := range s.normalizer.NormalizeAll(s.resources, answer) {
		s.adjustments[index] = value
	}
	return s.adjustments.Clone()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Resources() []domain.Resource {
	return s.Snapshot().Resources
}

func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cost.Total(s.resources, s.adjustments)
}

func (s *Store) LineItems() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cost.LineItems(s.resources, s.adjustments)
}

func (s *Store) hasIndexLocked(index int) bool {
	for _, r := range s.resources {
		if r.Index == index {
			return true
		}
	}
	return false
}

func (s *Store) snapshotLocked() Snapshot {
	resources := make([]domain.Resource, len(s.resources))
	copy(resources, s.resources)
	return Snapshot{
		ProjectID:   s.projectID,
		Resources:   resources,
		Adjustments: s.adjustments.Clone(),
	}
}

func reindex(resources []domain.Resource) []domain.Resource {
	out := make([]domain.Resource, len(resources))
	for i, r := range resources {
		r.Index = i
		out[i] = r
	}
	return out
}
