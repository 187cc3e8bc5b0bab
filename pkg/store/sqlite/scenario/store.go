package scenario

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/cost-planner/pkg/models/store"
	"github.com/de-tools/cost-planner/pkg/store/sqlite"
)

type Store interface {
	List(ctx context.Context) ([]store.Scenario, error)
	Add(ctx context.Context, scenario store.Scenario) error
	Delete(ctx context.Context, id string) error
}

type scenarioStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &scenarioStore{
		db: db,
	}, nil
}

func (s *scenarioStore) List(ctx context.Context) ([]store.Scenario, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, total_cost
		FROM scenarios
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make([]store.Scenario, 0)
	positions := make(map[string]int)
	for rows.Next() {
		var sc store.Scenario
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Description, &sc.CreatedAt, &sc.TotalCost); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		positions[sc.ID] = len(scenarios)
		scenarios = append(scenarios, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}

	if len(scenarios) == 0 {
		return scenarios, nil
	}

	resources, err := s.db.QueryContext(ctx, `
		SELECT scenario_id, position, resource_index, name, resource_type, monthly_cost, adjustment
		FROM scenario_resources
		ORDER BY scenario_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query scenario resources: %w", err)
	}
	defer resources.Close()

	for resources.Next() {
		var (
			scenarioID string
			r          store.ScenarioResource
		)
		if err := resources.Scan(
			&scenarioID,
			&r.Position,
			&r.ResourceIndex,
			&r.Name,
			&r.ResourceType,
			&r.MonthlyCost,
			&r.Adjustment,
		); err != nil {
			return nil, fmt.Errorf("scan scenario resource: %w", err)
		}

		pos, ok := positions[scenarioID]
		if !ok {
			continue
		}
		scenarios[pos].Resources = append(scenarios[pos].Resources, r)
	}
	if err := resources.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenario resources: %w", err)
	}

	return scenarios, nil
}

func (s *scenarioStore) Add(ctx context.Context, scenario store.Scenario) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scenarios (id, name, description, created_at, total_cost)
			VALUES (?, ?, ?, ?, ?)`,
			scenario.ID,
			scenario.Name,
			scenario.Description,
			scenario.CreatedAt.UTC(),
			scenario.TotalCost,
		)
		if err != nil {
			return fmt.Errorf("insert scenario: %w", err)
		}

		if len(scenario.Resources) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO scenario_resources (
				scenario_id, position, resource_index, name, resource_type, monthly_cost, adjustment
			) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, r := range scenario.Resources {
			_, err = stmt.ExecContext(ctx,
				scenario.ID,
				r.Position,
				r.ResourceIndex,
				r.Name,
				r.ResourceType,
				r.MonthlyCost,
				r.Adjustment,
			)
			if err != nil {
				return fmt.Errorf("insert scenario resource: %w", err)
			}
		}
		return nil
	})
}

func (s *scenarioStore) Delete(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM scenario_resources WHERE scenario_id = ?`, id); err != nil {
			return fmt.Errorf("delete scenario resources: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete scenario: %w", err)
		}
		return nil
	})
}

// inTx runs fn in the transaction carried by ctx, or in a new one.
func (s *scenarioStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return sqlite.RunInTx(ctx, s.db, func(ctx context.Context) error {
		return fn(sqlite.GetTransaction(ctx))
	})
}
