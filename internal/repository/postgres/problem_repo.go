package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

var _ repository.ProblemRepository = (*pgProblemRepo)(nil)

type pgProblemRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresProblemRepository creates a read-only problem repository.
func NewPostgresProblemRepository(pool *pgxpool.Pool) repository.ProblemRepository {
	return &pgProblemRepo{pool: pool}
}

// GetByID returns the problem with its test cases ordered by id.
func (r *pgProblemRepo) GetByID(ctx context.Context, id string) (*domain.Problem, error) {
	p := &domain.Problem{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, category, difficulty, xp_reward FROM problems WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Category, &p.Difficulty, &p.XPReward)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: get problem: %w", domain.ErrProblemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get problem: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, input, expected_output FROM test_cases WHERE problem_id = $1 ORDER BY id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list test cases: %w", err)
	}
	p.TestCases, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TestCase, error) {
		var tc domain.TestCase
		err := row.Scan(&tc.ID, &tc.Input, &tc.ExpectedOutput)
		return tc, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan test cases: %w", err)
	}
	return p, nil
}
