package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

var _ repository.ProblemStatsRepository = (*pgStatsRepo)(nil)

type pgStatsRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresStatsRepository creates the per-problem verdict aggregate used by the worker.
func NewPostgresStatsRepository(pool *pgxpool.Pool) repository.ProblemStatsRepository {
	return &pgStatsRepo{pool: pool}
}

func (r *pgStatsRepo) RecordVerdict(ctx context.Context, event *domain.VerdictEvent) error {
	accepted := 0
	if event.Status == domain.StatusAccepted {
		accepted = 1
	}
	solvers := 0
	if event.FirstSolve() {
		solvers = 1
	}

	query := `
		INSERT INTO problem_stats (problem_id, attempts, accepted, unique_solvers, updated_at)
		VALUES ($1, 1, $2, $3, $4)
		ON CONFLICT (problem_id) DO UPDATE
		SET attempts = problem_stats.attempts + 1,
		    accepted = problem_stats.accepted + EXCLUDED.accepted,
		    unique_solvers = problem_stats.unique_solvers + EXCLUDED.unique_solvers,
		    updated_at = EXCLUDED.updated_at`

	if _, err := r.pool.Exec(ctx, query, event.ProblemID, accepted, solvers, event.OccurredAt.UTC()); err != nil {
		return fmt.Errorf("postgres: record verdict: %w", err)
	}
	return nil
}
