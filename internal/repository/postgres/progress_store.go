package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

var _ repository.ProgressStore = (*pgProgressStore)(nil)

type pgProgressStore struct {
	pool *pgxpool.Pool
}

// NewPostgresProgressStore creates a transactional progress store. Scalar
// counters live in user_progress; the solved set lives in user_solved_problems.
func NewPostgresProgressStore(pool *pgxpool.Pool) repository.ProgressStore {
	return &pgProgressStore{pool: pool}
}

const progressColumns = `
	total_xp, total_solved, current_streak, longest_streak, last_solved_date,
	by_category, by_difficulty, daily_activity, achievements, updated_at`

func (s *pgProgressStore) Get(ctx context.Context, userID string) (*domain.ProgressRecord, error) {
	rec, err := loadProgress(ctx, s.pool, userID, false)
	if err != nil {
		return nil, fmt.Errorf("postgres: get progress: %w", err)
	}
	return rec, nil
}

// Update runs fn under a row lock on the user's progress row. The solved-set
// insert and the counter update commit together or not at all.
func (s *pgProgressStore) Update(ctx context.Context, userID string, fn func(rec *domain.ProgressRecord) (bool, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin progress tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Ensure a row exists so FOR UPDATE has something to lock.
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_progress (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID,
	); err != nil {
		return fmt.Errorf("postgres: init progress: %w", err)
	}

	rec, err := loadProgress(ctx, tx, userID, true)
	if err != nil {
		return fmt.Errorf("postgres: lock progress: %w", err)
	}
	before := make(map[string]struct{}, len(rec.SolvedProblems))
	for id := range rec.SolvedProblems {
		before[id] = struct{}{}
	}

	changed, err := fn(rec)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	for id, at := range rec.SolvedProblems {
		if _, ok := before[id]; ok {
			continue
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO user_solved_problems (user_id, problem_id, solved_at)
			 VALUES ($1, $2, $3) ON CONFLICT (user_id, problem_id) DO NOTHING`,
			userID, id, at,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert solved problem: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("postgres: problem %s already in solved set", id)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_progress
		SET total_xp = $2, total_solved = $3, current_streak = $4, longest_streak = $5,
		    last_solved_date = $6, by_category = $7, by_difficulty = $8,
		    daily_activity = $9, achievements = $10, updated_at = $11
		WHERE user_id = $1`,
		userID, rec.TotalXP, rec.TotalSolved, rec.CurrentStreak, rec.LongestStreak,
		rec.LastSolvedDate, rec.ByCategory, rec.ByDifficulty,
		rec.DailyActivity, rec.Achievements, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("postgres: update progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit progress: %w", err)
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadProgress(ctx context.Context, q querier, userID string, forUpdate bool) (*domain.ProgressRecord, error) {
	rec := domain.NewProgressRecord(userID)

	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var updatedAt *time.Time
	err := q.QueryRow(ctx, query, userID).Scan(
		&rec.TotalXP, &rec.TotalSolved, &rec.CurrentStreak, &rec.LongestStreak,
		&rec.LastSolvedDate, &rec.ByCategory, &rec.ByDifficulty,
		&rec.DailyActivity, &rec.Achievements, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return nil, err
	}
	if updatedAt != nil {
		rec.UpdatedAt = *updatedAt
	}

	rows, err := q.Query(ctx,
		`SELECT problem_id, solved_at FROM user_solved_problems WHERE user_id = $1`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		rec.SolvedProblems[id] = at
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if rec.ByCategory == nil {
		rec.ByCategory = make(map[string]int)
	}
	if rec.ByDifficulty == nil {
		rec.ByDifficulty = make(map[domain.Difficulty]int)
	}
	if rec.Achievements == nil {
		rec.Achievements = make(map[domain.Achievement]time.Time)
	}
	return rec, nil
}
