package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// Ensure pgSubmissionRepo implements repository.SubmissionRepository.
var _ repository.SubmissionRepository = (*pgSubmissionRepo)(nil)

type pgSubmissionRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresSubmissionRepository creates a new PostgreSQL-backed submission repository.
func NewPostgresSubmissionRepository(pool *pgxpool.Pool) repository.SubmissionRepository {
	return &pgSubmissionRepo{pool: pool}
}

const submissionColumns = `
	id, user_id, problem_id, language, source_code, stdin, token, mode, status,
	stdout, stderr, compile_output, time_seconds, memory_kb, exit_code,
	passed_cases, total_cases, xp_earned, created_at, completed_at`

func (r *pgSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	query := `
		INSERT INTO submissions (id, user_id, problem_id, language, source_code, stdin, token, mode, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now().UTC()
	if sub.Status == "" {
		sub.Status = domain.StatusPending
	}
	_, err := r.pool.Exec(ctx, query,
		sub.ID, sub.UserID, sub.ProblemID, sub.Language, sub.SourceCode,
		sub.Stdin, sub.Token, sub.Mode, sub.Status, now,
	)
	if err != nil {
		return fmt.Errorf("postgres: create submission: %w", err)
	}
	sub.CreatedAt = now
	return nil
}

func (r *pgSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("postgres: get submission by id: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepo) GetByToken(ctx context.Context, token string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE token = $1`
	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		return nil, fmt.Errorf("postgres: get submission by token: %w", err)
	}
	return sub, nil
}

// SetResult applies the outcome only while completed_at is NULL.
func (r *pgSubmissionRepo) SetResult(ctx context.Context, id uuid.UUID, o domain.SubmissionOutcome) (bool, error) {
	query := `
		UPDATE submissions
		SET status = $1, stdout = $2, stderr = $3, compile_output = $4,
		    time_seconds = $5, memory_kb = $6, exit_code = $7,
		    passed_cases = $8, total_cases = $9, xp_earned = $10, completed_at = $11
		WHERE id = $12 AND completed_at IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		o.Status, o.Stdout, o.Stderr, o.CompileOutput,
		o.TimeSeconds, o.MemoryKB, o.ExitCode,
		o.PassedCases, o.TotalCases, o.XPEarned, time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: set result: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	sub := &domain.Submission{}
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Language, &sub.SourceCode,
		&sub.Stdin, &sub.Token, &sub.Mode, &sub.Status,
		&sub.Stdout, &sub.Stderr, &sub.CompileOutput,
		&sub.TimeSeconds, &sub.MemoryKB, &sub.ExitCode,
		&sub.PassedCases, &sub.TotalCases, &sub.XPEarned,
		&sub.CreatedAt, &sub.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
