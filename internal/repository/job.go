package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// JobStatus enumerates the lifecycle of a render job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// ErrNotFound is returned when no job has the requested id.
var ErrNotFound = errors.New("report job not found")

// ReportJob represents a row in the report_jobs table.
type ReportJob struct {
	ID           string    `json:"id"`
	Format       string    `json:"format"`
	Descriptor   string    `json:"-"`
	OutputKey    *string   `json:"outputKey,omitempty"`
	Status       JobStatus `json:"status"`
	Pages        int       `json:"pages,omitempty"`
	Messages     []string  `json:"messages,omitempty"`
	ErrorMessage *string   `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// JobRepository wraps all SQL used by the API and the worker.
type JobRepository struct {
	db DB
}

// NewJobRepository constructs a repository.
func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a queued job.
func (r *JobRepository) Create(ctx context.Context, job *ReportJob) error {
	now := time.Now().UTC()
	job.Status = StatusQueued
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Messages == nil {
		job.Messages = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO report_jobs (id, format, descriptor, status, messages, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, job.ID, job.Format, job.Descriptor, job.Status, job.Messages, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert report job: %w", err)
	}
	return nil
}

// Get returns a job by id.
func (r *JobRepository) Get(ctx context.Context, id string) (*ReportJob, error) {
	var (
		job       ReportJob
		outputKey sql.NullString
		errorMsg  sql.NullString
	)
	row := r.db.QueryRow(ctx, `
		SELECT id, format, descriptor, output_key, status, pages, messages, error_message, created_at, updated_at
		FROM report_jobs WHERE id=$1
	`, id)
	if err := row.Scan(&job.ID, &job.Format, &job.Descriptor, &outputKey, &job.Status, &job.Pages, &job.Messages, &errorMsg, &job.CreatedAt, &job.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("select report job: %w", err)
	}
	if outputKey.Valid {
		key := outputKey.String
		job.OutputKey = &key
	}
	if errorMsg.Valid {
		msg := errorMsg.String
		job.ErrorMessage = &msg
	}
	return &job, nil
}

// MarkRunning sets the status to running.
func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.update(ctx, id, StatusRunning, nil, nil, nil, nil)
}

// MarkFailed records the failure and whatever the engine reported.
func (r *JobRepository) MarkFailed(ctx context.Context, id, msg string, messages []string) error {
	return r.update(ctx, id, StatusFailed, nil, nil, messages, &msg)
}

// MarkCompleted stores where the rendered report lives.
func (r *JobRepository) MarkCompleted(ctx context.Context, id, outputKey string, pages int, messages []string) error {
	return r.update(ctx, id, StatusCompleted, &outputKey, &pages, messages, nil)
}

func (r *JobRepository) update(ctx context.Context, id string, status JobStatus, outputKey *string, pages *int, messages []string, errorMsg *string) error {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE report_jobs
		SET status=$1,
			output_key = COALESCE($2, output_key),
			pages = COALESCE($3, pages),
			messages = COALESCE($4, messages),
			error_message = $5,
			updated_at=$6
		WHERE id=$7
	`, status, outputKey, pages, messages, errorMsg, now, id)
	if err != nil {
		return fmt.Errorf("update report job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
