package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/assigntrack/internal/app/models"
	"github.com/emre/assigntrack/internal/pkg/apperrors"
	"github.com/emre/assigntrack/internal/pkg/dberrors"
	"github.com/emre/assigntrack/internal/pkg/logger"
)

// ISubmissionRepository defines the interface for submission database operations
type ISubmissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	GetByPair(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Submission, error)
	CountSubmitted(ctx context.Context) (int64, error)
}

// SubmissionRepository handles submission database operations. A row exists
// only for pairs that have actually submitted; "not submitted" is never
// stored, it is derived by the service layer.
type SubmissionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var submissionColumns = []string{"id", "assignment_id", "student_id", "status", "submitted_at", "file_url"}

// Upsert records a submission for an (assignment, student) pair. Resubmission
// overwrites the existing row: the pair is unique, so ON CONFLICT refreshes
// status, timestamp and file URL in place.
func (r *SubmissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	now := time.Now()
	if submission.SubmittedAt == nil {
		submission.SubmittedAt = &now
	}

	sql, args, err := r.sb.Insert("submissions").
		Columns("assignment_id", "student_id", "status", "submitted_at", "file_url").
		Values(submission.AssignmentID, submission.StudentID, submission.Status, submission.SubmittedAt, submission.FileURL).
		Suffix("ON CONFLICT ON CONSTRAINT uq_submissions_assignment_student DO UPDATE SET status = EXCLUDED.status, submitted_at = EXCLUDED.submitted_at, file_url = EXCLUDED.file_url").
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert submission SQL")
		return fmt.Errorf("failed to build upsert submission query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&submission.ID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrAssignmentNotFound
		}
		logger.Error().Err(err).
			Int64("assignmentID", submission.AssignmentID).
			Int64("studentID", submission.StudentID).
			Msg("Error executing upsert submission query")
		return fmt.Errorf("error upserting submission: %w", err)
	}
	return nil
}

// GetByPair retrieves the submission row for an (assignment, student) pair
func (r *SubmissionRepository) GetByPair(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error) {
	sql, args, err := r.sb.Select(submissionColumns...).
		From("submissions").
		Where(squirrel.Eq{"assignment_id": assignmentID, "student_id": studentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get submission query: %w", err)
	}

	s := &models.Submission{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.Status, &s.SubmittedAt, &s.FileURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubmissionNotFound
		}
		logger.Error().Err(err).Msg("Error scanning submission row")
		return nil, fmt.Errorf("error retrieving submission: %w", err)
	}
	return s, nil
}

// ListByStudent retrieves all submission rows of one student
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Submission, error) {
	sql, args, err := r.sb.Select(submissionColumns...).
		From("submissions").
		Where(squirrel.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list by student query: %w", err)
	}
	return r.querySubmissions(ctx, sql, args)
}

// ListByAssignment retrieves all submission rows for one assignment
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Submission, error) {
	sql, args, err := r.sb.Select(submissionColumns...).
		From("submissions").
		Where(squirrel.Eq{"assignment_id": assignmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list by assignment query: %w", err)
	}
	return r.querySubmissions(ctx, sql, args)
}

// CountSubmitted counts all submission rows
func (r *SubmissionRepository) CountSubmitted(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("submissions").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count submissions query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Msg("Error counting submissions")
		return 0, fmt.Errorf("error counting submissions: %w", err)
	}
	return count, nil
}

func (r *SubmissionRepository) querySubmissions(ctx context.Context, sql string, args []interface{}) ([]*models.Submission, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing submissions query")
		return nil, fmt.Errorf("error listing submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*models.Submission, 0)
	for rows.Next() {
		s := &models.Submission{}
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.Status, &s.SubmittedAt, &s.FileURL); err != nil {
			return nil, fmt.Errorf("error scanning submission row: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}
	return submissions, nil
}
