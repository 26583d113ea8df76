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
	"github.com/emre/assigntrack/internal/pkg/logger"
)

// IAssignmentRepository defines the interface for assignment database operations
type IAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Assignment, error)
	List(ctx context.Context, search, sort string) ([]*models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// AssignmentRepository handles assignment database operations
type AssignmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var assignmentColumns = []string{"id", "title", "description", "due_date", "drive_link", "created_by", "created_at", "updated_at"}

// Create inserts a new assignment and returns its ID
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) (int64, error) {
	now := time.Now()
	sql, args, err := r.sb.Insert("assignments").
		Columns("title", "description", "due_date", "drive_link", "created_by", "created_at", "updated_at").
		Values(assignment.Title, assignment.Description, assignment.DueDate, assignment.DriveLink, assignment.CreatedBy, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create assignment SQL")
		return 0, fmt.Errorf("failed to build create assignment query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Str("title", assignment.Title).Msg("Error executing create assignment query")
		return 0, fmt.Errorf("error creating assignment: %w", err)
	}

	assignment.ID = id
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	return id, nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	sql, args, err := r.sb.Select(assignmentColumns...).
		From("assignments").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get assignment SQL")
		return nil, fmt.Errorf("failed to build get assignment query: %w", err)
	}

	a := &models.Assignment{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&a.ID, &a.Title, &a.Description, &a.DueDate, &a.DriveLink, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error scanning assignment row")
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}
	return a, nil
}

// List retrieves assignments, optionally filtered by a case-insensitive
// search over title and description. sort "dueDate" orders by due date
// ascending; anything else orders by creation time descending.
func (r *AssignmentRepository) List(ctx context.Context, search, sort string) ([]*models.Assignment, error) {
	query := r.sb.Select(assignmentColumns...).From("assignments")

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}

	if sort == "dueDate" {
		query = query.OrderBy("due_date ASC", "id ASC")
	} else {
		query = query.OrderBy("created_at DESC", "id DESC")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list assignments SQL")
		return nil, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list assignments query")
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*models.Assignment, 0)
	for rows.Next() {
		a := &models.Assignment{}
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.DueDate, &a.DriveLink, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}
	return assignments, nil
}

// Update overwrites an assignment's editable fields in place
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	sql, args, err := r.sb.Update("assignments").
		SetMap(map[string]interface{}{
			"title":       assignment.Title,
			"description": assignment.Description,
			"due_date":    assignment.DueDate,
			"drive_link":  assignment.DriveLink,
			"updated_at":  time.Now(),
		}).
		Where(squirrel.Eq{"id": assignment.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update assignment SQL")
		return fmt.Errorf("failed to build update assignment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", assignment.ID).Msg("Error executing update assignment query")
		return fmt.Errorf("error updating assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// Delete removes an assignment. Submission rows follow via ON DELETE CASCADE.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("assignments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete assignment SQL")
		return fmt.Errorf("failed to build delete assignment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error executing delete assignment query")
		return fmt.Errorf("error deleting assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// Count counts all assignments
func (r *AssignmentRepository) Count(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("assignments").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count assignments query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Msg("Error counting assignments")
		return 0, fmt.Errorf("error counting assignments: %w", err)
	}
	return count, nil
}
