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

// IRoleRepository defines the interface for role assignment operations
type IRoleRepository interface {
	InsertRole(ctx context.Context, userID int64, role models.Role) error
	GetRoleByUserID(ctx context.Context, userID int64) (models.Role, bool, error)
}

// RoleRepository handles user_roles database operations. A user has at most
// one row here; absence means the role was never resolved.
type RoleRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// InsertRole assigns a role to a user. Inserting a second role for the same
// user returns apperrors.ErrRoleAlreadyAssigned.
func (r *RoleRepository) InsertRole(ctx context.Context, userID int64, role models.Role) error {
	if !role.Valid() {
		return apperrors.ErrInvalidRole
	}

	sql, args, err := r.sb.Insert("user_roles").
		Columns("user_id", "role", "created_at").
		Values(userID, role, time.Now()).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building insert role SQL")
		return fmt.Errorf("failed to build insert role query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "user_roles_pkey") {
			return apperrors.ErrRoleAlreadyAssigned
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Str("role", string(role)).Msg("Error executing insert role query")
		return fmt.Errorf("error inserting role: %w", err)
	}
	return nil
}

// GetRoleByUserID resolves the role for a user. The second return value is
// false when no role row exists, which is a normal state and not an error.
func (r *RoleRepository) GetRoleByUserID(ctx context.Context, userID int64) (models.Role, bool, error) {
	sql, args, err := r.sb.Select("role").
		From("user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get role SQL")
		return "", false, fmt.Errorf("failed to build get role query: %w", err)
	}

	var role models.Role
	err = r.db.QueryRow(ctx, sql, args...).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error scanning role row")
		return "", false, fmt.Errorf("error retrieving role: %w", err)
	}
	return role, true, nil
}
