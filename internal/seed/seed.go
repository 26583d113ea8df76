package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/emre/assigntrack/internal/app/models"
	appRepos "github.com/emre/assigntrack/internal/app/repositories"
	"github.com/emre/assigntrack/internal/pkg/apperrors"
	"github.com/emre/assigntrack/internal/pkg/auth"
)

const (
	defaultAdminEmail    = "admin@assigntrack.local"
	defaultAdminPassword = "ChangeMe123!"
)

// CreateDefaultData creates the default admin account if it doesn't exist, so
// a fresh install has someone able to create assignments.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	roleRepo := appRepos.NewRoleRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default admin account...")

	existing, err := userRepo.GetUserByEmail(ctx, defaultAdminEmail)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking for default admin")
		return err
	}
	if existing != nil {
		lgr.Debug().Msg("Default admin already exists, skipping seed")
		return nil
	}

	hashed, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Email:         defaultAdminEmail,
		Password:      hashed,
		FullName:      "Default Admin",
		IsActive:      true,
		EmailVerified: true,
	}

	adminID, err := userRepo.CreateUser(ctx, admin)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating default admin")
		return err
	}

	if err := roleRepo.InsertRole(ctx, adminID, appModels.RoleAdmin); err != nil && !errors.Is(err, apperrors.ErrRoleAlreadyAssigned) {
		lgr.Error().Err(err).Msg("Error assigning admin role to default admin")
		return err
	}

	lgr.Info().Str("email", defaultAdminEmail).Msg("Default admin account created, change its password")
	return nil
}
