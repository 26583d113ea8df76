package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository              *UserRepository
	RoleRepository              *RoleRepository
	TokenRepository             *TokenRepository
	VerificationTokenRepository *VerificationTokenRepository
	AssignmentRepository        *AssignmentRepository
	SubmissionRepository        *SubmissionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:              NewUserRepository(db),
		RoleRepository:              NewRoleRepository(db),
		TokenRepository:             NewTokenRepository(db),
		VerificationTokenRepository: NewVerificationTokenRepository(db),
		AssignmentRepository:        NewAssignmentRepository(db),
		SubmissionRepository:        NewSubmissionRepository(db),
	}
}
