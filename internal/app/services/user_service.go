package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emre/assigntrack/internal/app/models/dto"
	"github.com/emre/assigntrack/internal/app/repositories"
)

// UserService handles user directory operations
type UserService struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListStudents returns the student directory, ordered by name
func (s *UserService) ListStudents(ctx context.Context) ([]*dto.StudentResponse, error) {
	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.StudentResponse, 0, len(students))
	for _, student := range students {
		resp = append(resp, &dto.StudentResponse{
			ID:       student.ID,
			FullName: student.FullName,
			Email:    student.Email,
		})
	}
	return resp, nil
}
