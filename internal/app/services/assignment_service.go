package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emre/assigntrack/internal/app/models"
	"github.com/emre/assigntrack/internal/app/models/dto"
	"github.com/emre/assigntrack/internal/app/repositories"
	"github.com/emre/assigntrack/internal/pkg/apperrors"
)

// AssignmentService handles assignment lifecycle operations
type AssignmentService struct {
	assignmentRepo repositories.IAssignmentRepository
	logger         zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(assignmentRepo repositories.IAssignmentRepository, logger zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

// CreateAssignment creates an assignment on behalf of an admin
func (s *AssignmentService) CreateAssignment(ctx context.Context, creatorID int64, req *dto.CreateAssignmentRequest) (*models.Assignment, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, apperrors.ErrValidationFailed
	}

	assignment := &models.Assignment{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		DriveLink:   normalizeLink(req.DriveLink),
		CreatedBy:   creatorID,
	}

	if _, err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("assignmentID", assignment.ID).Int64("creatorID", creatorID).Msg("Assignment created")
	return assignment, nil
}

// GetAssignment retrieves one assignment
func (s *AssignmentService) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	return s.assignmentRepo.GetByID(ctx, id)
}

// ListAssignments lists assignments with optional search and ordering
func (s *AssignmentService) ListAssignments(ctx context.Context, filter *dto.AssignmentFilterRequest) (*dto.AssignmentListResponse, error) {
	assignments, err := s.assignmentRepo.List(ctx, strings.TrimSpace(filter.Search), filter.Sort)
	if err != nil {
		return nil, err
	}
	return &dto.AssignmentListResponse{
		Assignments: assignments,
		TotalCount:  len(assignments),
	}, nil
}

// UpdateAssignment overwrites every editable field of an assignment
func (s *AssignmentService) UpdateAssignment(ctx context.Context, id int64, req *dto.UpdateAssignmentRequest) (*models.Assignment, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, apperrors.ErrValidationFailed
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment.Title = strings.TrimSpace(req.Title)
	assignment.Description = req.Description
	assignment.DueDate = req.DueDate
	assignment.DriveLink = normalizeLink(req.DriveLink)

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("assignmentID", id).Msg("Assignment updated")
	return assignment, nil
}

// DeleteAssignment removes an assignment. Submission rows cascade away with
// it; uploaded artifacts stay on disk unreferenced.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, id int64) error {
	if err := s.assignmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("assignmentID", id).Msg("Assignment deleted")
	return nil
}

// normalizeLink turns blank links into nil so the column stays NULL
func normalizeLink(link *string) *string {
	if link == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*link)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
