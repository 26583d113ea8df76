package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emre/assigntrack/internal/app/models"
	"github.com/emre/assigntrack/internal/app/models/dto"
	"github.com/emre/assigntrack/internal/app/repositories"
	"github.com/emre/assigntrack/internal/pkg/apperrors"
	"github.com/emre/assigntrack/internal/pkg/filestorage"
)

// MaxSubmissionFileSize is the upload ceiling for submission PDFs
const MaxSubmissionFileSize = 10 * 1024 * 1024

// SubmissionService handles submission recording and status projections
type SubmissionService struct {
	submissionRepo repositories.ISubmissionRepository
	assignmentRepo repositories.IAssignmentRepository
	userRepo       repositories.IUserRepository
	storage        filestorage.ArtifactStorage
	logger         zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	submissionRepo repositories.ISubmissionRepository,
	assignmentRepo repositories.IAssignmentRepository,
	userRepo repositories.IUserRepository,
	storage filestorage.ArtifactStorage,
	logger zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		storage:        storage,
		logger:         logger,
	}
}

// validateSubmissionFile rejects anything that is not a PDF within the size
// limit. It runs before any storage or database work so a bad file costs
// nothing.
func validateSubmissionFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Header.Get("Content-Type") != "application/pdf" {
		return apperrors.ErrFileNotPDF
	}
	if fileHeader.Size > MaxSubmissionFileSize {
		return apperrors.ErrFileTooLarge
	}
	return nil
}

// Submit records a submission for the student, optionally storing an attached
// PDF. Resubmitting replaces both the stored file and the row; the operation
// is idempotent per (assignment, student) pair.
func (s *SubmissionService) Submit(ctx context.Context, studentID, assignmentID int64, fileHeader *multipart.FileHeader) (*models.Submission, error) {
	if fileHeader != nil {
		if err := validateSubmissionFile(fileHeader); err != nil {
			return nil, err
		}
	}

	if _, err := s.assignmentRepo.GetByID(ctx, assignmentID); err != nil {
		return nil, err
	}

	var fileURL *string
	if fileHeader != nil {
		url, err := s.storage.SaveSubmissionPDF(fileHeader, studentID, assignmentID)
		if err != nil {
			s.logger.Error().Err(err).
				Int64("studentID", studentID).
				Int64("assignmentID", assignmentID).
				Msg("Failed to store submission PDF")
			return nil, err
		}
		fileURL = &url
	}

	submission := &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.StatusSubmitted,
		FileURL:      fileURL,
	}

	if err := s.submissionRepo.Upsert(ctx, submission); err != nil {
		if fileURL != nil {
			// The artifact is already on disk with no row pointing at it.
			// Left in place: a retry overwrites the same deterministic path.
			s.logger.Warn().
				Int64("studentID", studentID).
				Int64("assignmentID", assignmentID).
				Str("fileURL", *fileURL).
				Msg("Submission row failed after upload, artifact is orphaned until retry")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("studentID", studentID).
		Int64("assignmentID", assignmentID).
		Bool("hasFile", fileHeader != nil).
		Msg("Submission recorded")
	return submission, nil
}

// OverviewForStudent builds the student dashboard: every assignment paired
// with the student's derived status. Assignments are due-date ordered; rows
// without a submission materialize as not-submitted.
func (s *SubmissionService) OverviewForStudent(ctx context.Context, studentID int64, filter *dto.OverviewFilterRequest) (*dto.StudentOverviewResponse, error) {
	assignments, err := s.assignmentRepo.List(ctx, strings.TrimSpace(filter.Search), "dueDate")
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissionRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	byAssignment := make(map[int64]*models.Submission, len(submissions))
	for _, sub := range submissions {
		byAssignment[sub.AssignmentID] = sub
	}

	resp := &dto.StudentOverviewResponse{Rows: make([]*dto.StudentAssignmentRow, 0, len(assignments))}
	for _, a := range assignments {
		row := &dto.StudentAssignmentRow{
			Assignment: a,
			Status:     models.StatusNotSubmitted,
		}
		if sub, ok := byAssignment[a.ID]; ok {
			row.Status = sub.Status
			row.SubmittedAt = sub.SubmittedAt
			row.FileURL = sub.FileURL
		}

		if row.Status == models.StatusSubmitted {
			resp.SubmittedCount++
		} else {
			resp.PendingCount++
		}

		if filter.Status != "" && string(row.Status) != filter.Status {
			continue
		}
		resp.Rows = append(resp.Rows, row)
	}
	resp.TotalCount = resp.SubmittedCount + resp.PendingCount

	return resp, nil
}

// StatusesForAssignment builds the admin review table for one assignment:
// one row per enrolled student, not-submitted where no row exists.
func (s *SubmissionService) StatusesForAssignment(ctx context.Context, assignmentID int64) ([]*dto.SubmissionStatusRow, error) {
	if _, err := s.assignmentRepo.GetByID(ctx, assignmentID); err != nil {
		return nil, err
	}

	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissionRepo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[int64]*models.Submission, len(submissions))
	for _, sub := range submissions {
		byStudent[sub.StudentID] = sub
	}

	rows := make([]*dto.SubmissionStatusRow, 0, len(students))
	for _, student := range students {
		row := &dto.SubmissionStatusRow{
			StudentID: student.ID,
			FullName:  student.FullName,
			Email:     student.Email,
			Status:    models.StatusNotSubmitted,
		}
		if sub, ok := byStudent[student.ID]; ok {
			row.Status = sub.Status
			row.SubmittedAt = sub.SubmittedAt
			row.FileURL = sub.FileURL
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListForStudent returns the raw submission rows of one student
func (s *SubmissionService) ListForStudent(ctx context.Context, studentID int64) ([]*models.Submission, error) {
	return s.submissionRepo.ListByStudent(ctx, studentID)
}

// GetForPair returns the submission of one student for one assignment
func (s *SubmissionService) GetForPair(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error) {
	return s.submissionRepo.GetByPair(ctx, assignmentID, studentID)
}

// DashboardStats computes the admin dashboard counters. The submission rate
// is submitted rows over the (assignments x students) grid.
func (s *SubmissionService) DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	totalAssignments, err := s.assignmentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalStudents, err := s.userRepo.CountStudents(ctx)
	if err != nil {
		return nil, err
	}
	submitted, err := s.submissionRepo.CountSubmitted(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStatsResponse{
		TotalAssignments: totalAssignments,
		TotalStudents:    totalStudents,
		SubmittedCount:   submitted,
	}
	if grid := totalAssignments * totalStudents; grid > 0 {
		stats.SubmissionRatePct = int(submitted * 100 / grid)
	}
	return stats, nil
}
