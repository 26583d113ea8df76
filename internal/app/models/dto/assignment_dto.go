package dto

import (
	"time"

	"github.com/emre/assigntrack/internal/app/models"
)

// CreateAssignmentRequest represents the payload for creating an assignment
type CreateAssignmentRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	DueDate     time.Time `json:"dueDate" binding:"required"`
	DriveLink   *string   `json:"driveLink"`
}

// UpdateAssignmentRequest represents the payload for editing an assignment.
// Edits overwrite every field in place.
type UpdateAssignmentRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	DueDate     time.Time `json:"dueDate" binding:"required"`
	DriveLink   *string   `json:"driveLink"`
}

// AssignmentFilterRequest represents list filters for assignments
type AssignmentFilterRequest struct {
	// Search matches title or description, case-insensitively
	Search string `form:"search"`
	// Sort is "dueDate" (ascending, student view) or "createdAt"
	// (descending, admin view, the default)
	Sort string `form:"sort"`
}

// AssignmentListResponse wraps the assignment collection
type AssignmentListResponse struct {
	Assignments []*models.Assignment `json:"assignments"`
	TotalCount  int                  `json:"totalCount"`
}

// DashboardStatsResponse carries the admin dashboard counters
type DashboardStatsResponse struct {
	TotalAssignments    int64 `json:"totalAssignments"`
	TotalStudents       int64 `json:"totalStudents"`
	SubmittedCount      int64 `json:"submittedCount"`
	SubmissionRatePct   int   `json:"submissionRatePct"`
}

// StudentResponse is the directory projection of a student identity
type StudentResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
