package dto

import (
	"time"

	"github.com/emre/assigntrack/internal/app/models"
)

// SubmissionStatusRow is one line of the admin per-student status table for
// an assignment. Status is materialized as not-submitted when no submissions
// row exists for the pair.
type SubmissionStatusRow struct {
	StudentID   int64                   `json:"studentId"`
	FullName    string                  `json:"fullName"`
	Email       string                  `json:"email"`
	Status      models.SubmissionStatus `json:"status"`
	SubmittedAt *time.Time              `json:"submittedAt,omitempty"`
	FileURL     *string                 `json:"fileUrl,omitempty"`
}

// StudentAssignmentRow is one line of the student dashboard: an assignment
// with the student's derived submission state.
type StudentAssignmentRow struct {
	Assignment  *models.Assignment      `json:"assignment"`
	Status      models.SubmissionStatus `json:"status"`
	SubmittedAt *time.Time              `json:"submittedAt,omitempty"`
	FileURL     *string                 `json:"fileUrl,omitempty"`
}

// StudentOverviewResponse wraps the student dashboard rows with its counters
type StudentOverviewResponse struct {
	Rows           []*StudentAssignmentRow `json:"rows"`
	TotalCount     int                     `json:"totalCount"`
	SubmittedCount int                     `json:"submittedCount"`
	PendingCount   int                     `json:"pendingCount"`
}

// OverviewFilterRequest represents student dashboard filters
type OverviewFilterRequest struct {
	Search string `form:"search"`
	// Status filters rows: "", "submitted" or "not-submitted"
	Status string `form:"status"`
}
