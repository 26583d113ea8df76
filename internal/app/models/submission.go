package models

import (
	"time"
)

// SubmissionStatus is the state of a student's response to an assignment.
type SubmissionStatus string

const (
	// StatusSubmitted is the only status ever persisted: a submissions row
	// exists if and only if the pair is submitted.
	StatusSubmitted SubmissionStatus = "submitted"
	// StatusNotSubmitted is implicit absence; it is never written to the
	// table, only materialized in projections.
	StatusNotSubmitted SubmissionStatus = "not-submitted"
)

// Submission defines a student's response to one assignment, based on the
// 'submissions' table. At most one row exists per (assignment, student)
// pair; resubmission updates the row in place.
type Submission struct {
	ID           int64            `json:"id" db:"id"`
	AssignmentID int64            `json:"assignmentId" db:"assignment_id"`
	StudentID    int64            `json:"studentId" db:"student_id"`
	Status       SubmissionStatus `json:"status" db:"status"`
	SubmittedAt  *time.Time       `json:"submittedAt,omitempty" db:"submitted_at"`
	FileURL      *string          `json:"fileUrl,omitempty" db:"file_url"`
}
