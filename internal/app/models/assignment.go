package models

import (
	"time"
)

// Assignment defines the assignment model based on the 'assignments' table.
// Edits overwrite fields in place; there is no versioning.
type Assignment struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	DueDate     time.Time `json:"dueDate" db:"due_date"`
	DriveLink   *string   `json:"driveLink,omitempty" db:"drive_link"`
	CreatedBy   int64     `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
