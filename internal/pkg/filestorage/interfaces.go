package filestorage

import "mime/multipart"

// ArtifactStorage defines the interface for submission artifact storage.
// Artifacts are addressed deterministically by (student, assignment), so a
// resubmission overwrites the previous artifact instead of growing storage.
type ArtifactStorage interface {
	// SaveSubmissionPDF stores the uploaded PDF at the deterministic location
	// for the (student, assignment) pair and returns a publicly resolvable URL.
	SaveSubmissionPDF(fileHeader *multipart.FileHeader, studentID, assignmentID int64) (string, error)

	// DeleteSubmissionPDF removes the artifact for the pair. Deleting a
	// missing artifact is not an error.
	DeleteSubmissionPDF(studentID, assignmentID int64) error
}
