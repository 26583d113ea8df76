package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/emre/assigntrack/internal/pkg/logger"
)

// LocalStorage stores submission artifacts on the local filesystem under
// basePath, laid out as {student_id}/{assignment_id}.pdf.
type LocalStorage struct {
	basePath string // root directory for stored artifacts
	baseURL  string // base URL under which basePath is served
}

// NewLocalStorage creates a LocalStorage rooted at basePath. baseURL is
// prepended to stored paths to form public URLs.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// submissionKey is the deterministic relative path for a pair.
func submissionKey(studentID, assignmentID int64) string {
	return filepath.Join(fmt.Sprintf("%d", studentID), fmt.Sprintf("%d.pdf", assignmentID))
}

// SaveSubmissionPDF writes the uploaded file to the pair's deterministic
// location, truncating any previous artifact at the same address.
func (ls *LocalStorage) SaveSubmissionPDF(fileHeader *multipart.FileHeader, studentID, assignmentID int64) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key := submissionKey(studentID, assignmentID)
	dstPath := filepath.Join(ls.basePath, key)

	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", filepath.Dir(dstPath)).Msg("Failed to create student directory")
		return "", fmt.Errorf("failed to create student directory: %w", err)
	}

	// os.Create truncates, which is exactly the overwrite-on-resubmit contract
	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	publicURL := ls.PublicURL(studentID, assignmentID)
	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("key", key).
		Str("url", publicURL).
		Msg("Submission artifact saved")
	return publicURL, nil
}

// PublicURL returns the publicly resolvable URL for the pair's artifact.
func (ls *LocalStorage) PublicURL(studentID, assignmentID int64) string {
	return fmt.Sprintf("%s/%d/%d.pdf", ls.baseURL, studentID, assignmentID)
}

// DeleteSubmissionPDF removes the artifact for the pair, treating a missing
// file as already deleted.
func (ls *LocalStorage) DeleteSubmissionPDF(studentID, assignmentID int64) error {
	dstPath := filepath.Join(ls.basePath, submissionKey(studentID, assignmentID))

	if _, err := os.Stat(dstPath); os.IsNotExist(err) {
		logger.Warn().Str("path", dstPath).Msg("Artifact to delete does not exist")
		return nil
	}

	if err := os.Remove(dstPath); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to delete artifact")
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	logger.Info().Str("path", dstPath).Msg("Artifact deleted")
	return nil
}
