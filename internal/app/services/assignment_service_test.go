package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/assigntrack/internal/app/models/dto"
	"github.com/emre/assigntrack/internal/pkg/apperrors"
)

func newAssignmentFixture() (*AssignmentService, *fakeAssignmentRepo) {
	repo := newFakeAssignmentRepo()
	return NewAssignmentService(repo, zerolog.Nop()), repo
}

func TestCreateAssignment(t *testing.T) {
	svc, _ := newAssignmentFixture()
	due := time.Now().Add(7 * 24 * time.Hour)

	link := "https://drive.example.com/folder"
	a, err := svc.CreateAssignment(context.Background(), 9, &dto.CreateAssignmentRequest{
		Title:       "  Week 1 Homework  ",
		Description: "Read chapters 1-3",
		DueDate:     due,
		DriveLink:   &link,
	})
	require.NoError(t, err)

	assert.Equal(t, "Week 1 Homework", a.Title)
	assert.Equal(t, int64(9), a.CreatedBy)
	require.NotNil(t, a.DriveLink)
	assert.Equal(t, link, *a.DriveLink)
}

func TestCreateAssignmentBlankLinkBecomesNull(t *testing.T) {
	svc, _ := newAssignmentFixture()

	blank := "   "
	a, err := svc.CreateAssignment(context.Background(), 9, &dto.CreateAssignmentRequest{
		Title:       "hw",
		Description: "desc",
		DueDate:     time.Now(),
		DriveLink:   &blank,
	})
	require.NoError(t, err)
	assert.Nil(t, a.DriveLink)
}

func TestCreateAssignmentValidation(t *testing.T) {
	svc, repo := newAssignmentFixture()

	_, err := svc.CreateAssignment(context.Background(), 9, &dto.CreateAssignmentRequest{
		Title:       "   ",
		Description: "desc",
		DueDate:     time.Now(),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, repo.assignments)
}

func TestUpdateAssignmentOverwritesAllFields(t *testing.T) {
	svc, _ := newAssignmentFixture()

	link := "https://drive.example.com/a"
	a, err := svc.CreateAssignment(context.Background(), 9, &dto.CreateAssignmentRequest{
		Title:       "hw",
		Description: "old",
		DueDate:     time.Now(),
		DriveLink:   &link,
	})
	require.NoError(t, err)

	newDue := time.Now().Add(72 * time.Hour)
	updated, err := svc.UpdateAssignment(context.Background(), a.ID, &dto.UpdateAssignmentRequest{
		Title:       "hw v2",
		Description: "new",
		DueDate:     newDue,
		DriveLink:   nil,
	})
	require.NoError(t, err)

	assert.Equal(t, "hw v2", updated.Title)
	assert.Equal(t, "new", updated.Description)
	// Omitting the link clears it; edits replace the whole record.
	assert.Nil(t, updated.DriveLink)
}

func TestUpdateUnknownAssignment(t *testing.T) {
	svc, _ := newAssignmentFixture()

	_, err := svc.UpdateAssignment(context.Background(), 404, &dto.UpdateAssignmentRequest{
		Title:       "hw",
		Description: "desc",
		DueDate:     time.Now(),
	})
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
}

func TestDeleteAssignment(t *testing.T) {
	svc, repo := newAssignmentFixture()

	a, err := svc.CreateAssignment(context.Background(), 9, &dto.CreateAssignmentRequest{
		Title:       "hw",
		Description: "desc",
		DueDate:     time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAssignment(context.Background(), a.ID))
	assert.Empty(t, repo.assignments)

	assert.ErrorIs(t, svc.DeleteAssignment(context.Background(), a.ID), apperrors.ErrAssignmentNotFound)
}

func TestListAssignments(t *testing.T) {
	svc, _ := newAssignmentFixture()

	for _, title := range []string{"alpha", "beta"} {
		_, err := svc.CreateAssignment(context.Background(), 9, &dto.CreateAssignmentRequest{
			Title:       title,
			Description: "desc",
			DueDate:     time.Now(),
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListAssignments(context.Background(), &dto.AssignmentFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCount)
	assert.Len(t, resp.Assignments, 2)
}
