package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emre/assigntrack/internal/app/models/dto"
	"github.com/emre/assigntrack/internal/app/services"
	"github.com/emre/assigntrack/internal/middleware"
)

// SubmissionController handles submission endpoints and the admin dashboards
type SubmissionController struct {
	submissionService *services.SubmissionService
	logger            zerolog.Logger
}

// NewSubmissionController creates a new SubmissionController
func NewSubmissionController(submissionService *services.SubmissionService, logger zerolog.Logger) *SubmissionController {
	return &SubmissionController{
		submissionService: submissionService,
		logger:            logger,
	}
}

// Submit records the student's submission for an assignment. The PDF part is
// optional; when present it travels as the multipart field "file".
// @Summary Submit an assignment
// @Description Marks the assignment submitted for the caller, optionally attaching a PDF (max 10MB). Resubmitting overwrites the previous submission and file.
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param file formData file false "PDF attachment"
// @Success 200 {object} dto.APIResponse{data=models.Submission} "Submission"
// @Failure 400 {object} dto.ErrorResponse "Non-PDF file or file over 10MB"
// @Failure 403 {object} dto.ErrorResponse "Student role required"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assignments/{id}/submit [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	studentID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil && err != http.ErrMissingFile {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid multipart payload")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	submission, err := c.submissionService.Submit(ctx.Request.Context(), studentID, assignmentID, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: submission})
}

// Overview returns the student dashboard rows for the caller
// @Summary Student submission overview
// @Description Every assignment paired with the caller's submission status, ordered by due date. Assignments without a submission row appear as not-submitted.
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param search query string false "Title/description search"
// @Param status query string false "Status filter" Enums(submitted, not-submitted)
// @Success 200 {object} dto.APIResponse{data=dto.StudentOverviewResponse} "Overview rows and counters"
// @Failure 403 {object} dto.ErrorResponse "Student role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /submissions/mine [get]
func (c *SubmissionController) Overview(ctx *gin.Context) {
	studentID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var filter dto.OverviewFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid query parameters")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.submissionService.OverviewForStudent(ctx.Request.Context(), studentID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// StatusesForAssignment returns the admin review table for one assignment
// @Summary Per-student submission status
// @Description One row per active student with their status for the assignment; students without a submission row show as not-submitted.
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.SubmissionStatusRow} "Status rows"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assignments/{id}/submissions [get]
func (c *SubmissionController) StatusesForAssignment(ctx *gin.Context) {
	assignmentID, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	rows, err := c.submissionService.StatusesForAssignment(ctx.Request.Context(), assignmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: rows})
}

// Stats returns the admin dashboard counters
// @Summary Dashboard statistics
// @Description Assignment count, student count, submitted-submission count and the overall submission rate.
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStatsResponse} "Counters"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /stats [get]
func (c *SubmissionController) Stats(ctx *gin.Context) {
	stats, err := c.submissionService.DashboardStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: stats})
}
