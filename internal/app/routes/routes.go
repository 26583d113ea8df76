package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/assigntrack/internal/app/controllers"
	"github.com/emre/assigntrack/internal/app/models"
	"github.com/emre/assigntrack/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	assignmentController *controllers.AssignmentController,
	submissionController *controllers.SubmissionController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
	uploadsDir string,
) {
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Submitted PDFs are served directly from local storage
	router.Static("/uploads", uploadsDir)

	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authController.SignUp)
		auth.POST("/signin", authController.SignIn)
		auth.POST("/refresh", authController.RefreshToken)
		auth.GET("/verify-email", authController.VerifyEmail)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Profile and signout only need a valid session; a role-less account
		// must still be able to see itself and leave.
		authenticated.GET("/profile", authController.GetProfile)
		authenticated.POST("/auth/signout", authController.SignOut)

		// Assignment reads are available to any role
		assignments := authenticated.Group("/assignments")
		assignments.Use(authMiddleware.RoleRequired(models.RoleStudent, models.RoleAdmin))
		{
			assignments.GET("", assignmentController.List)
			assignments.GET("/:id", assignmentController.Get)
		}

		// --- Student routes ---
		student := authenticated.Group("")
		student.Use(authMiddleware.RoleRequired(models.RoleStudent))
		{
			student.POST("/assignments/:id/submit", submissionController.Submit)
			student.GET("/submissions/mine", submissionController.Overview)
		}

		// --- Admin routes ---
		admin := authenticated.Group("")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.POST("/assignments", assignmentController.Create)
			admin.PUT("/assignments/:id", assignmentController.Update)
			admin.DELETE("/assignments/:id", assignmentController.Delete)
			admin.GET("/assignments/:id/submissions", submissionController.StatusesForAssignment)
			admin.GET("/students", userController.ListStudents)
			admin.GET("/stats", submissionController.Stats)
		}
	}
}
