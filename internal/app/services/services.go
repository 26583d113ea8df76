package services

// Services defined in this package:
// - AuthService: signup, session lifecycle, email verification, role resolution
// - RoleReconciler: persists pending roles when a session becomes active
// - AssignmentService: assignment CRUD
// - SubmissionService: submission recording and status projections
// - UserService: student directory
