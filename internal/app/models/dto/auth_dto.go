package dto

import "github.com/emre/assigntrack/internal/app/models"

// SignUpRequest represents a signup request carrying the requested role
type SignUpRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	FullName string      `json:"fullName" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
}

// SignUpOutcome distinguishes the two success shapes of signup. A deferred
// session (email confirmation pending) is not an error, so it travels in the
// data channel instead of the error slot.
type SignUpOutcome string

const (
	SignUpCompleted           SignUpOutcome = "completed"
	SignUpPendingConfirmation SignUpOutcome = "pending_confirmation"
)

// SignUpResponse represents the three-way signup result: Outcome completed
// carries a token pair, pending_confirmation carries an informational message.
type SignUpResponse struct {
	Outcome SignUpOutcome  `json:"outcome"`
	Message string         `json:"message,omitempty"`
	UserID  int64          `json:"userId"`
	Token   *TokenResponse `json:"token,omitempty"`
}

// SignInRequest represents login credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

// RefreshTokenRequest represents a refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// SignOutRequest carries the refresh token to revoke. AllSessions widens the
// revocation to every active refresh token of the account.
type SignOutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
	AllSessions  bool   `json:"allSessions"`
}

// ProfileResponse represents the authenticated identity with its resolved
// role. Role is null while no user_roles row exists for the identity.
type ProfileResponse struct {
	ID       int64        `json:"id"`
	Email    string       `json:"email"`
	FullName string       `json:"fullName"`
	Role     *models.Role `json:"role"`
}
