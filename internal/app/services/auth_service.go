package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emre/assigntrack/internal/app/models"
	"github.com/emre/assigntrack/internal/app/models/dto"
	"github.com/emre/assigntrack/internal/app/repositories"
	"github.com/emre/assigntrack/internal/pkg/apperrors"
	"github.com/emre/assigntrack/internal/pkg/auth"
	"github.com/emre/assigntrack/internal/pkg/email"
	"github.com/emre/assigntrack/internal/pkg/session"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AuthService handles signup, session lifecycle and role resolution
type AuthService struct {
	userRepo             repositories.IUserRepository
	roleRepo             repositories.IRoleRepository
	tokenRepo            repositories.ITokenRepository
	verificationRepo     repositories.IVerificationTokenRepository
	jwtService           *auth.JWTService
	emailService         email.Service
	notifier             *session.Notifier
	pending              *PendingRoleCache
	requireVerification  bool
	verificationTokenTTL time.Duration
	logger               zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	roleRepo repositories.IRoleRepository,
	tokenRepo repositories.ITokenRepository,
	verificationRepo repositories.IVerificationTokenRepository,
	jwtService *auth.JWTService,
	emailService email.Service,
	notifier *session.Notifier,
	pending *PendingRoleCache,
	requireVerification bool,
	verificationTokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:             userRepo,
		roleRepo:             roleRepo,
		tokenRepo:            tokenRepo,
		verificationRepo:     verificationRepo,
		jwtService:           jwtService,
		emailService:         emailService,
		notifier:             notifier,
		pending:              pending,
		requireVerification:  requireVerification,
		verificationTokenTTL: verificationTokenTTL,
		logger:               logger,
	}
}

func (s *AuthService) validateEmail(emailAddr string) error {
	if strings.TrimSpace(emailAddr) == "" {
		return apperrors.ErrInvalidEmail
	}
	if !emailRegex.MatchString(emailAddr) {
		return apperrors.ErrInvalidEmail
	}
	return nil
}

func (s *AuthService) validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", apperrors.ErrInvalidPassword)
	}
	return nil
}

// SignUp registers a new account requesting the given role. The outcome is
// three-way: validation problems return an error; when email confirmation is
// required the account is created, the role is parked until a session exists,
// and the caller gets a pending_confirmation result; otherwise the role is
// persisted immediately and a live session is returned.
func (s *AuthService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SignUpResponse, error) {
	if err := s.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Password:      hashed,
		FullName:      strings.TrimSpace(req.FullName),
		IsActive:      true,
		EmailVerified: !s.requireVerification,
	}

	userID, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.requireVerification {
		// No session exists yet, so the role cannot be persisted here.
		// Park it; the session listener writes it on first sign-in.
		s.pending.Set(userID, req.Role)

		token := uuid.New().String()
		expiry := time.Now().Add(s.verificationTokenTTL)
		if err := s.verificationRepo.CreateToken(ctx, userID, token, expiry); err != nil {
			s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to store verification token")
			return nil, err
		}
		if err := s.emailService.SendVerificationEmail(user.Email, user.FullName, token); err != nil {
			// The account exists and the token is valid; delivery failure is
			// recoverable via a resend, so it does not fail the signup.
			s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send verification email")
		}

		return &dto.SignUpResponse{
			Outcome: dto.SignUpPendingConfirmation,
			Message: "Registration successful! Please check your email to confirm your account, then sign in.",
			UserID:  userID,
		}, nil
	}

	// A session is available immediately, so the role row goes in now.
	if err := s.roleRepo.InsertRole(ctx, userID, req.Role); err != nil && !errors.Is(err, apperrors.ErrRoleAlreadyAssigned) {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to persist role at signup")
		s.pending.Set(userID, req.Role)
	}

	tokenResp, refreshToken, err := s.issueSession(ctx, userID, user.Email)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(session.Event{Kind: session.SignedIn, UserID: userID, SessionID: refreshToken})

	return &dto.SignUpResponse{
		Outcome: dto.SignUpCompleted,
		UserID:  userID,
		Token:   tokenResp,
	}, nil
}

// SignIn exchanges credentials for a token pair and announces the new session
func (s *AuthService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if s.requireVerification && !user.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	tokenResp, refreshToken, err := s.issueSession(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(session.Event{Kind: session.SignedIn, UserID: user.ID, SessionID: refreshToken})

	return tokenResp, nil
}

// RefreshToken rotates a refresh token into a fresh token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, _, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	tokenResp, newRefreshToken, err := s.issueSession(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(session.Event{Kind: session.Refreshed, UserID: user.ID, SessionID: newRefreshToken})

	return tokenResp, nil
}

// SignOut revokes the session (or every session of the account) and drops any
// unresolved pending role, matching the rule that signing out abandons a role
// request that never landed.
func (s *AuthService) SignOut(ctx context.Context, userID int64, req *dto.SignOutRequest) error {
	if req.AllSessions {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
			return err
		}
	} else if err := s.tokenRepo.RevokeToken(ctx, req.RefreshToken); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return err
	}

	s.pending.Delete(userID)
	s.notifier.Publish(session.Event{Kind: session.SignedOut, UserID: userID, SessionID: req.RefreshToken})
	return nil
}

// VerifyEmail consumes a verification token and marks the account confirmed
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	userID, expiry, err := s.verificationRepo.GetTokenInfo(ctx, token)
	if err != nil {
		return err
	}
	if expiry.Before(time.Now()) {
		// Consume it either way, an expired token is useless.
		_ = s.verificationRepo.DeleteToken(ctx, token)
		return apperrors.ErrInvalidEmailToken
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		_ = s.verificationRepo.DeleteToken(ctx, token)
		return apperrors.ErrEmailAlreadyVerified
	}

	if err := s.userRepo.MarkEmailVerified(ctx, userID); err != nil {
		return err
	}
	if err := s.verificationRepo.DeleteToken(ctx, token); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to delete consumed verification token")
	}

	s.logger.Info().Int64("userID", userID).Msg("Email verified")
	return nil
}

// ResolveRole looks up the persisted role for a user. The boolean is false
// while no role row exists, which callers must treat as role-less, not as
// a failure.
func (s *AuthService) ResolveRole(ctx context.Context, userID int64) (models.Role, bool, error) {
	return s.roleRepo.GetRoleByUserID(ctx, userID)
}

// GetProfile returns the authenticated identity with its resolved role
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	}

	role, ok, err := s.roleRepo.GetRoleByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		resp.Role = &role
	}
	return resp, nil
}

// issueSession generates a token pair and persists the refresh token. The
// refresh token value doubles as the session ID in published events.
func (s *AuthService) issueSession(ctx context.Context, userID int64, userEmail string) (*dto.TokenResponse, string, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(userID, userEmail)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to generate token pair")
		return nil, "", fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, refreshToken, userID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, "", err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}, refreshToken, nil
}
