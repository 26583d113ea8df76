package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/assigntrack/internal/app/models"
	"github.com/emre/assigntrack/internal/app/models/dto"
	"github.com/emre/assigntrack/internal/pkg/apperrors"
	"github.com/emre/assigntrack/internal/pkg/auth"
	"github.com/emre/assigntrack/internal/pkg/session"
)

// --- fakes ---

type authUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
}

func newAuthUserRepo() *authUserRepo {
	return &authUserRepo{users: make(map[int64]*models.User)}
}

func (f *authUserRepo) CreateUser(_ context.Context, u *models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return u.ID, nil
}

func (f *authUserRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *authUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *authUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *authUserRepo) MarkEmailVerified(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.EmailVerified = true
	return nil
}

func (f *authUserRepo) ListStudents(_ context.Context) ([]*models.User, error) { return nil, nil }
func (f *authUserRepo) CountStudents(_ context.Context) (int64, error)         { return 0, nil }

type fakeRoleRepo struct {
	mu          sync.Mutex
	roles       map[int64]models.Role
	insertCalls int
	insertErr   error
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[int64]models.Role)}
}

func (f *fakeRoleRepo) InsertRole(_ context.Context, userID int64, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, exists := f.roles[userID]; exists {
		return apperrors.ErrRoleAlreadyAssigned
	}
	f.roles[userID] = role
	return nil
}

func (f *fakeRoleRepo) GetRoleByUserID(_ context.Context, userID int64) (models.Role, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[userID]
	return role, ok, nil
}

func (f *fakeRoleRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertCalls
}

func (f *fakeRoleRepo) roleOf(userID int64) (models.Role, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[userID]
	return role, ok
}

func (f *fakeRoleRepo) setInsertErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertErr = err
}

type storedToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*storedToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*storedToken)}
}

func (f *fakeTokenRepo) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &storedToken{userID: userID, expiry: expiryDate}
	return nil
}

func (f *fakeTokenRepo) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	}
	if st.revoked {
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	}
	if st.expiry.Before(time.Now()) {
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return st.userID, st.expiry, nil
}

func (f *fakeTokenRepo) RevokeToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	st.revoked = true
	return nil
}

func (f *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.tokens {
		if st.userID == userID {
			st.revoked = true
		}
	}
	return nil
}

func (f *fakeTokenRepo) CleanupExpiredTokens(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for token, st := range f.tokens {
		if st.expiry.Before(time.Now()) {
			delete(f.tokens, token)
			deleted++
		}
	}
	return deleted, nil
}

type fakeVerificationRepo struct {
	mu     sync.Mutex
	tokens map[string]struct {
		userID int64
		expiry time.Time
	}
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{tokens: make(map[string]struct {
		userID int64
		expiry time.Time
	})}
}

func (f *fakeVerificationRepo) CreateToken(_ context.Context, userID int64, token string, expiryDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = struct {
		userID int64
		expiry time.Time
	}{userID, expiryDate}
	return nil
}

func (f *fakeVerificationRepo) GetTokenInfo(_ context.Context, token string) (int64, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrInvalidEmailToken
	}
	return info.userID, info.expiry, nil
}

func (f *fakeVerificationRepo) DeleteToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeVerificationRepo) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token := range f.tokens {
		return token
	}
	return ""
}

type fakeEmailService struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeEmailService) SendVerificationEmail(toEmail, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, toEmail)
	return nil
}

// --- fixture ---

type authFixture struct {
	svc              *AuthService
	userRepo         *authUserRepo
	roleRepo         *fakeRoleRepo
	tokenRepo        *fakeTokenRepo
	verificationRepo *fakeVerificationRepo
	email            *fakeEmailService
	notifier         *session.Notifier
	pending          *PendingRoleCache
}

func newAuthFixture(t *testing.T, requireVerification bool) *authFixture {
	t.Helper()

	f := &authFixture{
		userRepo:         newAuthUserRepo(),
		roleRepo:         newFakeRoleRepo(),
		tokenRepo:        newFakeTokenRepo(),
		verificationRepo: newFakeVerificationRepo(),
		email:            &fakeEmailService{},
		notifier:         session.NewNotifier(16),
		pending:          NewPendingRoleCache(),
	}
	t.Cleanup(f.notifier.Close)

	reconciler := NewRoleReconciler(f.roleRepo, f.pending, zerolog.Nop())
	f.notifier.Subscribe(reconciler.HandleEvent)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})

	f.svc = NewAuthService(
		f.userRepo,
		f.roleRepo,
		f.tokenRepo,
		f.verificationRepo,
		jwtService,
		f.email,
		f.notifier,
		f.pending,
		requireVerification,
		48*time.Hour,
		zerolog.Nop(),
	)
	return f
}

func signUpReq(email string, role models.Role) *dto.SignUpRequest {
	return &dto.SignUpRequest{
		Email:    email,
		Password: "supersecret1",
		FullName: "Test User",
		Role:     role,
	}
}

// --- tests ---

func TestSignUpPendingConfirmationParksRole(t *testing.T) {
	f := newAuthFixture(t, true)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	assert.Equal(t, dto.SignUpPendingConfirmation, resp.Outcome)
	assert.Nil(t, resp.Token)
	assert.NotEmpty(t, resp.Message)

	// The role must not be persisted yet, only parked.
	_, ok := f.roleRepo.roleOf(resp.UserID)
	assert.False(t, ok)
	parked, ok := f.pending.Get(resp.UserID)
	require.True(t, ok)
	assert.Equal(t, models.RoleStudent, parked)

	assert.Equal(t, []string{"kim@example.com"}, f.email.sends)
	assert.NotEmpty(t, f.verificationRepo.lastToken())
}

func TestSignUpImmediateSessionPersistsRoleSynchronously(t *testing.T) {
	f := newAuthFixture(t, false)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleAdmin))
	require.NoError(t, err)

	assert.Equal(t, dto.SignUpCompleted, resp.Outcome)
	require.NotNil(t, resp.Token)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)

	role, ok := f.roleRepo.roleOf(resp.UserID)
	require.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)

	// Nothing left parked.
	_, parked := f.pending.Get(resp.UserID)
	assert.False(t, parked)
}

func TestSignUpRejectsInvalidInput(t *testing.T) {
	f := newAuthFixture(t, true)

	_, err := f.svc.SignUp(context.Background(), signUpReq("not-an-email", models.RoleStudent))
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)

	req := signUpReq("ok@example.com", models.RoleStudent)
	req.Password = "short"
	_, err = f.svc.SignUp(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = f.svc.SignUp(context.Background(), signUpReq("ok@example.com", models.Role("superuser")))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)

	// Nothing was created for any of the rejected attempts.
	assert.Empty(t, f.userRepo.users)
	assert.Equal(t, 0, f.pending.Len())
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, false)

	_, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)
	_, err = f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestFirstSignInPersistsParkedRoleExactlyOnce(t *testing.T) {
	f := newAuthFixture(t, true)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	require.NoError(t, f.svc.VerifyEmail(context.Background(), f.verificationRepo.lastToken()))

	_, err = f.svc.SignIn(context.Background(), &dto.SignInRequest{Email: "kim@example.com", Password: "supersecret1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := f.roleRepo.roleOf(resp.UserID)
		return ok
	}, time.Second, 5*time.Millisecond)

	role, _ := f.roleRepo.roleOf(resp.UserID)
	assert.Equal(t, models.RoleStudent, role)
	assert.Equal(t, 1, f.roleRepo.calls())

	// The parked entry is consumed.
	require.Eventually(t, func() bool { return f.pending.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRoleInsertFailureKeepsParkedRoleForNextSession(t *testing.T) {
	f := newAuthFixture(t, true)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyEmail(context.Background(), f.verificationRepo.lastToken()))

	f.roleRepo.setInsertErr(errors.New("connection reset"))
	_, err = f.svc.SignIn(context.Background(), &dto.SignInRequest{Email: "kim@example.com", Password: "supersecret1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return f.roleRepo.calls() == 1 }, time.Second, 5*time.Millisecond)

	// Role not persisted, parked entry survives.
	_, ok := f.roleRepo.roleOf(resp.UserID)
	assert.False(t, ok)
	_, parked := f.pending.Get(resp.UserID)
	assert.True(t, parked)

	// The next session retries and succeeds.
	f.roleRepo.setInsertErr(nil)
	_, err = f.svc.SignIn(context.Background(), &dto.SignInRequest{Email: "kim@example.com", Password: "supersecret1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := f.roleRepo.roleOf(resp.UserID)
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestSignInBeforeVerificationIsRejected(t *testing.T) {
	f := newAuthFixture(t, true)

	_, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	_, err = f.svc.SignIn(context.Background(), &dto.SignInRequest{Email: "kim@example.com", Password: "supersecret1"})
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)

	// No session event fired, so the parked role stays parked.
	assert.Equal(t, 0, f.roleRepo.calls())
}

func TestSignInWrongPassword(t *testing.T) {
	f := newAuthFixture(t, false)

	_, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	_, err = f.svc.SignIn(context.Background(), &dto.SignInRequest{Email: "kim@example.com", Password: "wrongpassword"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.SignIn(context.Background(), &dto.SignInRequest{Email: "ghost@example.com", Password: "whatever123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newAuthFixture(t, false)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)
	oldRefresh := resp.Token.RefreshToken

	tokens, err := f.svc.RefreshToken(context.Background(), oldRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, oldRefresh, tokens.RefreshToken)

	// The old token is single-use.
	_, err = f.svc.RefreshToken(context.Background(), oldRefresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestSignOutRevokesSessionAndDropsParkedRole(t *testing.T) {
	f := newAuthFixture(t, false)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	// Simulate a parked role that never resolved.
	f.pending.Set(resp.UserID, models.RoleStudent)

	require.NoError(t, f.svc.SignOut(context.Background(), resp.UserID, &dto.SignOutRequest{RefreshToken: resp.Token.RefreshToken}))

	_, parked := f.pending.Get(resp.UserID)
	assert.False(t, parked)
	_, err = f.svc.RefreshToken(context.Background(), resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestSignOutAllSessionsRevokesEveryToken(t *testing.T) {
	f := newAuthFixture(t, false)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	second, err := f.svc.SignIn(context.Background(), &dto.SignInRequest{
		Email:    "kim@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(context.Background(), resp.UserID, &dto.SignOutRequest{
		RefreshToken: resp.Token.RefreshToken,
		AllSessions:  true,
	}))

	_, err = f.svc.RefreshToken(context.Background(), resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	_, err = f.svc.RefreshToken(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	f := newAuthFixture(t, true)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	token := f.verificationRepo.lastToken()
	require.NoError(t, f.verificationRepo.CreateToken(context.Background(), resp.UserID, "expired-token", time.Now().Add(-time.Hour)))

	err = f.svc.VerifyEmail(context.Background(), "expired-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmailToken)

	// The fresh token still works.
	require.NoError(t, f.svc.VerifyEmail(context.Background(), token))
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	f := newAuthFixture(t, true)
	err := f.svc.VerifyEmail(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmailToken)
}

func TestResolveRoleAbsenceIsNotAnError(t *testing.T) {
	f := newAuthFixture(t, true)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	role, ok, err := f.svc.ResolveRole(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, role)
}

func TestGetProfileRoleIsNullUntilResolved(t *testing.T) {
	f := newAuthFixture(t, true)

	resp, err := f.svc.SignUp(context.Background(), signUpReq("kim@example.com", models.RoleStudent))
	require.NoError(t, err)

	profile, err := f.svc.GetProfile(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", profile.Email)
	assert.Nil(t, profile.Role)

	require.NoError(t, f.svc.VerifyEmail(context.Background(), f.verificationRepo.lastToken()))
	_, err = f.svc.SignIn(context.Background(), &dto.SignInRequest{Email: "kim@example.com", Password: "supersecret1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		profile, err := f.svc.GetProfile(context.Background(), resp.UserID)
		return err == nil && profile.Role != nil && *profile.Role == models.RoleStudent
	}, time.Second, 5*time.Millisecond)
}
