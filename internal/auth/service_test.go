// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanrihq/kanri/internal/auth"
	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/dberr"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/system/audit"
)

// ── Test Fakes ────────────────────────────────────────────────────────────

// fakeStore is an in-memory CredentialStore keyed by username and ID.
// Setting failErr makes every lookup fail, simulating a database outage.
type fakeStore struct {
	mu      sync.Mutex
	users   map[int64]*auth.User
	failErr error
}

func newFakeStore(users ...*auth.User) *fakeStore {
	store := &fakeStore{users: make(map[int64]*auth.User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *fakeStore) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeStore) AdvanceVersionForLogin(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return 0, dberr.ErrNotFound
	}
	user.TokenVersion++
	now := time.Now()
	user.LastLoginAt = &now
	return user.TokenVersion, nil
}

func (s *fakeStore) AdvanceVersion(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return 0, dberr.ErrNotFound
	}
	user.TokenVersion++
	return user.TokenVersion, nil
}

// fakeLimiter counts failures; allow=false simulates an exhausted budget.
type fakeLimiter struct {
	allow    bool
	failures int
	resets   int
}

func (l *fakeLimiter) Check(context.Context, string) (bool, error) { return l.allow, nil }
func (l *fakeLimiter) RecordFailure(context.Context, string) error { l.failures++; return nil }
func (l *fakeLimiter) Reset(context.Context, string) error         { l.resets++; return nil }

// fakeRecorder captures audit entries for assertions.
type fakeRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *fakeRecorder) Record(_ context.Context, entry audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *fakeRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

// ── Fixture ───────────────────────────────────────────────────────────────

const testPassword = "correct horse battery staple"

func testUser(t *testing.T) *auth.User {
	t.Helper()
	hash, err := sec.HashPassword(testPassword)
	require.NoError(t, err)
	return &auth.User{
		ID:           1,
		Username:     "suzuki",
		PasswordHash: hash,
		DisplayName:  "Suzuki",
		Role:         sec.RoleUser,
		IsActive:     true,
		TokenVersion: 3,
	}
}

func newTestService(t *testing.T, store auth.CredentialStore, limiter auth.AttemptLimiter, recorder audit.Recorder) *auth.Service {
	t.Helper()
	codec, err := sec.NewSessionCodec("0123456789abcdef0123456789abcdef", "kanri.test", time.Hour)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(store, codec, limiter, recorder, logger)
}

// ── Login ─────────────────────────────────────────────────────────────────

/*
TestLogin_Success verifies the happy path: version advanced, token verifies,
limiter reset, success audited.
*/
func TestLogin_Success(t *testing.T) {
	store := newFakeStore(testUser(t))
	limiter := &fakeLimiter{allow: true}
	recorder := &fakeRecorder{}
	service := newTestService(t, store, limiter, recorder)

	result, err := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki",
		Password: testPassword,
		ClientIP: "203.0.113.7",
	})
	require.NoError(t, err)

	// Version advanced from 3 to 4 and is embedded in the token.
	assert.Equal(t, 4, result.User.TokenVersion)

	identity, err := service.VerifyToken(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.UserID)
	assert.Equal(t, 4, identity.TokenVersion)

	assert.Equal(t, 1, limiter.resets)
	assert.Equal(t, []string{audit.ActionLoginSuccess}, recorder.actions())
}

/*
TestLogin_UnknownUserAndWrongPassword verifies that both failure modes report
the same client-facing message, so usernames cannot be enumerated.
*/
func TestLogin_UnknownUserAndWrongPassword(t *testing.T) {
	store := newFakeStore(testUser(t))
	limiter := &fakeLimiter{allow: true}
	recorder := &fakeRecorder{}
	service := newTestService(t, store, limiter, recorder)

	_, unknownErr := service.Login(context.Background(), auth.LoginInput{
		Username: "no-such-user", Password: testPassword, ClientIP: "203.0.113.7",
	})
	_, wrongErr := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki", Password: "wrong password", ClientIP: "203.0.113.7",
	})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	for _, err := range []error{unknownErr, wrongErr} {
		authError := auth.AsError(err)
		require.NotNil(t, authError)
		assert.Equal(t, auth.ReasonInvalidCredentials, authError.Reason)
	}

	// Both failures were charged against the limiter and audited.
	assert.Equal(t, 2, limiter.failures)
	assert.Equal(t, []string{audit.ActionLoginFailed, audit.ActionLoginFailed}, recorder.actions())
}

/*
TestLogin_StoreOutage verifies that a database failure during lookup surfaces
as an infrastructure error, not a credential rejection: the client's attempt
budget is untouched and nothing reaches the audit trail.
*/
func TestLogin_StoreOutage(t *testing.T) {
	store := newFakeStore(testUser(t))
	store.failErr = errors.New("pgx: connection refused")
	limiter := &fakeLimiter{allow: true}
	recorder := &fakeRecorder{}
	service := newTestService(t, store, limiter, recorder)

	_, err := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7",
	})

	require.Error(t, err)
	assert.Nil(t, auth.AsError(err))
	assert.Equal(t, 0, limiter.failures)
	assert.Empty(t, recorder.actions())
}

/*
TestLogin_InactiveAccount verifies that deactivated accounts cannot log in
even with correct credentials.
*/
func TestLogin_InactiveAccount(t *testing.T) {
	user := testUser(t)
	user.IsActive = false
	service := newTestService(t, newFakeStore(user), &fakeLimiter{allow: true}, &fakeRecorder{})

	_, err := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7",
	})

	authError := auth.AsError(err)
	require.NotNil(t, authError)
	assert.Equal(t, auth.ReasonAccountInactive, authError.Reason)
}

/*
TestLogin_RateLimited verifies that an exhausted attempt budget yields a 429
before any credential work happens.
*/
func TestLogin_RateLimited(t *testing.T) {
	recorder := &fakeRecorder{}
	service := newTestService(t, newFakeStore(testUser(t)), &fakeLimiter{allow: false}, recorder)

	_, err := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7",
	})

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 429, appError.HTTPStatus)

	// A throttled attempt is not a failed credential check.
	assert.Empty(t, recorder.actions())
}

/*
TestLogin_PreviousSessionHeuristic verifies the advisory flag: set when the
last login is recent, clear when it is old or absent.
*/
func TestLogin_PreviousSessionHeuristic(t *testing.T) {
	login := func(user *auth.User) *auth.LoginResult {
		service := newTestService(t, newFakeStore(user), &fakeLimiter{allow: true}, &fakeRecorder{})
		result, err := service.Login(context.Background(), auth.LoginInput{
			Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7",
		})
		require.NoError(t, err)
		return result
	}

	// Never logged in: no prior session to terminate.
	assert.False(t, login(testUser(t)).PreviousSessionTerminated)

	// Logged in an hour ago: the prior token was presumably still live.
	user := testUser(t)
	recent := time.Now().Add(-time.Hour)
	user.LastLoginAt = &recent
	assert.True(t, login(user).PreviousSessionTerminated)

	// Logged in two days ago: that token expired on its own.
	user = testUser(t)
	stale := time.Now().Add(-48 * time.Hour)
	user.LastLoginAt = &stale
	assert.False(t, login(user).PreviousSessionTerminated)
}

/*
TestLogin_SupersedesPreviousSession verifies the single-active-session policy:
a second login invalidates the first login's token.
*/
func TestLogin_SupersedesPreviousSession(t *testing.T) {
	store := newFakeStore(testUser(t))
	service := newTestService(t, store, &fakeLimiter{allow: true}, &fakeRecorder{})

	input := auth.LoginInput{Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7"}

	first, err := service.Login(context.Background(), input)
	require.NoError(t, err)
	second, err := service.Login(context.Background(), input)
	require.NoError(t, err)

	// The first token is fenced out; the second remains valid.
	_, err = service.VerifyToken(context.Background(), first.Token)
	authError := auth.AsError(err)
	require.NotNil(t, authError)
	assert.Equal(t, auth.ReasonSessionReplaced, authError.Reason)

	_, err = service.VerifyToken(context.Background(), second.Token)
	assert.NoError(t, err)
}

// ── VerifyToken ───────────────────────────────────────────────────────────

/*
TestVerifyToken_Garbage verifies that malformed tokens are rejected with the
invalid-token reason.
*/
func TestVerifyToken_Garbage(t *testing.T) {
	service := newTestService(t, newFakeStore(testUser(t)), &fakeLimiter{allow: true}, &fakeRecorder{})

	_, err := service.VerifyToken(context.Background(), "not-a-token")
	authError := auth.AsError(err)
	require.NotNil(t, authError)
	assert.Equal(t, auth.ReasonInvalidToken, authError.Reason)
}

/*
TestVerifyToken_DeletedAccount verifies that a token for a vanished account is
rejected even when its signature is valid.
*/
func TestVerifyToken_DeletedAccount(t *testing.T) {
	store := newFakeStore(testUser(t))
	service := newTestService(t, store, &fakeLimiter{allow: true}, &fakeRecorder{})

	result, err := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7",
	})
	require.NoError(t, err)

	store.mu.Lock()
	delete(store.users, 1)
	store.mu.Unlock()

	_, err = service.VerifyToken(context.Background(), result.Token)
	authError := auth.AsError(err)
	require.NotNil(t, authError)
	assert.Equal(t, auth.ReasonAccountDeleted, authError.Reason)
}

/*
TestVerifyToken_StoreOutage verifies that a database failure during the fence
lookup does not masquerade as a deleted account's 401.
*/
func TestVerifyToken_StoreOutage(t *testing.T) {
	store := newFakeStore(testUser(t))
	service := newTestService(t, store, &fakeLimiter{allow: true}, &fakeRecorder{})

	result, err := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7",
	})
	require.NoError(t, err)

	store.mu.Lock()
	store.failErr = errors.New("pgx: connection refused")
	store.mu.Unlock()

	_, err = service.VerifyToken(context.Background(), result.Token)
	require.Error(t, err)
	assert.Nil(t, auth.AsError(err))
}

/*
TestVerifyToken_InactivePrecedesVersionMismatch verifies that a deactivated
account reports inactive even when the token version also mismatches.
*/
func TestVerifyToken_InactivePrecedesVersionMismatch(t *testing.T) {
	store := newFakeStore(testUser(t))
	service := newTestService(t, store, &fakeLimiter{allow: true}, &fakeRecorder{})

	result, err := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7",
	})
	require.NoError(t, err)

	// Deactivate AND advance the version behind the token's back.
	store.mu.Lock()
	store.users[1].IsActive = false
	store.users[1].TokenVersion++
	store.mu.Unlock()

	_, err = service.VerifyToken(context.Background(), result.Token)
	authError := auth.AsError(err)
	require.NotNil(t, authError)
	assert.Equal(t, auth.ReasonAccountInactive, authError.Reason)
}

// ── Logout ────────────────────────────────────────────────────────────────

/*
TestLogout_InvalidatesToken verifies that logout fences out the live token
and that repeating it is harmless.
*/
func TestLogout_InvalidatesToken(t *testing.T) {
	store := newFakeStore(testUser(t))
	recorder := &fakeRecorder{}
	service := newTestService(t, store, &fakeLimiter{allow: true}, recorder)

	result, err := service.Login(context.Background(), auth.LoginInput{
		Username: "suzuki", Password: testPassword, ClientIP: "203.0.113.7",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), 1, "203.0.113.7"))

	_, err = service.VerifyToken(context.Background(), result.Token)
	authError := auth.AsError(err)
	require.NotNil(t, authError)
	assert.Equal(t, auth.ReasonSessionReplaced, authError.Reason)

	// Idempotent: a second logout advances the fence again without error.
	require.NoError(t, service.Logout(context.Background(), 1, "203.0.113.7"))
	store.mu.Lock()
	assert.Equal(t, 6, store.users[1].TokenVersion) // 3 +1 login +2 logouts
	store.mu.Unlock()

	assert.Equal(t, []string{audit.ActionLoginSuccess, audit.ActionLogout, audit.ActionLogout}, recorder.actions())
}
