package services

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/assigntrack/internal/app/models"
	"github.com/emre/assigntrack/internal/pkg/session"
)

func newReconcilerFixture() (*RoleReconciler, *fakeRoleRepo, *PendingRoleCache) {
	roleRepo := newFakeRoleRepo()
	pending := NewPendingRoleCache()
	return NewRoleReconciler(roleRepo, pending, zerolog.Nop()), roleRepo, pending
}

func TestReconcilerPersistsParkedRole(t *testing.T) {
	r, roleRepo, pending := newReconcilerFixture()
	pending.Set(5, models.RoleStudent)

	r.HandleEvent(session.Event{Kind: session.SignedIn, UserID: 5, SessionID: "s1"})

	role, ok := roleRepo.roleOf(5)
	require.True(t, ok)
	assert.Equal(t, models.RoleStudent, role)
	assert.Equal(t, 0, pending.Len())
}

func TestReconcilerRunsAtMostOncePerSession(t *testing.T) {
	r, roleRepo, pending := newReconcilerFixture()
	pending.Set(5, models.RoleStudent)

	ev := session.Event{Kind: session.SignedIn, UserID: 5, SessionID: "s1"}
	r.HandleEvent(ev)
	r.HandleEvent(ev)
	r.HandleEvent(session.Event{Kind: session.Refreshed, UserID: 5, SessionID: "s1"})

	assert.Equal(t, 1, roleRepo.calls())
}

func TestReconcilerDistinctSessionsEachGetOneAttempt(t *testing.T) {
	r, roleRepo, pending := newReconcilerFixture()
	roleRepo.setInsertErr(assertableErr{})
	pending.Set(5, models.RoleStudent)

	r.HandleEvent(session.Event{Kind: session.SignedIn, UserID: 5, SessionID: "s1"})
	r.HandleEvent(session.Event{Kind: session.SignedIn, UserID: 5, SessionID: "s2"})

	assert.Equal(t, 2, roleRepo.calls())
	// Both failed, the parked role is still waiting.
	_, parked := pending.Get(5)
	assert.True(t, parked)
}

func TestReconcilerNoParkedRoleIsNoop(t *testing.T) {
	r, roleRepo, _ := newReconcilerFixture()

	r.HandleEvent(session.Event{Kind: session.SignedIn, UserID: 5, SessionID: "s1"})

	assert.Equal(t, 0, roleRepo.calls())
}

func TestReconcilerStaleParkedRoleIsDropped(t *testing.T) {
	r, roleRepo, pending := newReconcilerFixture()
	roleRepo.roles[5] = models.RoleAdmin
	pending.Set(5, models.RoleStudent)

	r.HandleEvent(session.Event{Kind: session.SignedIn, UserID: 5, SessionID: "s1"})

	// The existing row wins; the parked entry is discarded, not retried.
	role, _ := roleRepo.roleOf(5)
	assert.Equal(t, models.RoleAdmin, role)
	assert.Equal(t, 0, pending.Len())
}

func TestReconcilerIgnoresSignedOutForPersistence(t *testing.T) {
	r, roleRepo, pending := newReconcilerFixture()
	pending.Set(5, models.RoleStudent)

	r.HandleEvent(session.Event{Kind: session.SignedOut, UserID: 5, SessionID: "s1"})

	assert.Equal(t, 0, roleRepo.calls())
	_, parked := pending.Get(5)
	assert.True(t, parked)
}

func TestReconcilerIgnoresEmptySessionID(t *testing.T) {
	r, roleRepo, pending := newReconcilerFixture()
	pending.Set(5, models.RoleStudent)

	r.HandleEvent(session.Event{Kind: session.SignedIn, UserID: 5, SessionID: ""})

	assert.Equal(t, 0, roleRepo.calls())
}

type assertableErr struct{}

func (assertableErr) Error() string { return "insert failed" }

func TestReconcilerFailedSessionDoesNotRetry(t *testing.T) {
	r, roleRepo, pending := newReconcilerFixture()
	roleRepo.setInsertErr(assertableErr{})
	pending.Set(5, models.RoleStudent)

	ev := session.Event{Kind: session.SignedIn, UserID: 5, SessionID: "s1"}
	r.HandleEvent(ev)
	r.HandleEvent(ev)

	// One failed attempt spends the session; the pending role waits for the next one.
	assert.Equal(t, 1, roleRepo.calls())
	_, parked := pending.Get(5)
	assert.True(t, parked)
}

func TestReconcilerSeenSetStaysBounded(t *testing.T) {
	r, roleRepo, pending := newReconcilerFixture()

	// Sessions with nothing pending leave no trace.
	for i := 0; i < 100; i++ {
		r.HandleEvent(session.Event{Kind: session.Refreshed, UserID: 5, SessionID: fmt.Sprintf("s%d", i)})
	}
	assert.Equal(t, 0, seenLen(r))

	// A successful reconciliation releases its session entry.
	pending.Set(5, models.RoleStudent)
	r.HandleEvent(session.Event{Kind: session.SignedIn, UserID: 5, SessionID: "ok"})
	_, persisted := roleRepo.roleOf(5)
	require.True(t, persisted)
	assert.Equal(t, 0, seenLen(r))

	// Only a failed attempt is remembered, so the session cannot retry.
	roleRepo.setInsertErr(assertableErr{})
	pending.Set(6, models.RoleStudent)
	r.HandleEvent(session.Event{Kind: session.SignedIn, UserID: 6, SessionID: "bad"})
	assert.Equal(t, 1, seenLen(r))
}

func seenLen(r *RoleReconciler) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
