package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/emre/assigntrack/internal/app/repositories"
	"github.com/emre/assigntrack/internal/pkg/apperrors"
	"github.com/emre/assigntrack/internal/pkg/session"
)

const reconcileTimeout = 5 * time.Second

// RoleReconciler turns session events into role rows. When a session becomes
// active for a user with a pending role, the reconciler persists that role
// exactly once per session: repeated events for the same session ID are
// ignored, and a failed insert leaves the pending entry in place so the next
// session retries it.
type RoleReconciler struct {
	roleRepo repositories.IRoleRepository
	pending  *PendingRoleCache
	logger   zerolog.Logger

	// seen holds only sessions whose insert attempt failed, so a session
	// never retries and the set stays bounded by failures, not by traffic.
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRoleReconciler creates a new RoleReconciler
func NewRoleReconciler(roleRepo repositories.IRoleRepository, pending *PendingRoleCache, logger zerolog.Logger) *RoleReconciler {
	return &RoleReconciler{
		roleRepo: roleRepo,
		pending:  pending,
		logger:   logger,
		seen:     make(map[string]struct{}),
	}
}

// HandleEvent is the session.Listener entry point
func (r *RoleReconciler) HandleEvent(ev session.Event) {
	switch ev.Kind {
	case session.SignedIn, session.Refreshed:
		r.reconcile(ev)
	case session.SignedOut:
		r.forget(ev.SessionID)
	}
}

func (r *RoleReconciler) reconcile(ev session.Event) {
	if ev.SessionID == "" {
		return
	}
	if r.alreadyTried(ev.SessionID) {
		return
	}

	role, ok := r.pending.Get(ev.UserID)
	if !ok {
		// Nothing to persist; the session is not recorded so the seen set
		// only holds sessions whose insert attempt failed.
		return
	}

	r.markTried(ev.SessionID)

	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	err := r.roleRepo.InsertRole(ctx, ev.UserID, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrRoleAlreadyAssigned) {
			// Another path won the race; the pending entry is stale.
			r.pending.Delete(ev.UserID)
			r.forget(ev.SessionID)
			return
		}
		r.logger.Error().Err(err).
			Int64("userID", ev.UserID).
			Str("role", string(role)).
			Msg("Failed to persist pending role, keeping it for the next session")
		return
	}

	r.pending.Delete(ev.UserID)
	r.forget(ev.SessionID)
	r.logger.Info().
		Int64("userID", ev.UserID).
		Str("role", string(role)).
		Msg("Persisted pending role")
}

// alreadyTried reports whether this session already spent its one insert
// attempt.
func (r *RoleReconciler) alreadyTried(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, dup := r.seen[sessionID]
	return dup
}

func (r *RoleReconciler) markTried(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[sessionID] = struct{}{}
}

func (r *RoleReconciler) forget(sessionID string) {
	if sessionID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, sessionID)
}
