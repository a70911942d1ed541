package advice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finadvisorhq/advisory/internal/cache"
	"github.com/finadvisorhq/advisory/internal/store"
	"github.com/finadvisorhq/advisory/pkg/models"
)

const statusCacheTTL = 30 * time.Minute

// Lifecycle owns advice status transitions: proposed → accepted | rejected.
// Repeating a terminal transition is an idempotent no-op; attempting the
// opposite terminal transition is a hard error.
type Lifecycle struct {
	store store.Store
	cache cache.Cache
}

// NewLifecycle creates a Lifecycle.
func NewLifecycle(st store.Store, ca cache.Cache) *Lifecycle {
	return &Lifecycle{store: st, cache: ca}
}

// Accept moves the advice to accepted. Already-accepted advice is returned
// unchanged; rejected advice fails with ErrInvalidStateTransition.
func (l *Lifecycle) Accept(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error) {
	return l.transition(ctx, adviceID, models.AdviceStatusAccepted)
}

// Reject moves the advice to rejected, symmetric to Accept.
func (l *Lifecycle) Reject(ctx context.Context, adviceID uuid.UUID) (*models.Advice, error) {
	return l.transition(ctx, adviceID, models.AdviceStatusRejected)
}

func (l *Lifecycle) transition(ctx context.Context, adviceID uuid.UUID, target string) (*models.Advice, error) {
	// Terminal statuses are final, so a cached terminal status is
	// authoritative: the opposite transition can be refused without a
	// store round-trip. A cached proposed status may be stale and falls
	// through to the store.
	if cached, ok, err := l.cache.GetAdviceStatus(ctx, adviceID); err == nil && ok {
		if cached != target && cached != models.AdviceStatusProposed {
			return nil, transitionError(cached, target)
		}
	}

	current, err := l.store.GetAdvice(ctx, adviceID)
	if err != nil {
		return nil, err
	}

	switch current.Status {
	case target:
		// Retry of the same user action. Safe: no second write, no
		// observable updated_at change.
		return current, nil
	case models.AdviceStatusProposed:
		updated, err := l.store.TransitionAdviceStatus(ctx, adviceID, models.AdviceStatusProposed, target)
		if errors.Is(err, store.ErrStatusConflict) {
			// A concurrent transition won the row. Re-read and branch on
			// the winner's terminal state.
			return l.settle(ctx, adviceID, target)
		}
		if err != nil {
			return nil, err
		}
		_ = l.cache.SetAdviceStatus(ctx, adviceID, target, statusCacheTTL)
		return updated, nil
	default:
		return nil, transitionError(current.Status, target)
	}
}

// settle resolves a lost conditional update deterministically: idempotent
// success when the winner applied the same transition, hard error otherwise.
func (l *Lifecycle) settle(ctx context.Context, adviceID uuid.UUID, target string) (*models.Advice, error) {
	current, err := l.store.GetAdvice(ctx, adviceID)
	if err != nil {
		return nil, err
	}
	if current.Status == target {
		return current, nil
	}
	return nil, transitionError(current.Status, target)
}

func transitionError(from, to string) error {
	return fmt.Errorf("%w: cannot %s %s advice",
		ErrInvalidStateTransition, transitionVerb(to), from)
}

func transitionVerb(target string) string {
	if target == models.AdviceStatusAccepted {
		return "accept"
	}
	return "reject"
}
