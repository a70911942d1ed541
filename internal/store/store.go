package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/finadvisorhq/advisory/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ErrStatusConflict means a conditional advice transition matched no row
// because the expected current status is gone; the caller must re-read and
// branch on the winning terminal state.
var ErrStatusConflict = errors.New("advice status conflict")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	CreateAdvice(ctx context.Context, advice *models.Advice) error
	GetAdvice(ctx context.Context, id uuid.UUID) (*models.Advice, error)
	ListAdvice(ctx context.Context, filter AdviceFilter) ([]*models.Advice, int, error)
	// TransitionAdviceStatus atomically updates the advice row from the
	// expected status to the new one, bumping updated_at. Returns
	// ErrStatusConflict when the row no longer carries the expected status.
	TransitionAdviceStatus(ctx context.Context, id uuid.UUID, from, to string) (*models.Advice, error)
}

// AdviceFilter narrows and paginates advice listings.
type AdviceFilter struct {
	UserID       uuid.UUID
	Status       string
	AnalysisType string
	Page         int
	Limit        int
}
