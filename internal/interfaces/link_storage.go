package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/affilink/internal/models"
)

// ErrLinkNotFound is returned when a link ID does not exist in storage
var ErrLinkNotFound = errors.New("link not found")

// LinkStorage defines persistence operations for links
type LinkStorage interface {
	Create(ctx context.Context, link *models.Link) error
	Get(ctx context.Context, id string) (*models.Link, error)

	// Update persists a full link record. The click counter is owned by
	// IncrementClicks: when the caller's record is a stale snapshot, Update
	// must keep the stored count rather than writing Clicks backwards.
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Link, error)
	ListActive(ctx context.Context) ([]*models.Link, error)
	FindBySourceAndActive(ctx context.Context, source string, active bool) ([]*models.Link, error)

	// IncrementClicks atomically increments the click counter and returns the
	// updated link. Concurrent calls for the same ID must not lose updates.
	IncrementClicks(ctx context.Context, id string) (*models.Link, error)

	Count(ctx context.Context) (int, error)
	Close() error
}
