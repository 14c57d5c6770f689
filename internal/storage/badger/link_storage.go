package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/interfaces"
	"github.com/ternarybob/affilink/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// LinkStorage implements the LinkStorage interface for Badger
type LinkStorage struct {
	db     *BadgerDB
	logger arbor.ILogger

	// Badger writes are last-write-wins per key, so full-record writes and
	// click increments are serialized here to keep concurrent redirects from
	// losing updates.
	writeMu sync.Mutex
}

// NewLinkStorage creates a new LinkStorage instance
func NewLinkStorage(db *BadgerDB, logger arbor.ILogger) interfaces.LinkStorage {
	return &LinkStorage{
		db:     db,
		logger: logger,
	}
}

func (s *LinkStorage) Create(ctx context.Context, link *models.Link) error {
	if link.ID == "" {
		return fmt.Errorf("link ID is required")
	}
	if err := s.db.Store().Insert(link.ID, link); err != nil {
		if err == badgerhold.ErrKeyExists {
			return fmt.Errorf("link %s already exists", link.ID)
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

func (s *LinkStorage) Get(ctx context.Context, id string) (*models.Link, error) {
	var link models.Link
	if err := s.db.Store().Get(id, &link); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

func (s *LinkStorage) Update(ctx context.Context, link *models.Link) error {
	if link.ID == "" {
		return fmt.Errorf("link ID is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// The click counter is owned by IncrementClicks. A caller's snapshot may
	// predate clicks recorded since it was read, so the stored count wins.
	var stored models.Link
	if err := s.db.Store().Get(link.ID, &stored); err == nil && stored.Clicks > link.Clicks {
		link.Clicks = stored.Clicks
	}

	link.UpdatedAt = time.Now()
	if err := s.db.Store().Update(link.ID, link); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrLinkNotFound
		}
		return fmt.Errorf("failed to update link: %w", err)
	}
	return nil
}

func (s *LinkStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Link{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrLinkNotFound
		}
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

func (s *LinkStorage) List(ctx context.Context) ([]*models.Link, error) {
	var links []models.Link
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if err := s.db.Store().Find(&links, query); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return toPointers(links), nil
}

func (s *LinkStorage) ListActive(ctx context.Context) ([]*models.Link, error) {
	var links []models.Link
	query := badgerhold.Where("IsActive").Eq(true).SortBy("CreatedAt")
	if err := s.db.Store().Find(&links, query); err != nil {
		return nil, fmt.Errorf("failed to list active links: %w", err)
	}
	return toPointers(links), nil
}

func (s *LinkStorage) FindBySourceAndActive(ctx context.Context, source string, active bool) ([]*models.Link, error) {
	var links []models.Link
	query := badgerhold.Where("Source").Eq(source).And("IsActive").Eq(active).SortBy("CreatedAt")
	if err := s.db.Store().Find(&links, query); err != nil {
		return nil, fmt.Errorf("failed to find links by source: %w", err)
	}
	return toPointers(links), nil
}

// IncrementClicks applies a single serialized increment so concurrent
// redirects for the same ID never under-count.
func (s *LinkStorage) IncrementClicks(ctx context.Context, id string) (*models.Link, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var link models.Link
	if err := s.db.Store().Get(id, &link); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link for click increment: %w", err)
	}

	link.Clicks++
	link.UpdatedAt = time.Now()

	if err := s.db.Store().Update(id, &link); err != nil {
		return nil, fmt.Errorf("failed to record click: %w", err)
	}
	return &link, nil
}

func (s *LinkStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Link{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return int(count), nil
}

func (s *LinkStorage) Close() error {
	return s.db.Close()
}

func toPointers(links []models.Link) []*models.Link {
	result := make([]*models.Link, len(links))
	for i := range links {
		result[i] = &links[i]
	}
	return result
}
