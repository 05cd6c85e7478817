package store

import (
	"context"

	"github.com/hrygo/recall/internal/profile"
)

// Driver is the contract a vector index backend must satisfy. The backend owns
// persistence and nearest-neighbor lookup; score normalization happens above it.
type Driver interface {
	Migrate(ctx context.Context) error

	// CreateChatMessage inserts one indexed record. No deduplication.
	CreateChatMessage(ctx context.Context, create *ChatMessage) error

	// VectorSearchChatMessages returns up to opts.Limit records ordered by raw
	// score ascending. The raw score is a cosine distance: lower is more similar.
	VectorSearchChatMessages(ctx context.Context, opts *VectorSearchOptions) ([]*ChatMessageWithScore, error)

	// CountChatMessages returns the number of indexed records.
	CountChatMessages(ctx context.Context) (int64, error)

	Close() error
}

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}
