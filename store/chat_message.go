package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ChatMessage represents one indexed chat message. Messages are immutable once
// ingested and accumulate indefinitely; eviction is out of scope.
type ChatMessage struct {
	ID        int64
	UID       string
	Content   string
	Author    string
	CreatedAt string // pre-formatted UTC timestamp, e.g. "2025-10-04 15:04:05 UTC"
	Embedding []float32
	CreatedTs int64
}

// ChatMessageWithScore is a raw vector search result. Score is the cosine
// distance reported by the driver: lower means more similar.
type ChatMessageWithScore struct {
	Message *ChatMessage
	Score   float64
}

// RankedChatMessage is a search result with its per-batch normalized confidence
// in [0,1]. Confidences are only comparable within the same query batch.
type RankedChatMessage struct {
	Message    *ChatMessage
	Confidence float64
}

// VectorSearchOptions represents the options for a raw nearest-neighbor lookup.
type VectorSearchOptions struct {
	Vector []float32
	Limit  int
}

// Validate validates the VectorSearchOptions.
func (o *VectorSearchOptions) Validate() error {
	if len(o.Vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	if o.Limit < 1 {
		return errors.Errorf("limit must be >= 1: %d", o.Limit)
	}
	if o.Limit > 1000 {
		return errors.Errorf("limit too large (max 1000): %d", o.Limit)
	}
	return nil
}

// RelevanceSearchOptions represents the options for a confidence-ranked search.
type RelevanceSearchOptions struct {
	Vector        []float32
	TopK          int     // nearest neighbors fetched from the index
	MinConfidence float64 // keep results with confidence >= this, in [0,1]
	MaxResults    int     // cap on returned results, 0 = uncapped
}

// Validate validates the RelevanceSearchOptions.
func (o *RelevanceSearchOptions) Validate() error {
	if len(o.Vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	if o.TopK < 1 {
		return errors.Errorf("top-k must be >= 1: %d", o.TopK)
	}
	if o.MinConfidence < 0 || o.MinConfidence > 1 {
		return errors.Errorf("min confidence must be in [0,1]: %f", o.MinConfidence)
	}
	if o.MaxResults < 0 {
		return errors.Errorf("max results cannot be negative: %d", o.MaxResults)
	}
	return nil
}

// CreateChatMessage ingests one message into the index. Every call inserts a
// new record, duplicates included.
func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	if create.Content == "" {
		return nil, errors.New("content cannot be empty")
	}
	if len(create.Embedding) == 0 {
		return nil, errors.New("embedding cannot be empty")
	}
	if create.UID == "" {
		create.UID = uuid.NewString()
	}
	if err := s.driver.CreateChatMessage(ctx, create); err != nil {
		return nil, errors.Wrap(err, "failed to create chat message")
	}
	return create, nil
}

// SearchRelevantChatMessages performs a nearest-neighbor lookup and converts
// the raw distances into per-batch confidences, ordered descending.
//
// An empty result is a successful "no relevant history" outcome, not an error;
// only index failures propagate.
func (s *Store) SearchRelevantChatMessages(ctx context.Context, opts *RelevanceSearchOptions) ([]*RankedChatMessage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	scored, err := s.driver.VectorSearchChatMessages(ctx, &VectorSearchOptions{
		Vector: opts.Vector,
		Limit:  opts.TopK,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search chat messages")
	}
	if len(scored) == 0 {
		return []*RankedChatMessage{}, nil
	}

	ranked := normalizeScores(scored)

	filtered := make([]*RankedChatMessage, 0, len(ranked))
	for _, r := range ranked {
		if r.Confidence >= opts.MinConfidence {
			filtered = append(filtered, r)
		}
	}

	if opts.MaxResults > 0 && len(filtered) > opts.MaxResults {
		filtered = filtered[:opts.MaxResults]
	}

	return filtered, nil
}

// normalizeScores min-max normalizes raw cosine distances into confidences.
// The scores are distances (lower = more similar), so the best match in the
// batch gets confidence 1.0 and the worst gets 0.0. When every score in the
// batch is identical there is no spread to normalize over; all records get 1.0.
func normalizeScores(scored []*ChatMessageWithScore) []*RankedChatMessage {
	minScore, maxScore := scored[0].Score, scored[0].Score
	for _, s := range scored[1:] {
		if s.Score < minScore {
			minScore = s.Score
		}
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}

	spread := maxScore - minScore
	ranked := make([]*RankedChatMessage, len(scored))
	for i, s := range scored {
		confidence := 1.0
		if spread != 0 {
			confidence = 1 - (s.Score-minScore)/spread
		}
		ranked[i] = &RankedChatMessage{
			Message:    s.Message,
			Confidence: confidence,
		}
	}
	return ranked
}

// CountChatMessages returns the current index size.
func (s *Store) CountChatMessages(ctx context.Context) (int64, error) {
	return s.driver.CountChatMessages(ctx)
}
