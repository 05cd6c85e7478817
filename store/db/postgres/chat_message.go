package postgres

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/recall/store"
)

// CreateChatMessage inserts one chat message with its embedding.
func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) error {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stmt := `
		INSERT INTO chat_message (uid, content, author, created_at, embedding, created_ts)
		VALUES (` + placeholders(6) + `)
		RETURNING id
	`

	vector := pgvector.NewVector(create.Embedding)
	err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.Content,
		create.Author,
		create.CreatedAt,
		vector,
		create.CreatedTs,
	).Scan(&create.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create chat message")
	}

	return nil
}

// VectorSearchChatMessages performs nearest-neighbor search using pgvector.
// The <=> operator computes cosine distance, so ordering ascending yields the
// most similar messages first. The distance is returned as the raw score.
func (d *DB) VectorSearchChatMessages(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ChatMessageWithScore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT
			id, uid, content, author, created_at, created_ts,
			embedding <=> ` + placeholder(1) + ` AS score
		FROM chat_message
		ORDER BY embedding <=> ` + placeholder(2) + `
		LIMIT ` + placeholder(3)

	vector := pgvector.NewVector(opts.Vector)
	rows, err := d.db.QueryContext(ctx, query, vector, vector, opts.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search chat messages")
	}
	defer rows.Close()

	results := []*store.ChatMessageWithScore{}
	for rows.Next() {
		var result store.ChatMessageWithScore
		var message store.ChatMessage

		err := rows.Scan(
			&message.ID,
			&message.UID,
			&message.Content,
			&message.Author,
			&message.CreatedAt,
			&message.CreatedTs,
			&result.Score,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}

		result.Message = &message
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// CountChatMessages returns the number of indexed messages.
func (d *DB) CountChatMessages(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_message`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count chat messages")
	}
	return count, nil
}
