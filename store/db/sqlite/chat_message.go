package sqlite

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/recall/store"
)

// CreateChatMessage inserts one chat message with its embedding stored as BLOB.
func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) error {
	vectorBLOB, err := float32ArrayToBLOB(create.Embedding)
	if err != nil {
		return errors.Wrap(err, "failed to convert embedding vector to BLOB")
	}

	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stmt := `INSERT INTO chat_message (uid, content, author, created_at, embedding, created_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`

	err = d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.Content,
		create.Author,
		create.CreatedAt,
		vectorBLOB,
		create.CreatedTs,
	).Scan(&create.ID)
	if err != nil {
		return errors.Wrap(err, "failed to create chat message")
	}

	return nil
}

// VectorSearchChatMessages scans all rows and ranks them by cosine distance in
// Go. Raw score convention matches the postgres driver: lower is more similar.
func (d *DB) VectorSearchChatMessages(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ChatMessageWithScore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT id, uid, content, author, created_at, embedding, created_ts FROM chat_message`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query chat messages")
	}
	defer rows.Close()

	results := []*store.ChatMessageWithScore{}
	for rows.Next() {
		var message store.ChatMessage
		var vectorBLOB []byte

		err := rows.Scan(
			&message.ID,
			&message.UID,
			&message.Content,
			&message.Author,
			&message.CreatedAt,
			&vectorBLOB,
			&message.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan chat message")
		}

		embedding, err := blobToFloat32Array(vectorBLOB)
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert embedding BLOB to array")
		}

		results = append(results, &store.ChatMessageWithScore{
			Message: &message,
			Score:   cosineDistance(embedding, opts.Vector),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
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
