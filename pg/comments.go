package pg

import (
	"context"
	"database/sql"

	"github.com/bobg/sqlutil"
	"github.com/pkg/errors"

	"threadlink"
)

type commentStore struct {
	db *sql.DB
}

var _ threadlink.CommentMapStore = commentStore{}

func (c commentStore) ByMessageID(ctx context.Context, messageID string) (*threadlink.CommentMapping, error) {
	const q = `
		SELECT thread_id, user_id, username, issue_number, comment_id, created_at
			FROM comment_mappings
			WHERE message_id = $1
	`
	result := &threadlink.CommentMapping{
		MessageID: messageID,
	}
	err := sqlutil.QueryRowContext(ctx, c.db, q, messageID).Scan(
		&result.ThreadID,
		&result.UserID,
		&result.Username,
		&result.IssueNumber,
		&result.CommentID,
		&result.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, threadlink.ErrNotFound
	}
	return result, err
}

func (c commentStore) Add(ctx context.Context, m *threadlink.CommentMapping) error {
	const q = `
		INSERT INTO comment_mappings (message_id, thread_id, user_id, username, issue_number, comment_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (message_id) DO UPDATE SET
				comment_id = excluded.comment_id,
				issue_number = excluded.issue_number
	`
	_, err := c.db.ExecContext(ctx, q, m.MessageID, m.ThreadID, m.UserID, m.Username, m.IssueNumber, m.CommentID, m.CreatedAt)
	return err
}

func (c commentStore) Delete(ctx context.Context, messageID string) error {
	const q = `DELETE FROM comment_mappings WHERE message_id = $1`
	_, err := c.db.ExecContext(ctx, q, messageID)
	return err
}
