package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/bobg/sqlutil"
	"github.com/pkg/errors"

	"threadlink"
)

type linkStore struct {
	db *sql.DB
}

var _ threadlink.LinkStore = linkStore{}

func (l linkStore) ByThreadID(ctx context.Context, threadID string) (*threadlink.ThreadLink, error) {
	const q = `
		SELECT parent_channel_id, guild_id, issue_number, page_id, status, title, description, priority, created_by, created_at, closed_at, metadata
			FROM thread_links
			WHERE thread_id = $1
	`
	result := &threadlink.ThreadLink{
		ThreadID: threadID,
	}
	var (
		closedAt sql.NullTime
		metadata []byte
	)
	err := sqlutil.QueryRowContext(ctx, l.db, q, threadID).Scan(
		&result.ParentChannelID,
		&result.GuildID,
		&result.IssueNumber,
		&result.PageID,
		&result.Status,
		&result.Title,
		&result.Description,
		&result.Priority,
		&result.CreatedBy,
		&result.CreatedAt,
		&closedAt,
		&metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, threadlink.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if closedAt.Valid {
		result.ClosedAt = closedAt.Time
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &result.Metadata); err != nil {
			return nil, errors.Wrap(err, "parsing metadata")
		}
	}
	return result, nil
}

func (l linkStore) Upsert(ctx context.Context, link *threadlink.ThreadLink) error {
	const q = `
		INSERT INTO thread_links (thread_id, parent_channel_id, guild_id, issue_number, page_id, status, title, description, priority, created_by, created_at, closed_at, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (thread_id) DO UPDATE SET
				parent_channel_id = excluded.parent_channel_id,
				guild_id = excluded.guild_id,
				issue_number = excluded.issue_number,
				page_id = excluded.page_id,
				status = excluded.status,
				title = excluded.title,
				description = excluded.description,
				priority = excluded.priority,
				created_by = excluded.created_by,
				closed_at = excluded.closed_at,
				metadata = excluded.metadata
	`
	metadata, err := json.Marshal(link.Metadata)
	if err != nil {
		return errors.Wrap(err, "encoding metadata")
	}
	var closedAt sql.NullTime
	if !link.ClosedAt.IsZero() {
		closedAt = sql.NullTime{Time: link.ClosedAt, Valid: true}
	}
	_, err = l.db.ExecContext(ctx, q,
		link.ThreadID,
		link.ParentChannelID,
		link.GuildID,
		link.IssueNumber,
		link.PageID,
		link.Status,
		link.Title,
		link.Description,
		link.Priority,
		link.CreatedBy,
		link.CreatedAt,
		closedAt,
		metadata,
	)
	return err
}

func (l linkStore) Close(ctx context.Context, threadID string, closedAt time.Time) error {
	const q = `UPDATE thread_links SET status = $2, closed_at = $3 WHERE thread_id = $1`
	res, err := l.db.ExecContext(ctx, q, threadID, threadlink.StatusClosed, closedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return threadlink.ErrNotFound
	}
	return nil
}
