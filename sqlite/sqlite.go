// Package sqlite implements the threadlink stores on a Sqlite3 database.
package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"threadlink"
)

const schema = `
CREATE TABLE IF NOT EXISTS thread_links (
  thread_id TEXT NOT NULL PRIMARY KEY,
  parent_channel_id TEXT NOT NULL DEFAULT '',
  guild_id TEXT NOT NULL DEFAULT '',
  issue_number INTEGER NOT NULL DEFAULT 0,
  page_id TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  priority TEXT NOT NULL DEFAULT 'medium',
  created_by TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL,
  closed_at TIMESTAMP,
  metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS thread_links_issue_index ON thread_links (issue_number);

CREATE TABLE IF NOT EXISTS comment_mappings (
  message_id TEXT NOT NULL PRIMARY KEY,
  thread_id TEXT NOT NULL,
  user_id TEXT NOT NULL DEFAULT '',
  username TEXT NOT NULL DEFAULT '',
  issue_number INTEGER NOT NULL,
  comment_id INTEGER NOT NULL,
  created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS comment_mappings_thread_index ON comment_mappings (thread_id);
`

func Open(ctx context.Context, conn string) (Stores, error) {
	db, err := sql.Open("sqlite3", conn)
	if err != nil {
		return Stores{}, errors.Wrapf(err, "opening %s", conn)
	}
	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		db.Close()
		return Stores{}, errors.Wrap(err, "instantiating schema")
	}
	return Stores{
		Links:    linkStore{db: db},
		Comments: commentStore{db: db},
		db:       db,
	}, nil
}

type Stores struct {
	Links    threadlink.LinkStore
	Comments threadlink.CommentMapStore

	db *sql.DB
}

func (s Stores) Close() error {
	return s.db.Close()
}
