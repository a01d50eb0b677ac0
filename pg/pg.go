// Package pg implements the threadlink stores on a Postgresql database.
package pg

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"threadlink"
)

//go:embed migrations/*.sql
var migrations embed.FS

func Open(ctx context.Context, dsn string) (Stores, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return Stores{}, errors.Wrap(err, "opening db")
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return Stores{}, errors.Wrap(err, "setting migration dialect")
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return Stores{}, errors.Wrap(err, "running migrations")
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
