package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				summary TEXT NOT NULL,
				publish_year INTEGER NOT NULL,
				isbn TEXT NOT NULL,
				image_url TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		// The unique index is the atomic authority for the one-book-per-ISBN
		// invariant; concurrent creates with the same ISBN race here and
		// exactly one wins.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_books_isbn ON books (isbn)`)
		if err != nil {
			return errors.WithStack(err)
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE books`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
