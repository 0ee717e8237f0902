package books

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/migrations"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedBook(ctx context.Context, t *testing.T, svc *Service, isbn string) *models.Book {
	t.Helper()

	book := &models.Book{
		Title:       "The Wind-Up Bird Chronicle",
		Author:      "Haruki Murakami",
		Summary:     "Toru Okada searches for his missing cat.",
		PublishYear: 1994,
		ISBN:        isbn,
	}
	require.NoError(t, svc.CreateBook(ctx, book))
	return book
}

func TestServiceCreateBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := seedBook(ctx, t, svc, "9781860469459")

	assert.NotZero(t, book.ID)
	assert.False(t, book.CreatedAt.IsZero())
	assert.Equal(t, book.CreatedAt, book.UpdatedAt)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "The Wind-Up Bird Chronicle", fetched.Title)
	assert.Equal(t, "9781860469459", fetched.ISBN)
}

func TestServiceCreateBook_MissingFields(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	err := svc.CreateBook(ctx, &models.Book{Author: "Haruki Murakami"})
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 400, ec.HTTPCode)
	assert.Equal(t, "validation_error", ec.Code)
	assert.Equal(t, "Missing required fields: title, summary, publishYear, isbn", ec.Message)
}

func TestServiceCreateBook_InvalidISBN(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, isbn := range []string{"12345", "978-1860469459", "abcdefghij"} {
		book := &models.Book{
			Title:       "Kafka on the Shore",
			Author:      "Haruki Murakami",
			Summary:     "Two narratives converge.",
			PublishYear: 2002,
			ISBN:        isbn,
		}
		err := svc.CreateBook(ctx, book)
		require.Error(t, err, isbn)

		ec := &errcodes.Error{}
		require.ErrorAs(t, err, &ec)
		assert.Equal(t, 400, ec.HTTPCode, isbn)
	}
}

func TestServiceCreateBook_DuplicateISBN(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	seedBook(ctx, t, svc, "9781860469459")

	dupe := &models.Book{
		Title:       "A different edition",
		Author:      "Someone Else",
		Summary:     "Same ISBN, different everything.",
		PublishYear: 2001,
		ISBN:        "9781860469459",
	}
	err := svc.CreateBook(ctx, dupe)
	require.ErrorIs(t, err, errcodes.DuplicateISBN())
}

func TestServiceRetrieveBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := seedBook(ctx, t, svc, "9781860469459")

	t.Run("ByID", func(t *testing.T) {
		fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
		require.NoError(t, err)
		assert.Equal(t, book.ID, fetched.ID)
	})

	t.Run("ByISBN", func(t *testing.T) {
		isbn := "9781860469459"
		fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ISBN: &isbn})
		require.NoError(t, err)
		assert.Equal(t, book.ID, fetched.ID)
	})

	t.Run("ByISBNIsExact", func(t *testing.T) {
		// Hyphenated form of the same number does not match.
		isbn := "978-1-86046-945-9"
		_, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ISBN: &isbn})
		require.ErrorIs(t, err, errcodes.NotFound("Book"))
	})

	t.Run("NotFound", func(t *testing.T) {
		id := 9999
		_, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
		require.ErrorIs(t, err, errcodes.NotFound("Book"))
	})
}

func TestServiceListBooksWithTotal(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	books, total, err := svc.ListBooksWithTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, books)

	seedBook(ctx, t, svc, "9781860469459")
	seedBook(ctx, t, svc, "9780099448822")

	books, total, err = svc.ListBooksWithTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, books, 2)
}

func TestServiceUpdateBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := seedBook(ctx, t, svc, "9781860469459")

	book.Title = "The Wind-Up Bird Chronicle (Vintage)"
	err := svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"title"}})
	require.NoError(t, err)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "The Wind-Up Bird Chronicle (Vintage)", fetched.Title)
	assert.Equal(t, "Haruki Murakami", fetched.Author)
	assert.False(t, fetched.UpdatedAt.Before(fetched.CreatedAt))
}

func TestServiceUpdateBook_NoColumnsIsNoop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := seedBook(ctx, t, svc, "9781860469459")
	before := book.UpdatedAt

	err := svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{}})
	require.NoError(t, err)

	fetched, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, before.UTC(), fetched.UpdatedAt.UTC())
}

func TestServiceUpdateBook_DuplicateISBN(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	seedBook(ctx, t, svc, "9781860469459")
	other := seedBook(ctx, t, svc, "9780099448822")

	other.ISBN = "9781860469459"
	err := svc.UpdateBook(ctx, other, UpdateBookOptions{Columns: []string{"isbn"}})
	require.ErrorIs(t, err, errcodes.DuplicateISBN())
}

func TestServiceDeleteBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := seedBook(ctx, t, svc, "9781860469459")

	deleted, err := svc.DeleteBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, deleted.ID)
	assert.Equal(t, "The Wind-Up Bird Chronicle", deleted.Title)

	_, err = svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.ErrorIs(t, err, errcodes.NotFound("Book"))

	_, err = svc.DeleteBook(ctx, book.ID)
	require.ErrorIs(t, err, errcodes.NotFound("Book"))
}
