package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID   *int
	ISBN *string
}

type ListBooksOptions struct {
	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// validateForWrite is the store-side schema check, the final authority on
// required columns and ISBN shape. It runs on every write even though the
// handlers validate payloads first, so the two layers stay independent.
func validateForWrite(book *models.Book) error {
	missing := []string{}
	if book.Title == "" {
		missing = append(missing, "title")
	}
	if book.Author == "" {
		missing = append(missing, "author")
	}
	if book.Summary == "" {
		missing = append(missing, "summary")
	}
	if book.PublishYear == 0 {
		missing = append(missing, "publishYear")
	}
	if book.ISBN == "" {
		missing = append(missing, "isbn")
	}
	if len(missing) > 0 {
		return errcodes.MissingFields(missing)
	}

	if !models.ValidISBN(book.ISBN) {
		return errcodes.ValidationError(fmt.Sprintf("%q is not a valid ISBN.", book.ISBN))
	}

	return nil
}

// isUniqueISBNViolation detects the unique index rejecting a write. The
// index is the atomic authority for the one-book-per-ISBN invariant, so
// concurrent creates race here and exactly one wins.
func isUniqueISBNViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	if err := validateForWrite(book); err != nil {
		return err
	}

	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueISBNViolation(err) {
			return errcodes.DuplicateISBN()
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.ISBN != nil {
		// Exact match; stored values are compared byte-for-byte with no
		// case or hyphen normalization.
		q = q.Where("b.isbn = ?", *opts.ISBN)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, ListBooksOptions{})
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context) ([]*models.Book, int, error) {
	return svc.listBooksWithTotal(ctx, ListBooksOptions{includeTotal: true})
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	// Insertion order is the store default; callers must not depend on it.
	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.created_at ASC")

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	// The post-merge document has to pass the same schema checks as a
	// create; a partial update can't leave the record invalid.
	if err := validateForWrite(book); err != nil {
		return err
	}

	book.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueISBNViolation(err) {
			return errcodes.DuplicateISBN()
		}
		return errors.WithStack(err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return errcodes.NotFound("Book")
	}

	return nil
}

// DeleteBook removes a book and returns the deleted document. Cleaning up
// the cover image file is the caller's concern; the store only owns rows.
func (svc *Service) DeleteBook(ctx context.Context, id int) (*models.Book, error) {
	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return nil, err
	}

	_, err = svc.db.
		NewDelete().
		Model(book).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return book, nil
}
