package testutils

import (
	"net/http"
	"time"

	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

// createBookRequest is the request body for seeding a test book.
type createBookRequest struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Summary     string  `json:"summary"`
	PublishYear int     `json:"publishYear"`
	ISBN        string  `json:"isbn"`
	ImageURL    *string `json:"imageUrl"`
}

// createBook seeds a book directly, bypassing the public validation layers.
// POST /test/books.
func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	now := time.Now()
	book := &models.Book{
		CreatedAt:   now,
		UpdatedAt:   now,
		Title:       req.Title,
		Author:      req.Author,
		Summary:     req.Summary,
		PublishYear: req.PublishYear,
		ISBN:        req.ISBN,
		ImageURL:    req.ImageURL,
	}

	_, err := h.db.NewInsert().Model(book).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create book")
	}

	return c.JSON(http.StatusCreated, book)
}

// deleteAllBooks clears the books table.
// DELETE /test/books.
func (h *handler) deleteAllBooks(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := h.db.NewDelete().Model((*models.Book)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete books")
	}

	return c.NoContent(http.StatusNoContent)
}
