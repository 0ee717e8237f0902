package books

import (
	"net/http"
	"strconv"

	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/imagestore"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookService *Service
	images      *imagestore.Store
}

func (h *handler) uploadImage(c echo.Context) error {
	// Bind params.
	params := UploadImagePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	file := params.FormFiles["image"]
	if file == nil {
		return errcodes.NoImageFile()
	}

	ref, err := h.images.Save(file)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Message  string `json:"message"`
		ImageURL string `json:"imageUrl"`
	}{"Image uploaded successfully.", ref}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, total, err := h.bookService.ListBooksWithTotal(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Count int            `json:"count"`
		Data  []*models.Book `json:"data"`
	}{total, books}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return errcodes.InvalidID("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) retrieveByISBN(c echo.Context) error {
	ctx := c.Request().Context()
	isbn := c.Param("isbn")

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ISBN: &isbn,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if err := params.Validate(); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		Title:       *params.Title,
		Author:      *params.Author,
		Summary:     *params.Summary,
		PublishYear: *params.PublishYear,
		ImageURL:    params.ImageURL,
	}
	if params.ISBN != nil {
		book.ISBN = *params.ISBN
	}

	// An uploaded file wins over a client-supplied imageUrl.
	if file := params.FormFiles["image"]; file != nil {
		ref, err := h.images.Save(file)
		if err != nil {
			return errors.WithStack(err)
		}
		book.ImageURL = &ref
	}

	err := h.bookService.CreateBook(ctx, book)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return errcodes.InvalidID("Book")
	}

	// Bind params.
	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if err := params.Validate(); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the book.
	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateBookOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Author != nil && *params.Author != book.Author {
		book.Author = *params.Author
		opts.Columns = append(opts.Columns, "author")
	}
	if params.Summary != nil && *params.Summary != book.Summary {
		book.Summary = *params.Summary
		opts.Columns = append(opts.Columns, "summary")
	}
	if params.PublishYear != nil && *params.PublishYear != book.PublishYear {
		book.PublishYear = *params.PublishYear
		opts.Columns = append(opts.Columns, "publish_year")
	}
	if params.ISBN != nil && *params.ISBN != book.ISBN {
		book.ISBN = *params.ISBN
		opts.Columns = append(opts.Columns, "isbn")
	}
	if params.ImageURL != nil && (book.ImageURL == nil || *params.ImageURL != *book.ImageURL) {
		book.ImageURL = params.ImageURL
		opts.Columns = append(opts.Columns, "image_url")
	}
	if file := params.FormFiles["image"]; file != nil {
		ref, err := h.images.Save(file)
		if err != nil {
			return errors.WithStack(err)
		}
		book.ImageURL = &ref
		if len(opts.Columns) == 0 || opts.Columns[len(opts.Columns)-1] != "image_url" {
			opts.Columns = append(opts.Columns, "image_url")
		}
	}

	// Update the model.
	err = h.bookService.UpdateBook(ctx, book, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Message string       `json:"message"`
		Book    *models.Book `json:"book"`
	}{"Book updated successfully.", book}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return errcodes.InvalidID("Book")
	}

	book, err := h.bookService.DeleteBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	// The row is gone either way; a stranded file only costs disk space.
	if book.ImageURL != nil && *book.ImageURL != "" {
		if err := h.images.Delete(*book.ImageURL); err != nil {
			log := logger.FromContext(ctx)
			log.Warn("failed to delete cover image", logger.Data{"image_url": *book.ImageURL, "error": err.Error()})
		}
	}

	resp := struct {
		Message     string       `json:"message"`
		DeletedBook *models.Book `json:"deletedBook"`
	}{"Book deleted successfully.", book}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
