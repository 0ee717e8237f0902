package books

import (
	"github.com/hondanabooks/hondana/pkg/imagestore"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, images *imagestore.Store) {
	h := &handler{
		bookService: NewService(db),
		images:      images,
	}

	g.POST("/upload", h.uploadImage)
	g.GET("", h.list)
	g.GET("/isbn/:isbn", h.retrieveByISBN)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}
