package models

import (
	"regexp"
	"time"

	"github.com/uptrace/bun"
)

// isbnRE matches the 10-character form (nine digits plus a digit or check
// character X) or the plain 13-digit form. Stored values are matched
// byte-for-byte; no hyphen or case normalization happens anywhere.
var isbnRE = regexp.MustCompile(`^(?:\d{9}[\dXx]|\d{13})$`)

// ValidISBN reports whether v conforms to the ISBN-10 or ISBN-13 shape.
func ValidISBN(v string) bool {
	return isbnRE.MatchString(v)
}

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Title       string    `bun:",nullzero" json:"title"`
	Author      string    `bun:",nullzero" json:"author"`
	Summary     string    `bun:",nullzero" json:"summary"`
	PublishYear int       `bun:",nullzero" json:"publishYear"`
	ISBN        string    `bun:",nullzero" json:"isbn"`
	ImageURL    *string   `json:"imageUrl"`
}
