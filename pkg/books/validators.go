package books

import (
	"mime/multipart"

	"github.com/hondanabooks/hondana/pkg/errcodes"
)

type UploadImagePayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

type CreateBookPayload struct {
	Title       *string `json:"title" form:"title" mod:"trim"`
	Author      *string `json:"author" form:"author" mod:"trim"`
	Summary     *string `json:"summary" form:"summary" mod:"trim"`
	PublishYear *int    `json:"publishYear" form:"publishYear"`
	ISBN        *string `json:"isbn" form:"isbn"`
	ImageURL    *string `json:"imageUrl" form:"imageUrl"`

	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

// Validate only checks that the required fields arrived. ISBN shape and
// uniqueness belong to the store, which runs its own checks on write.
func (p *CreateBookPayload) Validate() error {
	missing := []string{}
	if p.Title == nil || *p.Title == "" {
		missing = append(missing, "title")
	}
	if p.Author == nil || *p.Author == "" {
		missing = append(missing, "author")
	}
	if p.Summary == nil || *p.Summary == "" {
		missing = append(missing, "summary")
	}
	if p.PublishYear == nil {
		missing = append(missing, "publishYear")
	}
	if len(missing) > 0 {
		return errcodes.MissingFields(missing)
	}
	return nil
}

type UpdateBookPayload struct {
	Title       *string `json:"title" form:"title" mod:"trim"`
	Author      *string `json:"author" form:"author" mod:"trim"`
	Summary     *string `json:"summary" form:"summary" mod:"trim"`
	PublishYear *int    `json:"publishYear" form:"publishYear"`
	ISBN        *string `json:"isbn" form:"isbn"`
	ImageURL    *string `json:"imageUrl" form:"imageUrl"`

	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

func (p *UpdateBookPayload) Validate() error {
	if p.Title == nil &&
		p.Author == nil &&
		p.Summary == nil &&
		p.PublishYear == nil &&
		p.ISBN == nil &&
		p.ImageURL == nil &&
		p.FormFiles["image"] == nil {
		return errcodes.ValidationError("Provide at least one field to update.")
	}
	return nil
}
