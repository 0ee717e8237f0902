package errcodes

import (
	"fmt"
	"net/http"
	"strings"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		"not_found",
	}
}

// InvalidID indicates a path identifier that isn't syntactically valid. It is
// distinct from NotFound so callers can tell a malformed id apart from a
// well-formed one that doesn't resolve.
func InvalidID(resource string) error {
	return &Error{
		http.StatusBadRequest,
		"Invalid " + resource + " ID format.",
		"invalid_id",
	}
}

// DuplicateISBN indicates a write that collided with the unique ISBN index.
func DuplicateISBN() error {
	return &Error{
		http.StatusBadRequest,
		"Book with this ISBN already exists.",
		"duplicate_isbn",
	}
}

// MissingFields reports every absent required field in a single error.
func MissingFields(fields []string) error {
	return ValidationError("Missing required fields: " + strings.Join(fields, ", "))
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusBadRequest,
		msg,
		"validation_error",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_type_error",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
	}
}

// UnsupportedImageType rejects uploads whose declared MIME type or file
// extension falls outside the accepted image formats.
func UnsupportedImageType() error {
	return &Error{
		http.StatusBadRequest,
		"Only images are allowed (JPEG, JPG, PNG, GIF).",
		"unsupported_image_type",
	}
}

// ImageTooLarge rejects uploads over the configured size limit.
func ImageTooLarge(limitBytes int64) error {
	return &Error{
		http.StatusBadRequest,
		fmt.Sprintf("Image exceeds the maximum size of %d bytes.", limitBytes),
		"image_too_large",
	}
}

// NoImageFile indicates a multipart request that was expected to carry an
// image part but didn't.
func NoImageFile() error {
	return &Error{
		http.StatusBadRequest,
		"No image file provided.",
		"no_image_file",
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}
