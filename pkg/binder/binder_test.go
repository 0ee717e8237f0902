package binder

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" form:"hello" mod:"trim" validate:"max=9"`

	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("rejects unsupported content types", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"hello" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})

	t.Run("binds multipart values and files", func(tt *testing.T) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		require.NoError(tt, w.WriteField("hello", " world "))
		fw, err := w.CreateFormFile("image", "cover.png")
		require.NoError(tt, err)
		_, err = fw.Write([]byte("not a real png"))
		require.NoError(tt, err)
		require.NoError(tt, w.Close())

		e := echo.New()
		req := httptest.NewRequest(echo.POST, "/", body)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		c := e.NewContext(req, httptest.NewRecorder())

		b, err := New()
		require.NoError(tt, err)

		p := params{}
		require.NoError(tt, b.Bind(&p, c))
		assert.Equal(tt, "world", p.Hello)
		require.Contains(tt, p.FormFiles, "image")
		assert.Equal(tt, "cover.png", p.FormFiles["image"].Filename)
	})
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
