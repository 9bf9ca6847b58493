package rendering

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	h "maragu.dev/gomponents/html"
)

func TestRenderComponent(t *testing.T) {
	r := NewUniversalRenderer()

	t.Run("gomponents node", func(t *testing.T) {
		b, err := r.RenderComponent(context.Background(), h.P(h.Class("lead"), h.Span()))
		require.NoError(t, err)
		assert.Equal(t, `<p class="lead"><span></span></p>`, string(b))
	})

	t.Run("templ component", func(t *testing.T) {
		comp := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<b>زينة</b>")
			return err
		})
		b, err := r.RenderComponent(context.Background(), comp)
		require.NoError(t, err)
		assert.Equal(t, "<b>زينة</b>", string(b))
	})

	t.Run("nil renders nothing", func(t *testing.T) {
		b, err := r.RenderComponent(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, b)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := r.RenderComponent(context.Background(), 42)
		assert.ErrorContains(t, err, "unsupported component type: int")
	})
}

func TestRenderPage(t *testing.T) {
	r := NewUniversalRenderer()
	e := echo.New()
	e.Renderer = r

	t.Run("writes html", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, c.Render(http.StatusCreated, "", h.Div(h.ID("x"))))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, echo.MIMETextHTMLCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, `<div id="x"></div>`, rec.Body.String())
	})

	t.Run("failed render leaves the response untouched", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		boom := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, _ = io.WriteString(w, "<div>half")
			return errors.New("boom")
		})
		err := r.RenderPage(c, http.StatusOK, boom)
		require.Error(t, err)
		assert.False(t, c.Response().Committed)
		assert.Empty(t, rec.Body.String())
	})
}
