package middleware

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/miniblog/backend/internal/cache"
)

// bodyCapture duplicates everything written to the response into a buffer
type bodyCapture struct {
	http.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// PageCacheMiddleware serves GET responses from the page cache. The cache key
// is the request URI, so every page number caches independently. A hit returns
// the stored bytes verbatim; writes elsewhere in the system do not invalidate
// entries, only expiry or PageCache.Clear does.
func PageCacheMiddleware(store cache.PageCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			key := c.Request().URL.RequestURI()
			if body, ok, err := store.Get(c.Request().Context(), key); err == nil && ok {
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, body)
			}

			capture := &bodyCapture{ResponseWriter: c.Response().Writer, body: &bytes.Buffer{}}
			c.Response().Writer = capture

			if err := next(c); err != nil {
				return err
			}

			if c.Response().Status == http.StatusOK {
				_ = store.Set(c.Request().Context(), key, capture.body.Bytes())
			}
			return nil
		}
	}
}
