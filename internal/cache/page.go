package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// KeyFunc derives the cache key of a request
type KeyFunc func(c echo.Context) string

type pageEntry struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageCache stores whole rendered responses. Entries live until the store's
// TTL runs out or the cache is invalidated; writes to the data never evict
// them.
type PageCache struct {
	store Store
	key   KeyFunc
}

func NewPageCache(store Store, key KeyFunc) *PageCache {
	return &PageCache{store: store, key: key}
}

// Middleware serves GET requests from the cache and stores successful
// responses of the wrapped handler
func (p *PageCache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := p.key(c)

			if raw, ok, err := p.store.Get(ctx, key); err != nil {
				log.WithError(err).WithField("key", key).Warn("page cache read failed")
			} else if ok {
				var entry pageEntry
				if err := json.Unmarshal(raw, &entry); err == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, entry.ContentType, entry.Body)
				}
			}

			res := c.Response()
			rec := &bodyRecorder{ResponseWriter: res.Writer}
			res.Writer = rec
			defer func() { res.Writer = rec.ResponseWriter }()

			res.Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if res.Status != http.StatusOK {
				return nil
			}

			raw, err := json.Marshal(pageEntry{
				ContentType: res.Header().Get(echo.HeaderContentType),
				Body:        rec.body.Bytes(),
			})
			if err == nil {
				err = p.store.Set(ctx, key, raw)
			}
			if err != nil {
				log.WithError(err).WithField("key", key).Warn("page cache write failed")
			}
			return nil
		}
	}
}

// Invalidate drops every cached page
func (p *PageCache) Invalidate(ctx context.Context) error {
	return p.store.Flush(ctx)
}

type bodyRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
