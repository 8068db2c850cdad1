package cache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) (*TTL, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestTTL_GetSetExpiry(t *testing.T) {
	c, now := newTestCache(5 * time.Minute)

	c.Set("courses:/api/courses", "list", 0)
	v, ok := c.Get("courses:/api/courses")
	require.True(t, ok)
	assert.Equal(t, "list", v)

	*now = now.Add(4*time.Minute + 59*time.Second)
	_, ok = c.Get("courses:/api/courses")
	assert.True(t, ok)

	*now = now.Add(time.Second)
	_, ok = c.Get("courses:/api/courses")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestTTL_PerEntryTTL(t *testing.T) {
	c, now := newTestCache(time.Hour)

	c.Set("short", 1, time.Second)
	*now = now.Add(2 * time.Second)

	_, ok := c.Get("short")
	assert.False(t, ok)
}

func TestTTL_InvalidatePrefix(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set("courses:/api/courses", 1, 0)
	c.Set("courses:/api/courses/abc", 2, 0)
	c.Set("reviews:/api/reviews/course/abc", 3, 0)

	assert.Equal(t, 2, c.Invalidate("courses:"))
	_, ok := c.Get("courses:/api/courses/abc")
	assert.False(t, ok)
	_, ok = c.Get("reviews:/api/reviews/course/abc")
	assert.True(t, ok)

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestMiddleware_HitMissAndSkip(t *testing.T) {
	c := New(time.Minute)
	calls := 0
	status := http.StatusOK

	h := c.Middleware("courses")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"n":1}`))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	assert.Equal(t, "MISS", rec.Header().Get(HeaderCache))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	assert.Equal(t, "HIT", rec.Header().Get(HeaderCache))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
	assert.Equal(t, 1, calls)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/courses", nil))
	assert.Empty(t, rec.Header().Get(HeaderCache))
	assert.Equal(t, 2, calls)

	status = http.StatusNotFound
	for range 2 {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/missing", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get(HeaderCache))
	}
	assert.Equal(t, 4, calls)
}

func TestTTL_SetIfGeneration(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	gen := c.Generation()
	assert.True(t, c.SetIfGeneration(gen, "courses:/api/courses", 1, 0))

	gen = c.Generation()
	c.Invalidate("courses:")
	assert.False(t, c.SetIfGeneration(gen, "courses:/api/courses", 2, 0))
	_, ok := c.Get("courses:/api/courses")
	assert.False(t, ok)

	gen = c.Generation()
	c.Clear()
	assert.False(t, c.SetIfGeneration(gen, "courses:/api/courses", 3, 0))
}

func TestMiddleware_InvalidateDuringMissIsNotCached(t *testing.T) {
	c := New(5 * time.Minute)

	var version atomic.Int64
	version.Store(1)
	started := make(chan struct{})
	release := make(chan struct{})
	var block atomic.Bool
	block.Store(true)

	h := c.Middleware("courses")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := fmt.Sprint(version.Load())
		if block.Load() {
			close(started)
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
		done <- rec
	}()

	<-started
	block.Store(false)
	version.Store(2)
	c.Invalidate("courses:")
	close(release)

	inflight := <-done
	assert.Equal(t, "1", inflight.Body.String())
	assert.Equal(t, "MISS", inflight.Header().Get(HeaderCache))

	next := httptest.NewRecorder()
	h.ServeHTTP(next, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	assert.Equal(t, "2", next.Body.String())
	assert.Equal(t, "MISS", next.Header().Get(HeaderCache))

	again := httptest.NewRecorder()
	h.ServeHTTP(again, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	assert.Equal(t, "2", again.Body.String())
	assert.Equal(t, "HIT", again.Header().Get(HeaderCache))
}
