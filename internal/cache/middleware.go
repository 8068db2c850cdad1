package cache

import (
	"bytes"
	"net/http"

	"entrepreneurhub/internal/metrics"
)

const HeaderCache = "X-Cache"

type cachedResponse struct {
	contentType string
	body        []byte
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Key is the cache key used for a request URI under namespace.
func Key(namespace, requestURI string) string {
	return namespace + ":" + requestURI
}

// Middleware serves GET requests from c and stores successful responses
// under Key(namespace, RequestURI). Other methods pass through untouched.
func (c *TTL) Middleware(namespace string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := Key(namespace, r.URL.RequestURI())
			if v, ok := c.Get(key); ok {
				if cached, ok := v.(cachedResponse); ok {
					metrics.CacheLookups.WithLabelValues("hit").Inc()
					w.Header().Set("Content-Type", cached.contentType)
					w.Header().Set(HeaderCache, "HIT")
					w.WriteHeader(http.StatusOK)
					_, _ = w.Write(cached.body)
					return
				}
			}

			metrics.CacheLookups.WithLabelValues("miss").Inc()
			w.Header().Set(HeaderCache, "MISS")

			gen := c.Generation()
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// A write that invalidated while the handler ran makes this body stale.
			if rec.status == http.StatusOK {
				c.SetIfGeneration(gen, key, cachedResponse{
					contentType: w.Header().Get("Content-Type"),
					body:        bytes.Clone(rec.buf.Bytes()),
				}, 0)
			}
		})
	}
}
