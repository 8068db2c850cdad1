package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"entrepreneurhub/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout answers 503 with a JSON error body when next runs longer than
// timeout. Handlers get a context that is cancelled at the deadline.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.ErrorResponse{
		Success: false,
		Error:   &model.APIError{Code: "REQUEST_TIMEOUT", Message: "request timed out"},
	})

	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Handlers override this; it only survives on the timeout path.
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
