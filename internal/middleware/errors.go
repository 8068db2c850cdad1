package middleware

import (
	"encoding/json"
	"net/http"

	"entrepreneurhub/internal/model"
)

// writeJSONError writes the handler error envelope from middleware.
func writeJSONError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(model.ErrorResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	})
}
