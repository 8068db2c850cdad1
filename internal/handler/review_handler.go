package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/service"
)

type ReviewHandler struct {
	service *service.ReviewService
}

func NewReviewHandler(service *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Save answers 201 for a first review and 200 when it replaced an earlier one.
func (h *ReviewHandler) Save(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.ReviewRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	review, created, err := h.service.Save(r.Context(), identity.ID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, review)
}

func (h *ReviewHandler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListByCourse(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
