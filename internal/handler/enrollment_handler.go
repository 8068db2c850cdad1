package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/service"
)

type EnrollmentHandler struct {
	service *service.EnrollmentService
}

func NewEnrollmentHandler(service *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

func (h *EnrollmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.EnrollRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	enrollment, err := h.service.Enroll(r.Context(), identity.ID, payload.CourseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EnrollmentHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.ProgressRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	enrollment, err := h.service.UpdateProgress(r.Context(), identity.ID, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}
