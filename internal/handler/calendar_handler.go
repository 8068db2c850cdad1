package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/service"
)

type CalendarHandler struct {
	service *service.CalendarService
}

func NewCalendarHandler(service *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	events, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.CalendarEventRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	ev, err := h.service.Create(r.Context(), identity.ID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.CalendarEventRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	ev, err := h.service.Update(r.Context(), identity.ID, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), identity.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "event deleted")
}
