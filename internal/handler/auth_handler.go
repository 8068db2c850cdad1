package handler

import (
	"net/http"
	"time"

	"entrepreneurhub/internal/middleware"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/service"
)

// CookieSettings controls the attributes of the session cookie.
type CookieSettings struct {
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

type AuthHandler struct {
	service *service.AuthService
	cookie  CookieSettings
}

func NewAuthHandler(service *service.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.service.Register(r.Context(), payload, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), payload, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// Logout always succeeds. It expires the cookie; the token itself stays valid
// until its exp for clients that kept a copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), actorFromRequest(r))

	cookie := h.baseCookie()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)

	writeMessage(w, http.StatusOK, "logged out")
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	cookie := h.baseCookie()
	cookie.Value = token
	cookie.MaxAge = int(h.cookie.MaxAge.Seconds())
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) baseCookie() *http.Cookie {
	sameSite := h.cookie.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}

	return &http.Cookie{
		Name:     middleware.CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure || sameSite == http.SameSiteNoneMode,
		SameSite: sameSite,
	}
}
