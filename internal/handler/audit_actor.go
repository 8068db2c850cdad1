package handler

import (
	"net/http"

	"entrepreneurhub/internal/middleware"
	"entrepreneurhub/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = identity.ID
	actor.Email = identity.Email
	actor.Role = identity.Role

	return actor
}

// identityFrom returns the caller attached by RequireAuth. Routes that use it
// are always mounted behind that middleware.
func identityFrom(r *http.Request) (model.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return model.Identity{}, model.ErrUnauthorized
	}
	return identity, nil
}
