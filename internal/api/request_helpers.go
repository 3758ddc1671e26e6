package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/api/middleware"
	"github.com/taskraft/taskraft-api/internal/api/shared"
	"github.com/taskraft/taskraft-api/internal/domain"
)

// RespondWithMappedError maps the error to an HTTP status and safe message,
// logs the redacted detail and writes the JSON error response.
func RespondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// requireIdentity extracts the authenticated identity placed in the context
// by the auth middleware. Writes a 401 response and returns false when the
// identity is missing.
func requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, ok := middleware.GetIdentity(r)
	if !ok || identity.UserID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return domain.Identity{}, false
	}
	return identity, true
}

// parseUUIDParam parses a UUID route parameter. Writes a 400 response and
// returns false when the parameter is malformed.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
