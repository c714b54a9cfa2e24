package handler

import (
	"net/http"

	"chatsphere/backend/internal/domain"
	"chatsphere/backend/internal/pkg/httputils"
)

// respondDomainError maps the domain error taxonomy onto HTTP status codes.
// Translation lives here; services never pick status codes.
func respondDomainError(w http.ResponseWriter, err error) {
	kind, ok := domain.KindOf(err)
	if !ok {
		httputils.ResponseError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch kind {
	case domain.KindNotFound:
		httputils.ResponseError(w, http.StatusNotFound, err.Error())
	case domain.KindForbidden:
		httputils.ResponseError(w, http.StatusForbidden, err.Error())
	case domain.KindInternal:
		httputils.ResponseError(w, http.StatusInternalServerError, err.Error())
	default:
		httputils.ResponseError(w, http.StatusBadRequest, err.Error())
	}
}
