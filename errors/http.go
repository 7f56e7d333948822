package errors

import (
	goerrors "errors"
	"net/http"
)

// MapToHTTPStatus translates a service error into the status code of the REST API.
// An offline sender is reported as 422 like any other rejected post.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case goerrors.Is(err, ErrSenderOffline):
		return http.StatusUnprocessableEntity
	case goerrors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case goerrors.Is(err, ErrConflict):
		return http.StatusConflict
	case goerrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case goerrors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
