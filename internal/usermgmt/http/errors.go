package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
)

// statusFor maps a service error onto a response code. Unknown errors are
// server errors and keep their message.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrFailToMeetCriteria),
		errors.Is(err, service.ErrUnknownFilterKey),
		errors.Is(err, service.ErrUnderage),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrWrongCredentials),
		errors.Is(err, service.ErrBootstrapUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrFailToRetrieveAccountInfo),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrPermissionNotFound),
		errors.Is(err, service.ErrStatusNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUsernameAlreadyExists),
		errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrRoleAlreadyExists),
		errors.Is(err, service.ErrRoleInUse),
		errors.Is(err, service.ErrStatusAlreadyExists),
		errors.Is(err, service.ErrStatusInUse),
		errors.Is(err, service.ErrBootstrapAlready):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	httpx.WriteError(w, code, err.Error())
}

type validatable interface {
	Validate() error
}

// decodeValid decodes the JSON body into v and runs its validation rules.
// On failure the 400 response has already been written.
func decodeValid(w http.ResponseWriter, r *http.Request, v validatable) bool {
	if err := httpx.DecodeJSON(r, v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return false
	}
	return valid(w, v)
}

// decodeOptional is decodeValid for bodies that may be omitted.
func decodeOptional(w http.ResponseWriter, r *http.Request, v validatable) bool {
	if err := httpx.DecodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return false
	}
	return valid(w, v)
}

func valid(w http.ResponseWriter, v validatable) bool {
	if err := v.Validate(); err != nil {
		httpx.WriteEnvelope(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}
