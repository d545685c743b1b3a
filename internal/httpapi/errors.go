package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/kakao/snorch/pkg/verrors"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusOf maps errors returned by the service to HTTP status codes and
// error codes.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, verrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, verrors.ErrAlreadyDeployed):
		return http.StatusConflict, "ALREADY_DEPLOYED"
	case errors.Is(err, verrors.ErrWorkflowInProgress):
		return http.StatusConflict, "WORKFLOW_IN_PROGRESS"
	case errors.Is(err, verrors.ErrStopped):
		return http.StatusServiceUnavailable, "STOPPED"
	case errors.Is(err, verrors.ErrInvalid):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, verrors.ErrPreconditionViolation):
		return http.StatusBadRequest, "PRECONDITION_VIOLATION"
	case errors.Is(err, verrors.ErrConfiguration):
		return http.StatusBadRequest, "CONFIGURATION_ERROR"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, verrors.ErrSchemaUpdate):
		return http.StatusInternalServerError, "SCHEMA_UPDATE_FAILURE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
