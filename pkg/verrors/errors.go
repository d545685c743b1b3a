package verrors

import (
	"errors"
	"fmt"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
)

var (
	ErrInvalid            = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrStopped            = errors.New("stopped")
	ErrAlreadyDeployed    = errors.New("storage node already deployed")
	ErrWorkflowInProgress = errors.New("cluster workflow in progress")
)

// Sentinels of the error taxonomy. Each typed error below matches exactly
// one of them with errors.Is.
var (
	ErrPreconditionViolation   = errors.New("precondition violation")
	ErrRemoteOperationFailed   = errors.New("remote operation failed")
	ErrRemoteOperationCanceled = errors.New("remote operation canceled")
	ErrSchemaUpdate            = errors.New("schema update failure")
	ErrConfiguration           = errors.New("configuration error")
)

// PreconditionError is fatal and must never be retried.
type PreconditionError struct {
	Reason string
}

func NewPreconditionError(format string, args ...any) *PreconditionError {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

func (e *PreconditionError) Error() string {
	return "precondition violation: " + e.Reason
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionViolation
}

// ConfigurationError reports missing or inconsistent cluster metadata that
// needs an operator to review the seed or topology configuration.
type ConfigurationError struct {
	Reason string
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason + ", please review the storage node seeds and cluster topology configuration"
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// RemoteOperationError is reported when a remote operation ends in either
// FAILURE or CANCELED.
type RemoteOperationError struct {
	Operation meta.OperationRef
	Status    types.OperationStatus
	Message   string
}

func (e *RemoteOperationError) Error() string {
	verb := "failed"
	if e.Status == types.StatusCanceled {
		verb = "canceled"
	}
	msg := fmt.Sprintf("%s operation [%s] on %s", verb, e.Operation.Kind, e.Operation.Target)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *RemoteOperationError) Is(target error) bool {
	if e.Status == types.StatusCanceled {
		return target == ErrRemoteOperationCanceled
	}
	return target == ErrRemoteOperationFailed
}

// SchemaUpdateError wraps the failure of a schema statement. It blocks
// further membership changes until an operator resolves it.
type SchemaUpdateError struct {
	Statement string
	Err       error
}

func (e *SchemaUpdateError) Error() string {
	return fmt.Sprintf("schema update failure: %q: %v", e.Statement, e.Err)
}

func (e *SchemaUpdateError) Unwrap() error { return e.Err }

func (e *SchemaUpdateError) Is(target error) bool {
	return target == ErrSchemaUpdate
}
