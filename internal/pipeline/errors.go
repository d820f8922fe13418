package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the registry and transition engine. Callers classify
// with errors.Is; every one of these is scoped to a single request and
// recoverable by the caller (for ErrStaleVersion, by refetching the current
// version first).
var (
	ErrWorkflowNotFound        = errors.New("workflow not found")
	ErrStageNotFound           = errors.New("stage not found")
	ErrApplicationNotFound     = errors.New("application not found")
	ErrStaleVersion            = errors.New("stale version")
	ErrWorkflowMismatch        = errors.New("stage not in application workflow")
	ErrInvalidReorder          = errors.New("invalid stage reorder")
	ErrStageHasActiveCandidates = errors.New("stage has active candidates")
	ErrInvalidMigrateTarget    = errors.New("invalid migrate target")
	ErrInvalidStageType        = errors.New("invalid stage type")
	ErrInvalidSubStatus        = errors.New("invalid substatus")
	ErrStageLocked             = errors.New("stage is terminal and locked")
	ErrWorkflowInUse           = errors.New("workflow has applications")
	ErrValidation              = errors.New("validation error")
)

// Wrap tags err with operation context while preserving the sentinel for
// errors.Is classification.
func Wrap(operation string, err error) error {
	if err == nil {
		return nil
	}
	operation = strings.TrimSpace(operation)
	if operation == "" {
		return err
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// IsConflict reports whether err should surface as an HTTP 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStaleVersion) || errors.Is(err, ErrStageHasActiveCandidates) || errors.Is(err, ErrWorkflowInUse)
}

// IsNotFound reports whether err should surface as an HTTP 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) || errors.Is(err, ErrStageNotFound) || errors.Is(err, ErrApplicationNotFound)
}

// IsInvalid reports whether err should surface as an HTTP 422.
func IsInvalid(err error) bool {
	switch {
	case errors.Is(err, ErrWorkflowMismatch),
		errors.Is(err, ErrInvalidReorder),
		errors.Is(err, ErrInvalidMigrateTarget),
		errors.Is(err, ErrInvalidStageType),
		errors.Is(err, ErrInvalidSubStatus),
		errors.Is(err, ErrStageLocked),
		errors.Is(err, ErrValidation):
		return true
	}
	return false
}

// Code returns the machine-readable identifier used in API error bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrWorkflowNotFound):
		return "workflow_not_found"
	case errors.Is(err, ErrStageNotFound):
		return "stage_not_found"
	case errors.Is(err, ErrApplicationNotFound):
		return "application_not_found"
	case errors.Is(err, ErrStaleVersion):
		return "stale_version"
	case errors.Is(err, ErrWorkflowMismatch):
		return "workflow_mismatch"
	case errors.Is(err, ErrInvalidReorder):
		return "invalid_reorder"
	case errors.Is(err, ErrStageHasActiveCandidates):
		return "stage_has_active_candidates"
	case errors.Is(err, ErrInvalidMigrateTarget):
		return "invalid_migrate_target"
	case errors.Is(err, ErrInvalidStageType):
		return "invalid_stage_type"
	case errors.Is(err, ErrInvalidSubStatus):
		return "invalid_substatus"
	case errors.Is(err, ErrStageLocked):
		return "stage_locked"
	case errors.Is(err, ErrWorkflowInUse):
		return "workflow_in_use"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
