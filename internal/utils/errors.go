package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	// Document lookups. ErrInvalidAccess deliberately covers both "no
	// access" and "bad token" so callers cannot probe for existence.
	ErrNotFound      = errors.New("not_found")
	ErrInvalidAccess = errors.New("invalid_access")

	// Lease / billing configuration
	ErrMissingRentProduct = errors.New("missing_rent_product")
	ErrLeaseNotActive     = errors.New("lease_not_active")

	// Maintenance request validation
	ErrUnitNotLeasedByTenant = errors.New("unit_not_leased_by_tenant")
	ErrAssigneeRequired      = errors.New("assignee_required")
	ErrInvalidTransition     = errors.New("invalid_transition")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (e.g., Twilio, SendGrid)
	ErrExternalServiceFailure = errors.New("external_service_failure")

	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
