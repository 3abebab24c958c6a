// Package errors defines coded application errors shared across the
// service surface.
package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrUnknownSupplement = &AppError{Code: "CATALOG_001", Message: "supplement not found in catalog"}
	ErrCatalogInvalid    = &AppError{Code: "CATALOG_002", Message: "catalog failed validation"}

	ErrUnknownMix = &AppError{Code: "MIX_001", Message: "mix not found"}

	ErrScoreOutOfRange = &AppError{Code: "CHECKIN_001", Message: "check-in scores must be between 1 and 5"}
	ErrEmptyCheckIn    = &AppError{Code: "CHECKIN_002", Message: "check-in must answer at least one question"}

	ErrNoWearableData      = &AppError{Code: "WEARABLE_001", Message: "no wearable data for that day"}
	ErrWearableUnavailable = &AppError{Code: "WEARABLE_002", Message: "wearable provider unavailable"}

	ErrEmptyDispense = &AppError{Code: "DISPENSE_001", Message: "dispense must contain at least one dose"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}
	ErrForbidden    = &AppError{Code: "AUTH_002", Message: "forbidden"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
