package core

// errors.go defines the error taxonomy for the valuation core and maps
// technical errors to user-friendly messages with support codes.
//
// Error codes:
//
//	DATA001 - Dataset empty: no usable records after aggregation (fatal at startup)
//	VEH001  - Unknown vehicle: no reference data for the requested make/model
//	VAL001  - Invalid request: a request field is missing or malformed
//	GEN001  - Unexpected error: anything not covered above

import (
	"errors"
	"fmt"
)

// ErrDatasetEmpty is returned by BuildReferenceTable when zero usable records
// result from aggregation. The caller must refuse to serve requests.
var ErrDatasetEmpty = errors.New("dataset contains no usable records")

// UnknownVehicleError is returned by the engine when no reference record
// matches the requested make/model. Recoverable per request; the transport
// layer maps it to a 404.
type UnknownVehicleError struct {
	Make  string
	Model string
}

func (e *UnknownVehicleError) Error() string {
	return fmt.Sprintf("no reference data for vehicle %q %q", e.Make, e.Model)
}

// InvalidRequestError reports a malformed or missing request field.
// Validation happens before the engine runs; the transport layer maps it
// to a 400.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request field %s: %s", e.Field, e.Reason)
}

// UserMessage is a user-friendly error with an action suggestion and a
// support code users can quote for diagnosis.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

// MapError converts any error to a sanitized user-facing message.
// Technical details stay server-side; handlers log the original error.
func MapError(err error) UserMessage {
	var unknown *UnknownVehicleError
	var invalid *InvalidRequestError

	switch {
	case errors.Is(err, ErrDatasetEmpty):
		return UserMessage{
			Message: "No vehicle reference data is loaded",
			Action:  "Check the dataset file and reload",
			Code:    "DATA001",
		}
	case errors.As(err, &unknown):
		return UserMessage{
			Message: fmt.Sprintf("No data available for %s %s", unknown.Make, unknown.Model),
			Action:  "Pick a make and model from the suggestion lists",
			Code:    "VEH001",
		}
	case errors.As(err, &invalid):
		return UserMessage{
			Message: fmt.Sprintf("Invalid value for %s: %s", invalid.Field, invalid.Reason),
			Action:  "Correct the highlighted field and retry",
			Code:    "VAL001",
		}
	default:
		return UserMessage{
			Message: "An unexpected error occurred",
			Action:  "Please try again",
			Code:    "GEN001",
		}
	}
}
