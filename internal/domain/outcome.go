package domain

import (
	"errors"
	"net/http"
)

// Outcome is the stable result category of a submit or fetch call.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeFound       Outcome = "found"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeConflict    Outcome = "conflict"
	OutcomeServerError Outcome = "server_error"
	OutcomeTimeout     Outcome = "timeout"
)

// OutcomeOf classifies err. A nil error maps to success, which is the
// outcome passed in (created for submit, found for fetch).
func OutcomeOf(err error, success Outcome) Outcome {
	switch {
	case err == nil:
		return success
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrAlreadyExists):
		return OutcomeConflict
	case errors.Is(err, ErrTimeout):
		return OutcomeTimeout
	default:
		return OutcomeServerError
	}
}

func (o Outcome) Message() string {
	switch o {
	case OutcomeCreated:
		return "Order successfully created"
	case OutcomeFound:
		return "Order found"
	case OutcomeNotFound:
		return "Order not found"
	case OutcomeConflict:
		return "Order already exists"
	case OutcomeTimeout:
		return "Database operation timed out"
	default:
		return "Server error"
	}
}

// HTTPStatus follows the status codes the service has always returned;
// a store timeout is reported as 408.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeCreated:
		return http.StatusCreated
	case OutcomeFound:
		return http.StatusOK
	case OutcomeNotFound:
		return http.StatusNotFound
	case OutcomeConflict:
		return http.StatusConflict
	case OutcomeTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
