package sms

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable is returned when the country catalog cannot be fetched.
	ErrCatalogUnavailable = errors.New("country catalog unavailable")
	// ErrUnknownCountry is returned for a country name absent from the catalog.
	ErrUnknownCountry = errors.New("unknown country")
	// ErrNoNumbersAvailable is returned when the service refuses to lease a number.
	ErrNoNumbersAvailable = errors.New("no numbers available")
	// ErrStatus is returned when an activation status cannot be turned into a code.
	ErrStatus = errors.New("activation status error")
	// ErrWaitingForCode means the code has not arrived yet. Callers poll again.
	ErrWaitingForCode = fmt.Errorf("%w: waiting for code", ErrStatus)
	// ErrMalformedStatus is returned for a status reply that has no code payload.
	ErrMalformedStatus = fmt.Errorf("%w: malformed status reply", ErrStatus)
)

// ServiceError carries the message reported by the activation service.
type ServiceError struct {
	// Kind is one of the sentinel errors of this package.
	Kind error
	// Message is the service message, verbatim.
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

// IsRetryable reports whether err only means the code has not arrived yet.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrWaitingForCode)
}

func serviceError(kind error, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}
