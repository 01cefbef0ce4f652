package sms

import "context"

// ServiceTelegram is the service code requested for every number.
const ServiceTelegram = "tg"

// Fault is the error-shaped reply of the activation service.
type Fault struct {
	Code    string
	Message string
}

// NumberRequest describes a getNumber call.
type NumberRequest struct {
	Service      string
	CountryID    int
	Verification bool
}

// CountriesReply is the reply to getCountries.
type CountriesReply struct {
	Fault *Fault
	// Names holds the English country names in catalog order.
	Names []string
}

// NumberReply is the reply to getNumber.
type NumberReply struct {
	Fault        *Fault
	ActivationID string
	Phone        string
}

// StatusReply is the reply to getStatus and setStatus.
type StatusReply struct {
	Fault *Fault
	// Text is the raw status line, e.g. "STATUS_OK:123456".
	Text string
}

// API is the activation service backend. A returned error is a transport
// failure; service-level failures come back as a Fault in the reply.
type API interface {
	GetCountries(ctx context.Context) (CountriesReply, error)
	GetNumber(ctx context.Context, req NumberRequest) (NumberReply, error)
	GetStatus(ctx context.Context, activationID string) (StatusReply, error)
	SetStatus(ctx context.Context, activationID string, status int) (StatusReply, error)
}
