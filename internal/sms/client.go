// Package sms wraps the SMS-activation service used to lease disposable
// numbers and read verification codes.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lazyvibe/tgauto/internal/model"
)

const waitingMessage = "Waiting for status"

// Client is a session over the activation service. The country catalog is
// fetched once by New and never refreshed.
//
// A Client is not safe for concurrent use; one automation task owns it at a time.
type Client struct {
	api       API
	logger    *slog.Logger
	countries []model.Country
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for fire-and-forget failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client and eagerly loads the country catalog.
func New(ctx context.Context, api API, opts ...Option) (*Client, error) {
	if api == nil {
		return nil, errors.New("sms api is nil")
	}
	c := &Client{
		api:    api,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	reply, err := api.GetCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	if reply.Fault != nil {
		return nil, serviceError(ErrCatalogUnavailable, reply.Fault.Message)
	}

	c.countries = make([]model.Country, 0, len(reply.Names))
	for i, name := range reply.Names {
		c.countries = append(c.countries, model.Country{ID: i, Name: name})
	}
	return c, nil
}

// NewHTTP creates a client backed by the HTTP API for the given key.
func NewHTTP(ctx context.Context, apiKey string, httpOpts []HTTPOption, opts ...Option) (*Client, error) {
	api, err := NewHTTPAPI(apiKey, httpOpts...)
	if err != nil {
		return nil, err
	}
	return New(ctx, api, opts...)
}

// Countries returns the catalog names in order.
func (c *Client) Countries() []string {
	names := make([]string, len(c.countries))
	for i, country := range c.countries {
		names[i] = country.Name
	}
	return names
}

// Lookup returns the first catalog entry with the given name.
func (c *Client) Lookup(name string) (model.Country, bool) {
	for _, country := range c.countries {
		if country.Name == name {
			return country, true
		}
	}
	return model.Country{}, false
}

// AcquireNumber leases a number for the named country.
func (c *Client) AcquireNumber(ctx context.Context, countryName string, verification bool) (model.PhoneNumber, error) {
	country, ok := c.Lookup(countryName)
	if !ok {
		return model.PhoneNumber{}, fmt.Errorf("%w: %q", ErrUnknownCountry, countryName)
	}

	reply, err := c.api.GetNumber(ctx, NumberRequest{
		Service:      ServiceTelegram,
		CountryID:    country.ID,
		Verification: verification,
	})
	if err != nil {
		return model.PhoneNumber{}, fmt.Errorf("%w: %w", ErrNoNumbersAvailable, err)
	}
	if reply.Fault != nil {
		return model.PhoneNumber{}, serviceError(ErrNoNumbersAvailable, reply.Fault.Message)
	}

	return model.PhoneNumber{
		ActivationID: reply.ActivationID,
		Number:       reply.Phone,
	}, nil
}

// AcquireNumberDefault leases a number with verification enabled.
func (c *Client) AcquireNumberDefault(ctx context.Context, countryName string) (model.PhoneNumber, error) {
	return c.AcquireNumber(ctx, countryName, true)
}

// PollStatus reads the activation status once and returns the received code.
// ErrWaitingForCode is returned while no code has arrived.
func (c *Client) PollStatus(ctx context.Context, activationID string) (string, error) {
	reply, err := c.api.GetStatus(ctx, activationID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStatus, err)
	}
	if reply.Fault != nil {
		return "", serviceError(ErrStatus, reply.Fault.Message)
	}
	return parseStatus(reply.Text)
}

// Finalize reports the outcome of an activation. Failures are logged only.
func (c *Client) Finalize(ctx context.Context, activationID string, outcome model.Outcome) {
	reply, err := c.api.SetStatus(ctx, activationID, outcome.StatusCode())
	if err != nil {
		c.logger.Warn("finalize activation", "activation_id", activationID, "outcome", outcome.String(), "err", err)
		return
	}
	if reply.Fault != nil {
		c.logger.Warn("finalize activation rejected", "activation_id", activationID, "outcome", outcome.String(), "code", reply.Fault.Code, "message", reply.Fault.Message)
		return
	}
	c.logger.Debug("activation finalized", "activation_id", activationID, "outcome", outcome.String(), "reply", reply.Text)
}

// parseStatus turns "<STATUS>:<payload>" into the payload.
func parseStatus(text string) (string, error) {
	if strings.Contains(strings.ToUpper(text), "WAIT_CODE") {
		return "", serviceError(ErrWaitingForCode, waitingMessage)
	}
	_, payload, ok := strings.Cut(text, ":")
	if !ok || strings.TrimSpace(payload) == "" {
		return "", serviceError(ErrMalformedStatus, fmt.Sprintf("unexpected status reply %q", text))
	}
	return payload, nil
}

// StatusOf classifies the result of PollStatus.
func StatusOf(code string, err error) model.ActivationStatus {
	switch {
	case err == nil:
		return model.ActivationStatus{Kind: model.StatusCodeReceived, Code: code}
	case IsRetryable(err):
		return model.ActivationStatus{Kind: model.StatusPendingCode, Message: err.Error()}
	default:
		return model.ActivationStatus{Kind: model.StatusError, Message: err.Error()}
	}
}
