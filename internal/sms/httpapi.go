package sms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// DefaultBaseURL is the handler endpoint of the sms-activate protocol.
const DefaultBaseURL = "https://api.sms-activate.org/stubs/handler_api.php"

// knownFaults maps bare error replies to readable messages.
var knownFaults = map[string]string{
	"NO_NUMBERS":          "No numbers available",
	"NO_BALANCE":          "Insufficient balance",
	"BAD_KEY":             "Invalid API key",
	"BAD_ACTION":          "Invalid action",
	"BAD_SERVICE":         "Invalid service name",
	"BAD_STATUS":          "Invalid status",
	"ERROR_SQL":           "Service database error",
	"NO_ACTIVATION":       "Activation not found",
	"EARLY_CANCEL_DENIED": "Activation cannot be canceled yet",
	"BANNED":              "Account is temporarily banned",
	"WRONG_MAX_PRICE":     "Price is below the minimum",
}

// HTTPAPI implements API over the handler_api.php protocol.
type HTTPAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// HTTPOption configures an HTTPAPI.
type HTTPOption func(*HTTPAPI)

// WithBaseURL overrides the service endpoint.
func WithBaseURL(baseURL string) HTTPOption {
	return func(a *HTTPAPI) {
		if baseURL != "" {
			a.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(a *HTTPAPI) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// NewHTTPAPI creates an HTTP backend authenticated with apiKey.
func NewHTTPAPI(apiKey string, opts ...HTTPOption) (*HTTPAPI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key is empty")
	}
	a := &HTTPAPI{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// GetCountries fetches the country catalog, preserving document order.
func (a *HTTPAPI) GetCountries(ctx context.Context) (CountriesReply, error) {
	body, err := a.call(ctx, "getCountries", nil)
	if err != nil {
		return CountriesReply{}, err
	}
	if fault := parseFault(body); fault != nil {
		return CountriesReply{Fault: fault}, nil
	}

	var names []string
	err = jsonparser.ObjectEach(body, func(_ []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Object {
			return nil
		}
		name, err := jsonparser.GetString(value, "eng")
		if err != nil {
			return fmt.Errorf("country entry without eng name: %w", err)
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return CountriesReply{}, fmt.Errorf("failed to parse countries: %w", err)
	}
	return CountriesReply{Names: names}, nil
}

// GetNumber requests a number. Success is "ACCESS_NUMBER:<id>:<phone>".
func (a *HTTPAPI) GetNumber(ctx context.Context, req NumberRequest) (NumberReply, error) {
	params := url.Values{}
	params.Set("service", req.Service)
	params.Set("country", strconv.Itoa(req.CountryID))
	params.Set("verification", strconv.FormatBool(req.Verification))

	body, err := a.call(ctx, "getNumber", params)
	if err != nil {
		return NumberReply{}, err
	}
	if fault := parseFault(body); fault != nil {
		return NumberReply{Fault: fault}, nil
	}

	parts := strings.SplitN(strings.TrimSpace(string(body)), ":", 3)
	if len(parts) != 3 || parts[0] != "ACCESS_NUMBER" {
		return NumberReply{Fault: &Fault{Code: "UNEXPECTED", Message: "Unexpected reply: " + string(body)}}, nil
	}
	return NumberReply{ActivationID: parts[1], Phone: parts[2]}, nil
}

// GetStatus returns the raw status line of an activation.
func (a *HTTPAPI) GetStatus(ctx context.Context, activationID string) (StatusReply, error) {
	params := url.Values{}
	params.Set("id", activationID)
	return a.statusCall(ctx, "getStatus", params)
}

// SetStatus changes the status of an activation.
func (a *HTTPAPI) SetStatus(ctx context.Context, activationID string, status int) (StatusReply, error) {
	params := url.Values{}
	params.Set("id", activationID)
	params.Set("status", strconv.Itoa(status))
	return a.statusCall(ctx, "setStatus", params)
}

func (a *HTTPAPI) statusCall(ctx context.Context, action string, params url.Values) (StatusReply, error) {
	body, err := a.call(ctx, action, params)
	if err != nil {
		return StatusReply{}, err
	}
	if fault := parseFault(body); fault != nil {
		return StatusReply{Fault: fault}, nil
	}
	return StatusReply{Text: strings.TrimSpace(string(body))}, nil
}

func (a *HTTPAPI) call(ctx context.Context, action string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", a.apiKey)
	params.Set("action", action)

	reqURL := a.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s reply: %w", action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d: %s", action, resp.StatusCode, string(body))
	}
	return body, nil
}

// parseFault recognizes the error-shaped replies of the service: a JSON
// object carrying an "error" field or status "error", or one of the bare
// error codes.
func parseFault(body []byte) *Fault {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		errValue, errType, _, errLookup := jsonparser.Get(body, "error")
		status, _ := jsonparser.GetString(body, "status")
		hasError := errLookup == nil && errType != jsonparser.NotExist
		if !hasError && status != "error" {
			return nil
		}
		code := "error"
		if hasError && errType != jsonparser.Null && len(errValue) > 0 {
			code = string(errValue)
		}
		message, _ := jsonparser.GetString(body, "message")
		if message == "" {
			message = code
		}
		return &Fault{Code: code, Message: message}
	}

	code, detail, _ := strings.Cut(trimmed, ":")
	message, ok := knownFaults[code]
	if !ok {
		return nil
	}
	if detail != "" {
		message += ": " + strings.Trim(detail, "'")
	}
	return &Fault{Code: code, Message: message}
}
