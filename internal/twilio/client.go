// Package twilio is a minimal call-control client for the Twilio
// 2010-04-01 REST API: fetch, redirect (transfer), and terminate calls.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voxline/voxline/internal/logging"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// terminalStatuses are call states that cannot be updated further.
var terminalStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"busy":      true,
	"no-answer": true,
	"canceled":  true,
}

// Call is the subset of the API call resource the agent cares about.
type Call struct {
	SID       string `json:"sid"`
	From      string `json:"from"`
	To        string `json:"to"`
	Status    string `json:"status"`
	Direction string `json:"direction"`
}

// Client talks to the call-control API.
type Client struct {
	accountSID     string
	authToken      string
	transferNumber string
	baseURL        string
	httpClient     *http.Client
	log            *logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a call-control client.
func NewClient(accountSID, authToken, transferNumber string, log *logging.Logger, opts ...Option) *Client {
	c := &Client{
		accountSID:     accountSID,
		authToken:      authToken,
		transferNumber: transferNumber,
		baseURL:        defaultBaseURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		log:            log.Sub("twilio"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCall fetches the current state of a call.
func (c *Client) GetCall(ctx context.Context, callSID string) (*Call, error) {
	reqURL := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.baseURL, c.accountSID, callSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	return c.doCall(req)
}

// updateCall POSTs form fields to a call resource.
func (c *Client) updateCall(ctx context.Context, callSID string, form url.Values) (*Call, error) {
	reqURL := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.baseURL, c.accountSID, callSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	return c.doCall(req)
}

func (c *Client) doCall(req *http.Request) (*Call, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("call API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var call Call
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &call, nil
}

// TransferCall redirects an in-progress call to the configured transfer
// number. Returns a short outcome description for the conversation history.
func (c *Client) TransferCall(ctx context.Context, callSID string) (string, error) {
	if c.transferNumber == "" {
		return "", fmt.Errorf("no transfer number configured")
	}

	if _, err := c.GetCall(ctx, callSID); err != nil {
		return "", fmt.Errorf("error transferring call: %w", err)
	}

	form := url.Values{}
	form.Set("Url", "http://twimlets.com/forward?PhoneNumber="+url.QueryEscape(c.transferNumber))
	form.Set("Method", "POST")

	if _, err := c.updateCall(ctx, callSID, form); err != nil {
		return "", fmt.Errorf("error transferring call: %w", err)
	}

	c.log.Info().Str("callSid", callSID).Msg("call transferred")
	return "Call transferred.", nil
}

// EndCall terminates a call. It fetches the current status first and
// short-circuits if the call is already in a terminal state.
func (c *Client) EndCall(ctx context.Context, callSID string) (string, error) {
	call, err := c.GetCall(ctx, callSID)
	if err != nil {
		return "", fmt.Errorf("error ending call: %w", err)
	}

	if terminalStatuses[call.Status] {
		c.log.Debug().Str("callSid", callSID).Str("status", call.Status).Msg("call already ended")
		return fmt.Sprintf("Call already ended with status: %s", call.Status), nil
	}

	form := url.Values{}
	form.Set("Status", "completed")

	updated, err := c.updateCall(ctx, callSID, form)
	if err != nil {
		return "", fmt.Errorf("error ending call: %w", err)
	}

	c.log.Info().Str("callSid", callSID).Str("status", updated.Status).Msg("call ended")
	return fmt.Sprintf("Call ended successfully. Final status: %s", updated.Status), nil
}
