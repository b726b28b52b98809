// Package sms sends text messages through the Twilio REST API.
package sms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://api.twilio.com"

// ErrMissingInput is returned when the recipient or message body is empty.
var ErrMissingInput = errors.New("to and message are required")

type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the Twilio API base URL, used in tests.
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

func NewClient(accountSID, authToken, fromNumber string, opts ...Option) *Client {
	c := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if Twilio credentials are set.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.authToken != "" && c.fromNumber != ""
}

// NormalizePhone converts a phone-like string to E.164: all non-digits are
// stripped, then a "+" is prefixed when the digits already start with the
// country code "1", and "+1" otherwise. North-American numbers only; any
// other country code comes out wrong. Known limitation carried from the
// product's launch market.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if strings.HasPrefix(d, "1") {
		return "+" + d
	}
	return "+1" + d
}

// Send delivers one SMS and returns the provider's raw response body.
// Exactly one outbound request per call; failures are returned, never
// retried. Delivery is best effort end to end.
func (c *Client) Send(ctx context.Context, to, message string) ([]byte, error) {
	if to == "" || message == "" {
		return nil, ErrMissingInput
	}
	if !c.Configured() {
		return nil, fmt.Errorf("sms client not configured: missing credentials")
	}

	form := url.Values{}
	form.Set("To", NormalizePhone(to))
	form.Set("From", c.fromNumber)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return body, fmt.Errorf("twilio API error: status %d", resp.StatusCode)
	}
	return body, nil
}
