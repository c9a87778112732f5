// Package whatsapp delivers appointment confirmations through a
// TextMeBot-style HTTP gateway.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/voxline/voxline/internal/logging"
)

// maxAttempts is the fixed per-send attempt budget. There is no backoff
// between attempts.
const maxAttempts = 3

// successMarker must appear in the gateway response body; the gateway can
// answer 200 and still fail.
const successMarker = "Success!"

// phonePattern accepts an optional leading + followed by 10-15 digits.
var phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

// DispatchError is returned when delivery fails after all attempts.
type DispatchError struct {
	Recipient string
	Reason    string
	Err       error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("whatsapp dispatch to %s: %s: %v", e.Recipient, e.Reason, e.Err)
	}
	return fmt.Sprintf("whatsapp dispatch to %s: %s", e.Recipient, e.Reason)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// NormalizePhone strips spaces and hyphens, validates the digit count, and
// returns the number in +<digits> form.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(raw)
	if !phonePattern.MatchString(cleaned) {
		return "", &DispatchError{Recipient: raw, Reason: "phone must be 10-15 digits with optional + prefix"}
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	return cleaned, nil
}

// EncodeMessage percent-encodes a message while keeping the WhatsApp emphasis
// markers (*bold*, _italic_) literal, which is what the gateway expects. The
// markers ride through the encoder as placeholders and are restored
// afterward. Newlines stay percent-encoded: a raw control character in the
// request URL would be rejected before it ever reached the wire.
func EncodeMessage(message string) string {
	reserved := []struct{ char, placeholder string }{
		{"*", "{{ASTERISK}}"},
		{"_", "{{UNDERSCORE}}"},
	}

	withPlaceholders := message
	for _, r := range reserved {
		withPlaceholders = strings.ReplaceAll(withPlaceholders, r.char, r.placeholder)
	}

	encoded := url.QueryEscape(withPlaceholders)

	for _, r := range reserved {
		encoded = strings.ReplaceAll(encoded, url.QueryEscape(r.placeholder), r.char)
	}
	return encoded
}

// Dispatcher sends WhatsApp messages via the configured gateway.
type Dispatcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *logging.Logger
}

// NewDispatcher creates a dispatcher for the given gateway endpoint.
func NewDispatcher(endpoint, apiKey string, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log.Sub("whatsapp"),
	}
}

// Send delivers one message to recipient. The recipient may contain spaces or
// hyphens and may omit the + prefix; it is normalized before use. Up to three
// attempts are made; the final attempt's failure is surfaced.
func (d *Dispatcher) Send(ctx context.Context, recipient, message string) error {
	if message == "" {
		return &DispatchError{Recipient: recipient, Reason: "no message provided"}
	}

	phone, err := NormalizePhone(recipient)
	if err != nil {
		return err
	}

	// The gateway wants the country code without the + prefix.
	reqURL := fmt.Sprintf("%s/send.php?recipient=%s&apikey=%s&text=%s",
		d.endpoint, phone[1:], url.QueryEscape(d.apiKey), EncodeMessage(message))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = d.attempt(ctx, reqURL)
		if lastErr == nil {
			d.log.Info().Str("recipient", phone).Int("attempt", attempt).Msg("whatsapp message sent")
			return nil
		}
		d.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("whatsapp send attempt failed")
		if ctx.Err() != nil {
			break
		}
	}

	return &DispatchError{Recipient: phone, Reason: "all attempts failed", Err: lastErr}
}

func (d *Dispatcher) attempt(ctx context.Context, reqURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !strings.Contains(string(body), successMarker) {
		return fmt.Errorf("gateway accepted request but did not confirm delivery: %s", strings.TrimSpace(string(body)))
	}
	return nil
}
