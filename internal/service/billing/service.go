package billing

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyPayload     = errors.New("empty payload")
	ErrMissingSignature = errors.New("missing signature header")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedPayload = errors.New("malformed event payload")

	// the following are indistinguishable to callers that only check ErrInvalidSignature
	ErrMalformedSignatureHeader  = fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	ErrSignatureMismatch         = fmt.Errorf("%w: no matching signature", ErrInvalidSignature)
	ErrTimestampOutsideTolerance = fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
)

const (
	MessageEmptyPayload      = "Empty payload received"
	MessageMissingSignature  = "Missing Stripe-Signature header"
	MessageInvalidSignature  = "Invalid signature: signature verification failed"
	MessageInvalidPayload    = "Invalid payload: could not decode event envelope"
	MessageSecretUnavailable = "Webhook secret unavailable"
	MessageInternalError     = "Internal error processing webhook"
)

// Outcome is the result of handling one webhook delivery.
// Success maps to 200 and failure to 400 at the HTTP layer.
type Outcome struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	CustomerID string `json:"customer_id,omitempty"`
}

// SecretProvider supplies the webhook signing secret per request.
type SecretProvider interface {
	WebhookSecret(ctx context.Context) (string, error)
}

// StaticSecret is a SecretProvider backed by a fixed value.
type StaticSecret string

var _ SecretProvider = StaticSecret("")

func (s StaticSecret) WebhookSecret(_ context.Context) (string, error) {
	if s == "" {
		return "", errors.New("webhook secret not configured")
	}
	return string(s), nil
}

type Service interface {
	// HandleWebhook verifies the signature, parses the envelope, extracts the
	// customer id and routes the event type. It never returns an error; every
	// failure is reported through Outcome.
	HandleWebhook(ctx context.Context, payload []byte, signature string) Outcome
}
