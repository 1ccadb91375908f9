package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTolerance is the maximum allowed skew between the signed timestamp and now.
	DefaultTolerance = 5 * time.Minute

	schemeV1     = "v1"
	keyTimestamp = "t"
)

type signatureHeader struct {
	timestamp int64
	// rawTimestamp is the t value exactly as sent; it is what the sender signed.
	rawTimestamp string
	candidates   []string
}

// parseSignatureHeader parses "t=<seconds>,v1=<hex>[,v1=<hex>...]".
// Segments for other schemes are ignored.
func parseSignatureHeader(header string) (signatureHeader, error) {
	var (
		parsed       signatureHeader
		hasTimestamp bool
	)

	for segment := range strings.SplitSeq(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(segment), "=")
		if !ok {
			continue
		}

		switch key {
		case keyTimestamp:
			if hasTimestamp {
				return signatureHeader{}, fmt.Errorf("%w: duplicate timestamp", ErrMalformedSignatureHeader)
			}
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return signatureHeader{}, fmt.Errorf("%w: non-numeric timestamp", ErrMalformedSignatureHeader)
			}
			parsed.timestamp = ts
			parsed.rawTimestamp = value
			hasTimestamp = true
		case schemeV1:
			parsed.candidates = append(parsed.candidates, value)
		}
	}

	if !hasTimestamp {
		return signatureHeader{}, fmt.Errorf("%w: missing timestamp", ErrMalformedSignatureHeader)
	}
	if len(parsed.candidates) == 0 {
		return signatureHeader{}, fmt.Errorf("%w: no %s signatures", ErrMalformedSignatureHeader, schemeV1)
	}

	return parsed, nil
}

// Verify authenticates a signature header against the raw payload.
//
// The signed content is "{t}.{payload}", with t taken verbatim from the header,
// and every v1 candidate is compared in
// constant time against hex(HMAC-SHA256(secret, signed content)). On success
// the signed timestamp is returned. Every failure past the emptiness checks
// wraps ErrInvalidSignature.
func Verify(secret string, payload []byte, header string, now time.Time, tolerance time.Duration) (time.Time, error) {
	if len(payload) == 0 {
		return time.Time{}, ErrEmptyPayload
	}
	if header == "" {
		return time.Time{}, ErrMissingSignature
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	parsed, err := parseSignatureHeader(header)
	if err != nil {
		return time.Time{}, err
	}

	expected := []byte(computeSignature(secret, payload, parsed.rawTimestamp))

	matched := false
	for _, candidate := range parsed.candidates {
		if hmac.Equal(expected, []byte(candidate)) {
			matched = true
		}
	}
	if !matched {
		return time.Time{}, ErrSignatureMismatch
	}

	signedAt := time.Unix(parsed.timestamp, 0)
	if skew := now.Sub(signedAt).Abs(); skew > tolerance {
		return time.Time{}, ErrTimestampOutsideTolerance
	}

	return signedAt, nil
}

// ComputeSignature returns the lowercase hex HMAC-SHA256 of "{timestamp}.{payload}".
func ComputeSignature(secret string, payload []byte, timestamp int64) string {
	return computeSignature(secret, payload, strconv.FormatInt(timestamp, 10))
}

func computeSignature(secret string, payload []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader formats a Stripe-Signature header value.
func SignatureHeader(timestamp int64, signatures ...string) string {
	var b strings.Builder
	b.WriteString(keyTimestamp + "=" + strconv.FormatInt(timestamp, 10))
	for _, sig := range signatures {
		b.WriteString("," + schemeV1 + "=" + sig)
	}
	return b.String()
}

// Sign returns a complete header for payload signed with secret at t.
func Sign(secret string, payload []byte, t time.Time) string {
	return SignatureHeader(t.Unix(), ComputeSignature(secret, payload, t.Unix()))
}
