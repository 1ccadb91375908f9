package xhttp

import (
	"fmt"
	"math"
	"net/http"
	"time"
)

const (
	XForwardedFor    = "X-Forwarded-For"
	XContentTypeOpts = "X-Content-Type-Options"
	XFrameOpts       = "X-Frame-Options"
	ContentSecurity  = "Content-Security-Policy"
	ReferrerPolicy   = "Referrer-Policy"
	XRateLimitReason = "X-RateLimit-Reason"
	XRequestID       = "X-Request-ID"
)

const (
	ContentType   = "Content-Type"
	ContentLength = "Content-Length"
	CacheControl  = "Cache-Control"
	UserAgent     = "User-Agent"
)

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	w.Header().Set(XRequestID, requestID)
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	const applicationJSON = "application/json"
	w.Header().Set(ContentType, applicationJSON)
}

func SetHeaderRetryAfter(w http.ResponseWriter, retryAfter time.Duration) {
	const retryAfterHeader = "Retry-After"
	retryAfterSeconds := int(math.Ceil(retryAfter.Seconds()))
	w.Header().Set(retryAfterHeader, fmt.Sprintf("%d", retryAfterSeconds))
}
