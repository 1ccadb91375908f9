package xcontext

import (
	"context"
	"testing"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, ok := GetRequestID(ctx); ok {
		t.Fatal("empty context reported a request id")
	}

	ctx = SetRequestID(ctx, "req-1")
	if got, ok := GetRequestID(ctx); !ok || got != "req-1" {
		t.Errorf("GetRequestID() = %q, %v", got, ok)
	}
	if _, ok := GetClientIP(ctx); ok {
		t.Error("request id leaked into client ip")
	}
}

func TestClientIP_EmptyIsUnset(t *testing.T) {
	t.Parallel()

	ctx := SetClientIP(context.Background(), "")
	if _, ok := GetClientIP(ctx); ok {
		t.Error("empty client ip reported as set")
	}

	ctx = SetClientIP(ctx, "203.0.113.7")
	if got, _ := GetClientIP(ctx); got != "203.0.113.7" {
		t.Errorf("GetClientIP() = %q", got)
	}
}
