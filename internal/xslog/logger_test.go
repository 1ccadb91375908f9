package xslog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLevel_UnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			var l Level
			err := l.UnmarshalText([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && slog.Level(l) != tt.want {
				t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, slog.Level(l), tt.want)
			}
		})
	}
}

func TestNewLogger_Redacts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, Options{Level: Level(slog.LevelInfo), Format: FormatJSON})

	logger.Info("received", slog.String("stripe_signature", "t=1,v1=abc"), slog.String("secret", "whsec_x"))

	out := buf.String()
	if strings.Contains(out, "whsec_x") || strings.Contains(out, "v1=abc") {
		t.Errorf("log line leaks credentials: %s", out)
	}
	if !strings.Contains(out, redacted) {
		t.Errorf("log line %s missing %s", out, redacted)
	}
}

func TestNewLogger_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, Options{Level: Level(slog.LevelWarn), Format: FormatText})

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = WithAttrs(ctx, EventType("invoice.paid"))

	FromContext(ctx).InfoContext(ctx, "tracked")

	if !strings.Contains(buf.String(), `"event_type":"invoice.paid"`) {
		t.Errorf("missing attr: %s", buf.String())
	}
}

func TestSecretHint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("config", SecretHint("whsec_abcdefgh"))

	out := buf.String()
	if strings.Contains(out, "abcdefgh") {
		t.Errorf("hint leaks secret: %s", out)
	}
}
