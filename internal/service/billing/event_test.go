package billing

import (
	"errors"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    string
		want       Event
		wantObject string
	}{
		{
			name:       "full envelope",
			payload:    `{"id":"evt_1","type":"invoice.paid","created":1700000000,"livemode":true,"data":{"object":{"id":"in_1","object":"invoice","customer":"cus_1"}}}`,
			want:       Event{ID: "evt_1", Type: "invoice.paid", ObjectID: "in_1", ObjectKind: "invoice", Livemode: true, Created: time.Unix(1_700_000_000, 0)},
			wantObject: `{"id":"in_1","object":"invoice","customer":"cus_1"}`,
		},
		{
			name:       "missing type",
			payload:    `{"data":{"object":{"id":"in_1"}}}`,
			want:       Event{ObjectID: "in_1"},
			wantObject: `{"id":"in_1"}`,
		},
		{
			name:       "non-string type",
			payload:    `{"type":42,"data":{"object":{"id":"in_1"}}}`,
			want:       Event{ObjectID: "in_1"},
			wantObject: `{"id":"in_1"}`,
		},
		{
			name:       "missing data",
			payload:    `{"type":"invoice.paid"}`,
			want:       Event{Type: "invoice.paid"},
			wantObject: `{}`,
		},
		{
			name:       "missing object",
			payload:    `{"type":"invoice.paid","data":{}}`,
			want:       Event{Type: "invoice.paid"},
			wantObject: `{}`,
		},
		{
			name:       "object is not an object",
			payload:    `{"type":"invoice.paid","data":{"object":"in_1"}}`,
			want:       Event{Type: "invoice.paid"},
			wantObject: `{}`,
		},
		{
			name:       "object without id",
			payload:    `{"type":"product.created","data":{"object":{"name":"x"}}}`,
			want:       Event{Type: "product.created"},
			wantObject: `{"name":"x"}`,
		},
		{
			name:       "non-bool livemode",
			payload:    `{"type":"invoice.paid","livemode":"yes"}`,
			want:       Event{Type: "invoice.paid"},
			wantObject: `{}`,
		},
		{
			name:       "numeric livemode",
			payload:    `{"type":"invoice.paid","livemode":1,"created":"1700000000"}`,
			want:       Event{Type: "invoice.paid"},
			wantObject: `{}`,
		},
		{
			name:       "empty object",
			payload:    `{}`,
			want:       Event{},
			wantObject: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseEnvelope([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseEnvelope() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(Event{}, "Object")); diff != "" {
				t.Errorf("ParseEnvelope() mismatch (-want +got):\n%s", diff)
			}

			var wantObj, gotObj map[string]any
			if err := go_json.Unmarshal([]byte(tt.wantObject), &wantObj); err != nil {
				t.Fatalf("bad test object: %v", err)
			}
			if err := go_json.Unmarshal(got.Object, &gotObj); err != nil {
				t.Fatalf("Object is not JSON: %v", err)
			}
			if diff := cmp.Diff(wantObj, gotObj); diff != "" {
				t.Errorf("Object mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseEnvelope_Malformed(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`not json`, `[1,2]`, `"invoice.paid"`, `null`, `{"type":`} {
		if _, err := ParseEnvelope([]byte(payload)); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("ParseEnvelope(%q) error = %v, want %v", payload, err, ErrMalformedPayload)
		}
	}
}
