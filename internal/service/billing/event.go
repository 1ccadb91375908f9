package billing

import (
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
)

var emptyObject = go_json.RawMessage(`{}`)

// Event is the minimal view of a verified webhook payload.
type Event struct {
	ID         string
	Type       string
	ObjectID   string
	ObjectKind string
	CustomerID string
	Livemode   bool
	Created    time.Time
	Object     go_json.RawMessage
}

// ParseEnvelope decodes a verified payload into an Event. A missing type or
// data.object is not an error; only a payload that is not a JSON object is.
// CustomerID is left empty for ExtractCustomerID to fill.
func ParseEnvelope(payload []byte) (Event, error) {
	root, ok := decodeObject(payload)
	if !ok {
		return Event{}, fmt.Errorf("%w: top-level value is not an object", ErrMalformedPayload)
	}

	event := Event{
		ID:     root.str("id"),
		Type:   root.str("type"),
		Object: emptyObject,
	}

	if raw, ok := root["livemode"]; ok {
		var livemode bool
		if err := go_json.Unmarshal(raw, &livemode); err == nil {
			event.Livemode = livemode
		}
	}
	if raw, ok := root["created"]; ok {
		var created int64
		if err := go_json.Unmarshal(raw, &created); err == nil && created > 0 {
			event.Created = time.Unix(created, 0)
		}
	}

	data, ok := root.object("data")
	if !ok {
		return event, nil
	}
	object, ok := data.object("object")
	if !ok {
		return event, nil
	}

	event.Object = data["object"]
	event.ObjectID = object.str("id")
	event.ObjectKind = object.str("object")

	return event, nil
}
