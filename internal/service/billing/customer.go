package billing

import (
	go_json "github.com/goccy/go-json"
)

// ExtractCustomerID returns the customer reference of a provider object.
// The reference is either a bare id string or an expanded customer object.
func ExtractCustomerID(object go_json.RawMessage) string {
	obj, ok := decodeObject(object)
	if !ok {
		return ""
	}
	return obj.expandableID("customer")
}

// References are the cross-referenced ids that can be read off an event object.
type References struct {
	CustomerID      string
	SubscriptionID  string
	InvoiceID       string
	PaymentIntentID string
	PriceID         string
}

// ExtractReferences collects every id the object carries or points at. The
// object's own id fills the slot matching its "object" kind.
func ExtractReferences(object go_json.RawMessage) References {
	obj, ok := decodeObject(object)
	if !ok {
		return References{}
	}

	refs := References{
		CustomerID:      obj.expandableID("customer"),
		SubscriptionID:  obj.expandableID("subscription"),
		InvoiceID:       obj.expandableID("invoice"),
		PaymentIntentID: obj.expandableID("payment_intent"),
		PriceID:         priceID(obj),
	}

	id := obj.str("id")
	switch obj.str("object") {
	case "customer":
		refs.CustomerID = id
	case "subscription":
		refs.SubscriptionID = id
	case "invoice":
		refs.InvoiceID = id
	case "payment_intent":
		refs.PaymentIntentID = id
	case "price":
		refs.PriceID = id
	}

	return refs
}

// priceID looks at price or plan on the object itself, then at the first
// subscription item or invoice line.
func priceID(obj jsonObject) string {
	if id := obj.expandableID("price"); id != "" {
		return id
	}
	if id := obj.expandableID("plan"); id != "" {
		return id
	}
	for _, list := range []string{"items", "lines"} {
		container, ok := obj.object(list)
		if !ok {
			continue
		}
		var entries []go_json.RawMessage
		if err := go_json.Unmarshal(container["data"], &entries); err != nil || len(entries) == 0 {
			continue
		}
		first, ok := decodeObject(entries[0])
		if !ok {
			continue
		}
		if id := priceID(first); id != "" {
			return id
		}
		// invoice lines nest the price under pricing.price_details
		if pricing, ok := first.object("pricing"); ok {
			if details, ok := pricing.object("price_details"); ok {
				if id := details.expandableID("price"); id != "" {
					return id
				}
			}
		}
	}
	return ""
}
