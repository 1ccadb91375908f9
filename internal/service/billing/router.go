package billing

const (
	EventInvoicePaid                      = "invoice.paid"
	EventInvoicePaymentFailed             = "invoice.payment_failed"
	EventInvoiceFinalized                 = "invoice.finalized"
	EventCustomerSubscriptionDeleted      = "customer.subscription.deleted"
	EventCustomerSubscriptionTrialWillEnd = "customer.subscription.trial_will_end"
)

var handledEvents = map[string]struct{}{
	EventInvoicePaid:                      {},
	EventInvoicePaymentFailed:             {},
	EventInvoiceFinalized:                 {},
	EventCustomerSubscriptionDeleted:      {},
	EventCustomerSubscriptionTrialWillEnd: {},
}

// Route is the routing decision for one event type.
type Route struct {
	Handled bool
	Message string
}

// RouteEvent maps an event type to its outcome message. Unknown types are
// acknowledged rather than rejected so the provider does not redeliver them.
func RouteEvent(eventType, objectID string) Route {
	if _, ok := handledEvents[eventType]; ok {
		return Route{Handled: true, Message: eventType + ": " + objectID}
	}
	return Route{Handled: false, Message: "Unhandled: " + eventType}
}

// IsHandled reports whether eventType has a registered handler.
func IsHandled(eventType string) bool {
	_, ok := handledEvents[eventType]
	return ok
}
