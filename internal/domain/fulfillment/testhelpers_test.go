package fulfillment

import (
	"github.com/shopdesk/backend/internal/domain/shared"
)

// eventTypes lists the pending event types of an order in emission order
func eventTypes(order *Order) []string {
	types := make([]string, 0, len(order.GetDomainEvents()))
	for _, evt := range order.GetDomainEvents() {
		types = append(types, evt.EventType())
	}
	return types
}

// eventsOfType filters the pending events of an order by type
func eventsOfType(order *Order, eventType string) []shared.DomainEvent {
	var matched []shared.DomainEvent
	for _, evt := range order.GetDomainEvents() {
		if evt.EventType() == eventType {
			matched = append(matched, evt)
		}
	}
	return matched
}
