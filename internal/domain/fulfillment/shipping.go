package fulfillment

import (
	"time"

	"github.com/google/uuid"
)

// ShippingStatus represents the logistics-facing lifecycle of an order
type ShippingStatus string

const (
	ShippingStatusNone             ShippingStatus = "none"
	ShippingStatusPending          ShippingStatus = "pending"
	ShippingStatusInTransit        ShippingStatus = "in_transit"
	ShippingStatusDelivered        ShippingStatus = "delivered"
	ShippingStatusReceived         ShippingStatus = "received"
	ShippingStatusFailed           ShippingStatus = "failed"
	ShippingStatusNoDone           ShippingStatus = "nodone"
	ShippingStatusReturnProcessing ShippingStatus = "return_processing"
	ShippingStatusReturned         ShippingStatus = "returned"
	ShippingStatusReturnFail       ShippingStatus = "return_fail"
	ShippingStatusEvaluated        ShippingStatus = "evaluated"
)

// shippingTransitions lists the legal targets for each shipping status.
// Self-transitions are handled by CanTransitionTo and are not listed.
var shippingTransitions = map[ShippingStatus][]ShippingStatus{
	ShippingStatusNone:             {ShippingStatusPending},
	ShippingStatusPending:          {ShippingStatusInTransit, ShippingStatusNoDone},
	ShippingStatusInTransit:        {ShippingStatusDelivered, ShippingStatusFailed},
	ShippingStatusDelivered:        {ShippingStatusNoDone, ShippingStatusReceived, ShippingStatusEvaluated},
	ShippingStatusReceived:         {ShippingStatusEvaluated, ShippingStatusReturnProcessing},
	ShippingStatusFailed:           {ShippingStatusReturnProcessing},
	ShippingStatusNoDone:           {ShippingStatusReturnProcessing},
	ShippingStatusReturnProcessing: {ShippingStatusReturned, ShippingStatusReturnFail},
	ShippingStatusReturned:         {},
	ShippingStatusReturnFail:       {},
	ShippingStatusEvaluated:        {},
}

// IsValid checks if the status is a known ShippingStatus
func (s ShippingStatus) IsValid() bool {
	_, ok := shippingTransitions[s]
	return ok
}

// String returns the string representation of ShippingStatus
func (s ShippingStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ShippingStatus) CanTransitionTo(target ShippingStatus) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	for _, next := range shippingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsReturnFamily reports whether entering the status requires an admin reason
func (s ShippingStatus) IsReturnFamily() bool {
	switch s {
	case ShippingStatusReturnProcessing, ShippingStatusReturned, ShippingStatusReturnFail:
		return true
	}
	return false
}

// IsTerminal returns true for statuses with no outgoing transitions
func (s ShippingStatus) IsTerminal() bool {
	return s.IsValid() && len(shippingTransitions[s]) == 0
}

// AcceptsReturnRequests reports whether a customer may open a return in this status
func (s ShippingStatus) AcceptsReturnRequests() bool {
	switch s {
	case ShippingStatusReceived, ShippingStatusFailed, ShippingStatusNoDone:
		return true
	}
	return false
}

// shippingPath returns the shortest chain of legal transitions leading from one
// status to another, excluding the starting status.
func shippingPath(from, to ShippingStatus) ([]ShippingStatus, bool) {
	if !from.IsValid() || !to.IsValid() {
		return nil, false
	}
	if from == to {
		return []ShippingStatus{to}, true
	}
	prev := map[ShippingStatus]ShippingStatus{from: from}
	queue := []ShippingStatus{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range shippingTransitions[current] {
			if _, visited := prev[next]; visited {
				continue
			}
			prev[next] = current
			if next == to {
				path := []ShippingStatus{to}
				for step := current; step != from; step = prev[step] {
					path = append([]ShippingStatus{step}, path...)
				}
				return path, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

// Shipping is the 1:1 logistics record owned by an Order
type Shipping struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	Status        ShippingStatus
	Reason        string // customer-supplied
	ReasonAdmin   string
	TransferImage string // storage key of the proof image
	ReceivedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ShippingLog is an append-only audit record of a shipping status change
type ShippingLog struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	OldStatus ShippingStatus
	NewStatus ShippingStatus
	CreatedAt time.Time
}
