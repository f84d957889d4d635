package telemetry

import (
	"context"

	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrStatus        = attribute.Key("status")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrDecision      = attribute.Key("decision")
	AttrCurrency      = attribute.Key("currency")
	AttrAutoPromoted  = attribute.Key("auto_promoted")
)

// RefundAmountBuckets cover refunds from small accessories to large orders, in currency units
var RefundAmountBuckets = []float64{
	10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000, 2_500_000, 5_000_000, 10_000_000,
}

// FulfillmentMetrics records fulfillment counters from committed domain events.
// It subscribes to the event bus like any other handler.
type FulfillmentMetrics struct {
	shippingTransitions *Counter
	paymentTransitions  *Counter
	returnDecisions     *Counter
	stockRestored       *Counter
	refundAmount        *Histogram
}

// NewFulfillmentMetrics creates the fulfillment instruments on meter
func NewFulfillmentMetrics(meter metric.Meter) (*FulfillmentMetrics, error) {
	in := NewInstruments(meter)
	m := &FulfillmentMetrics{
		shippingTransitions: in.Counter("fulfillment.shipping.transitions", "Shipping status changes by target status", "{transition}"),
		paymentTransitions:  in.Counter("fulfillment.payment.transitions", "Payment status changes by target status", "{transition}"),
		returnDecisions:     in.Counter("fulfillment.return.decisions", "Return item and request decisions", "{decision}"),
		stockRestored:       in.Counter("fulfillment.stock.restored", "Units returned to stock by completed returns", "{unit}"),
		refundAmount: in.Histogram(HistogramOpts{
			Name:        "fulfillment.refund.amount",
			Description: "Actual refund of completed return requests",
			Unit:        "{currency}",
			Boundaries:  RefundAmountBuckets,
		}),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes returns the event types that feed the instruments
func (m *FulfillmentMetrics) EventTypes() []string {
	return []string{
		fulfillment.EventTypeShippingStatusChanged,
		fulfillment.EventTypePaymentStatusChanged,
		fulfillment.EventTypeReturnItemApproved,
		fulfillment.EventTypeReturnItemRejected,
		fulfillment.EventTypeReturnItemCompleted,
		fulfillment.EventTypeReturnRequestApproved,
		fulfillment.EventTypeReturnRequestRejected,
		fulfillment.EventTypeReturnRequestCompleted,
	}
}

// Handle records the event
func (m *FulfillmentMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *fulfillment.ShippingStatusChangedEvent:
		m.shippingTransitions.Inc(ctx, AttrStatus.String(e.NewStatus.String()))
	case *fulfillment.PaymentStatusChangedEvent:
		m.paymentTransitions.Inc(ctx,
			AttrStatus.String(e.NewStatus.String()),
			AttrPaymentMethod.String(string(e.Method)),
		)
	case *fulfillment.ReturnItemDecidedEvent:
		m.returnDecisions.Inc(ctx, AttrDecision.String("item_"+string(e.Status)))
	case *fulfillment.ReturnItemCompletedEvent:
		m.stockRestored.Add(ctx, int64(e.Quantity))
	case *fulfillment.ReturnRequestStatusChangedEvent:
		m.returnDecisions.Inc(ctx,
			AttrDecision.String("request_"+string(e.Status)),
			AttrAutoPromoted.Bool(e.AutoPromoted),
		)
		if e.Status == fulfillment.ReturnRequestStatusCompleted {
			m.refundAmount.Record(ctx, e.ActualRefund.InexactFloat64(), AttrCurrency.String(e.Currency))
		}
	}
	return nil
}

var _ shared.EventHandler = (*FulfillmentMetrics)(nil)
