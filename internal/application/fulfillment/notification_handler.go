package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Notification is a rendered customer-facing message
type Notification struct {
	EventID   uuid.UUID
	EventType string
	OrderID   uuid.UUID
	Recipient fulfillment.CustomerContact
	Subject   string
	Body      string
}

// NotificationSink delivers notifications over one channel
type NotificationSink interface {
	// Name identifies the channel in logs
	Name() string
	// Send delivers the notification. Sinks skip recipients they cannot reach.
	Send(ctx context.Context, n Notification) error
}

// NotificationHandler renders customer-facing fulfillment events and fans them out
// to the configured sinks. It runs after commit; a failing sink never affects the
// committed operation.
type NotificationHandler struct {
	sinks    []NotificationSink
	printer  *message.Printer
	currency valueobject.Currency
	logger   *zap.Logger
}

// NewNotificationHandler creates a handler formatting amounts for locale
func NewNotificationHandler(locale string, currency valueobject.Currency, logger *zap.Logger, sinks ...NotificationSink) *NotificationHandler {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Vietnamese
	}
	if !currency.IsValid() {
		currency = valueobject.DefaultCurrency
	}
	return &NotificationHandler{
		sinks:    sinks,
		printer:  message.NewPrinter(tag),
		currency: currency,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		fulfillment.EventTypeShippingStatusChanged,
		fulfillment.EventTypePaymentStatusChanged,
		fulfillment.EventTypeReturnItemApproved,
		fulfillment.EventTypeReturnItemRejected,
		fulfillment.EventTypeReturnRequestApproved,
		fulfillment.EventTypeReturnRequestRejected,
		fulfillment.EventTypeReturnRequestCompleted,
	}
}

// Handle renders the event and sends it to every sink.
// Sink errors are logged and joined into the returned error.
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	n, ok := h.Render(event)
	if !ok {
		return nil
	}

	var errs []error
	for _, sink := range h.sinks {
		if err := sink.Send(ctx, n); err != nil {
			h.logger.Warn("notification delivery failed",
				zap.String("sink", sink.Name()),
				zap.String("event_type", n.EventType),
				zap.String("order_id", n.OrderID.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Render builds the notification for a supported event
func (h *NotificationHandler) Render(event shared.DomainEvent) (Notification, bool) {
	n := Notification{EventID: event.EventID(), EventType: event.EventType()}

	switch e := event.(type) {
	case *fulfillment.ShippingStatusChangedEvent:
		n.OrderID, n.Recipient = e.OrderID, e.Customer
		n.Subject = h.printer.Sprintf("Order %s: shipping update", e.SKU)
		n.Body = h.printer.Sprintf("Your order %s is now %s.", e.SKU, humanize(string(e.NewStatus)))
		if e.ReasonAdmin != "" && e.NewStatus.IsReturnFamily() {
			n.Body += h.printer.Sprintf(" Note: %s", e.ReasonAdmin)
		}
	case *fulfillment.PaymentStatusChangedEvent:
		n.OrderID, n.Recipient = e.OrderID, e.Customer
		n.Subject = h.printer.Sprintf("Order %s: payment update", e.SKU)
		n.Body = h.printer.Sprintf("Payment for order %s is now %s.", e.SKU, humanize(string(e.NewStatus)))
	case *fulfillment.ReturnItemDecidedEvent:
		n.OrderID, n.Recipient = e.OrderID, e.Customer
		n.Subject = h.printer.Sprintf("Order %s: return item %s", e.SKU, humanize(string(e.Status)))
		if e.Status == fulfillment.ReturnItemStatusApproved {
			n.Body = h.printer.Sprintf("Your return of %d x %s was approved for %s.",
				e.Quantity, e.ProductName, h.FormatAmount(e.RefundAmount, h.currency))
		} else {
			n.Body = h.printer.Sprintf("Your return of %d x %s was rejected: %s",
				e.Quantity, e.ProductName, e.AdminResponse)
		}
	case *fulfillment.ReturnRequestStatusChangedEvent:
		n.OrderID, n.Recipient = e.OrderID, e.Customer
		currency := valueobject.Currency(e.Currency)
		n.Subject = h.printer.Sprintf("Order %s: return request %s", e.SKU, humanize(string(e.Status)))
		switch e.Status {
		case fulfillment.ReturnRequestStatusApproved:
			n.Body = h.printer.Sprintf("Your return request was approved. Estimated refund: %s.", h.FormatAmount(e.EstimatedRefund, currency))
		case fulfillment.ReturnRequestStatusRejected:
			n.Body = h.printer.Sprintf("Your return request was rejected: %s", e.Reason)
		default:
			n.Body = h.printer.Sprintf("Your return is complete. Refund: %s.", h.FormatAmount(e.ActualRefund, currency))
		}
	default:
		return Notification{}, false
	}
	return n, true
}

// FormatAmount formats an amount with locale grouping and the currency's minor units
func (h *NotificationHandler) FormatAmount(amount decimal.Decimal, currency valueobject.Currency) string {
	if !currency.IsValid() {
		currency = h.currency
	}
	scale := int(currency.MinorUnits())
	value := amount.Round(int32(scale)).InexactFloat64()
	return h.printer.Sprintf("%v %s", number.Decimal(value, number.Scale(scale)), string(currency))
}

func humanize(status string) string {
	out := []rune(status)
	for i, r := range out {
		if r == '_' {
			out[i] = ' '
		}
	}
	return string(out)
}
