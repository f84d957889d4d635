package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockReconciler restores variant stock for return items that reached completed.
// It consumes the ReturnItemCompleted events pending on the order, which the domain
// raises exactly once per item.
type StockReconciler struct {
	logger *zap.Logger
}

// NewStockReconciler creates a new StockReconciler
func NewStockReconciler(logger *zap.Logger) *StockReconciler {
	return &StockReconciler{logger: logger}
}

// Reconcile increments stock for every completed return item in events.
// A missing variant is logged as a StockReconciliationWarning and skipped.
func (r *StockReconciler) Reconcile(ctx context.Context, variants catalog.VariantRepository, events []shared.DomainEvent) (int, error) {
	restored := 0
	for _, event := range events {
		completed, ok := event.(*fulfillment.ReturnItemCompletedEvent)
		if !ok {
			continue
		}

		err := variants.IncrementStock(ctx, completed.VariantID, completed.Quantity)
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("StockReconciliationWarning: variant not found, stock not restored",
				zap.String("order_id", completed.OrderID.String()),
				zap.String("return_request_id", completed.ReturnRequestID.String()),
				zap.String("return_item_id", completed.ReturnItemID.String()),
				zap.String("variant_id", completed.VariantID.String()),
				zap.Int("quantity", completed.Quantity),
			)
			continue
		}
		if err != nil {
			return restored, fmt.Errorf("restore stock for variant %s: %w", completed.VariantID, err)
		}

		r.logger.Info("stock restored from return",
			zap.String("order_id", completed.OrderID.String()),
			zap.String("return_item_id", completed.ReturnItemID.String()),
			zap.String("variant_id", completed.VariantID.String()),
			zap.Int("quantity", completed.Quantity),
		)
		restored++
	}
	return restored, nil
}
