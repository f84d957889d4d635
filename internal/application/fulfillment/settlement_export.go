package fulfillment

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	settlementSheet = "Settlement"
	// SettlementContentType is the MIME type of exported settlement workbooks
	SettlementContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SettlementFile is an exported refund settlement workbook
type SettlementFile struct {
	Filename string
	Content  []byte
}

// ExportSettlement renders the refund settlement of a return request as an XLSX workbook.
// Amounts are the persisted values; nothing is recomputed.
func (s *OrderService) ExportSettlement(ctx context.Context, orderID, requestID uuid.UUID) (*SettlementFile, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	req, err := order.FindReturnRequest(requestID)
	if err != nil {
		return nil, err
	}

	content, err := renderSettlement(order, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("settlement exported",
		zap.String("order_id", orderID.String()),
		zap.String("return_request_id", requestID.String()),
		zap.Int("bytes", len(content)),
	)
	return &SettlementFile{
		Filename: fmt.Sprintf("settlement_%s_%s.xlsx", order.SKU, time.Now().UTC().Format("20060102150405")),
		Content:  content,
	}, nil
}

func renderSettlement(order *fulfillment.Order, req *fulfillment.ReturnRequest) (_ []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", settlementSheet); err != nil {
		return nil, fmt.Errorf("rename settlement sheet: %w", err)
	}

	summary := [][]any{
		{"Order", order.SKU},
		{"Return request", req.ID.String()},
		{"Status", string(req.Status)},
		{"Currency", string(order.Currency)},
		{"Requested at", req.RequestedAt.Format(time.RFC3339)},
	}
	row := 1
	for _, line := range summary {
		if err := setRow(f, row, line); err != nil {
			return nil, err
		}
		row++
	}

	row++
	if err := setRow(f, row, []any{"Product", "Size", "Color", "Unit price", "Quantity", "Status", "Refund amount", "Admin response"}); err != nil {
		return nil, err
	}
	row++
	for _, item := range req.Items {
		product, size, color := "", "", ""
		unitPrice := 0.0
		if orderItem, ferr := order.FindItem(item.OrderItemID); ferr == nil {
			product, size, color = orderItem.ProductName, orderItem.Size, orderItem.Color
			unitPrice = orderItem.UnitPrice.InexactFloat64()
		}
		line := []any{product, size, color, unitPrice, item.Quantity, string(item.Status), item.RefundAmount.InexactFloat64(), item.AdminResponse}
		if err := setRow(f, row, line); err != nil {
			return nil, err
		}
		row++
	}

	row++
	totals := [][]any{
		{"Total return amount", req.TotalReturnAmount.InexactFloat64()},
		{"Refunded discount", req.RefundedDiscount.InexactFloat64()},
		{"Old shipping fee", req.OldShippingFee.InexactFloat64()},
		{"New shipping fee", req.NewShippingFee.InexactFloat64()},
		{"Shipping difference", req.ShippingDiff.InexactFloat64()},
		{"Estimated refund", req.EstimatedRefund.InexactFloat64()},
		{"Actual refund", req.ActualRefund.InexactFloat64()},
		{"Remaining amount", req.RemainingAmount.InexactFloat64()},
	}
	for _, line := range totals {
		if err := setRow(f, row, line); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetColWidth(settlementSheet, "A", "A", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(settlementSheet, "B", "H", 16); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write settlement workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(settlementSheet, cell, &values)
}
