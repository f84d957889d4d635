package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appfulfillment "github.com/shopdesk/backend/internal/application/fulfillment"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
)

// OrderService is the application service behind the order endpoints
type OrderService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*appfulfillment.OrderResponse, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, req appfulfillment.UpdateOrderRequest) (*appfulfillment.OrderResponse, error)
	ListShippingLogs(ctx context.Context, orderID uuid.UUID) ([]appfulfillment.ShippingLogResponse, error)
	CreateReturnRequest(ctx context.Context, orderID uuid.UUID, req appfulfillment.CreateReturnRequestRequest) (*appfulfillment.ReturnRequestResponse, error)
	GetReturnRequest(ctx context.Context, orderID, requestID uuid.UUID) (*appfulfillment.ReturnRequestResponse, error)
	ApproveReturnItem(ctx context.Context, requestID, itemID uuid.UUID, req appfulfillment.ReturnItemDecisionRequest) (*appfulfillment.ReturnRequestResponse, error)
	RejectReturnItem(ctx context.Context, requestID, itemID uuid.UUID, req appfulfillment.ReturnItemDecisionRequest) (*appfulfillment.ReturnRequestResponse, error)
	UpdateReturnRequestStatus(ctx context.Context, requestID uuid.UUID, req appfulfillment.UpdateReturnRequestStatusRequest) (*appfulfillment.ReturnRequestResponse, error)
	ExportSettlement(ctx context.Context, orderID, requestID uuid.UUID) (*appfulfillment.SettlementFile, error)
}

var _ OrderService = (*appfulfillment.OrderService)(nil)

// OrderHandler handles order fulfillment and return-refund endpoints
type OrderHandler struct {
	BaseHandler
	service OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the order routes on the API group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders/:id")
	orders.GET("", h.GetOrder)
	orders.PUT("", h.UpdateOrder)
	orders.PATCH("", h.UpdateOrder)
	orders.GET("/shipping-logs", h.ListShippingLogs)

	returns := orders.Group("/return-requests")
	returns.POST("", h.CreateReturnRequest)
	returns.GET("/:rid", h.GetReturnRequest)
	returns.GET("/:rid/settlement.xlsx", h.ExportSettlement)
	returns.PUT("/:rid/status", h.UpdateReturnRequestStatus)
	returns.POST("/:rid/items/:item_id/approve", h.ApproveReturnItem)
	returns.POST("/:rid/items/:item_id/reject", h.RejectReturnItem)
}

// GetOrder godoc
// @Summary      Get an order with its shipping, items and return requests
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  dto.Response
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	var uri dto.OrderURI
	if !h.BindURI(c, &uri) {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), parseUUID(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateOrder godoc
// @Summary      Change the shipping and/or payment status of an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                                 true  "Order ID"
// @Param        request  body      fulfillment.UpdateOrderRequest  true  "Status changes"
// @Success      200  {object}  dto.Response
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var uri dto.OrderURI
	if !h.BindURI(c, &uri) {
		return
	}
	var req appfulfillment.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.UpdateOrder(c.Request.Context(), parseUUID(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListShippingLogs godoc
// @Summary      List the shipping status history of an order, oldest first
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  dto.Response
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders/{id}/shipping-logs [get]
func (h *OrderHandler) ListShippingLogs(c *gin.Context) {
	var uri dto.OrderURI
	if !h.BindURI(c, &uri) {
		return
	}

	logs, err := h.service.ListShippingLogs(c.Request.Context(), parseUUID(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

// CreateReturnRequest godoc
// @Summary      Open a return request for items of a received order
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id       path      string                                         true  "Order ID"
// @Param        request  body      fulfillment.CreateReturnRequestRequest  true  "Items to return"
// @Success      201  {object}  dto.Response
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders/{id}/return-requests [post]
func (h *OrderHandler) CreateReturnRequest(c *gin.Context) {
	var uri dto.OrderURI
	if !h.BindURI(c, &uri) {
		return
	}
	var req appfulfillment.CreateReturnRequestRequest
	if !h.BindJSON(c, &req) {
		return
	}

	request, err := h.service.CreateReturnRequest(c.Request.Context(), parseUUID(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, request)
}

// GetReturnRequest godoc
// @Summary      Get a return request with its items and settlement amounts
// @Tags         returns
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Param        rid  path      string  true  "Return request ID"
// @Success      200  {object}  dto.Response
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders/{id}/return-requests/{rid} [get]
func (h *OrderHandler) GetReturnRequest(c *gin.Context) {
	var uri dto.ReturnRequestURI
	if !h.BindURI(c, &uri) {
		return
	}

	request, err := h.service.GetReturnRequest(c.Request.Context(), parseUUID(uri.ID), parseUUID(uri.RequestID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// ApproveReturnItem godoc
// @Summary      Approve one item of a return request
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id       path      string                                        true  "Order ID"
// @Param        rid      path      string                                        true  "Return request ID"
// @Param        item_id  path      string                                        true  "Return item ID"
// @Param        request  body      fulfillment.ReturnItemDecisionRequest  false "Admin response"
// @Success      200  {object}  dto.Response
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders/{id}/return-requests/{rid}/items/{item_id}/approve [post]
func (h *OrderHandler) ApproveReturnItem(c *gin.Context) {
	h.decideReturnItem(c, h.service.ApproveReturnItem)
}

// RejectReturnItem godoc
// @Summary      Reject one item of a return request; admin_response is required
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id       path      string                                        true  "Order ID"
// @Param        rid      path      string                                        true  "Return request ID"
// @Param        item_id  path      string                                        true  "Return item ID"
// @Param        request  body      fulfillment.ReturnItemDecisionRequest  true  "Rejection reason"
// @Success      200  {object}  dto.Response
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders/{id}/return-requests/{rid}/items/{item_id}/reject [post]
func (h *OrderHandler) RejectReturnItem(c *gin.Context) {
	h.decideReturnItem(c, h.service.RejectReturnItem)
}

type itemDecision func(ctx context.Context, requestID, itemID uuid.UUID, req appfulfillment.ReturnItemDecisionRequest) (*appfulfillment.ReturnRequestResponse, error)

func (h *OrderHandler) decideReturnItem(c *gin.Context, decide itemDecision) {
	var uri dto.ReturnItemURI
	if !h.BindURI(c, &uri) {
		return
	}
	var req appfulfillment.ReturnItemDecisionRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	req.OrderID = parseUUID(uri.ID)

	request, err := decide(c.Request.Context(), parseUUID(uri.RequestID), parseUUID(uri.ItemID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// UpdateReturnRequestStatus godoc
// @Summary      Explicitly approve, reject or complete a return request
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id       path      string                                               true  "Order ID"
// @Param        rid      path      string                                               true  "Return request ID"
// @Param        request  body      fulfillment.UpdateReturnRequestStatusRequest  true  "Target status"
// @Success      200  {object}  dto.Response
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /orders/{id}/return-requests/{rid}/status [put]
func (h *OrderHandler) UpdateReturnRequestStatus(c *gin.Context) {
	var uri dto.ReturnRequestURI
	if !h.BindURI(c, &uri) {
		return
	}
	var req appfulfillment.UpdateReturnRequestStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.OrderID = parseUUID(uri.ID)

	request, err := h.service.UpdateReturnRequestStatus(c.Request.Context(), parseUUID(uri.RequestID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// ExportSettlement godoc
// @Summary      Download the refund settlement of a return request as XLSX
// @Tags         returns
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "Order ID"
// @Param        rid  path  string  true  "Return request ID"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /orders/{id}/return-requests/{rid}/settlement.xlsx [get]
func (h *OrderHandler) ExportSettlement(c *gin.Context) {
	var uri dto.ReturnRequestURI
	if !h.BindURI(c, &uri) {
		return
	}

	file, err := h.service.ExportSettlement(c.Request.Context(), parseUUID(uri.ID), parseUUID(uri.RequestID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, appfulfillment.SettlementContentType, file.Content)
}
