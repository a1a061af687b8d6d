package handler

import (
	"errors"
	"net/http"
	"time"

	"inventory-service/internal/order"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// expectedDateLayout is the wire format for purchase-order expected dates
const expectedDateLayout = "2006-01-02"

// CreatePurchaseOrder handles creating a replenishment order in the Placed state
func (h *Handler) CreatePurchaseOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		SupplierID   *uint  `json:"supplier_id"`
		ProductID    uint   `json:"prod_id"`
		Qty          int    `json:"qty"`
		ExpectedDate string `json:"expected_date"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var expectedDate *time.Time
	if req.ExpectedDate != "" {
		parsed, err := time.Parse(expectedDateLayout, req.ExpectedDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid expected_date, use YYYY-MM-DD"})
		}
		expectedDate = &parsed
	}

	po, err := h.workflow.CreatePurchaseOrder(req.SupplierID, req.ProductID, req.Qty, expectedDate)
	if err != nil {
		if errors.Is(err, order.ErrInvalidOrder) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing fields"})
		}
		log.Error("Failed to create purchase order", zap.Error(err))
		return serverError(c)
	}

	log.Info("Purchase order created",
		zap.Uint("order_id", po.ID),
		zap.Uint("prod_id", po.ProductID),
		zap.Int("qty", po.Qty))
	return c.JSON(http.StatusOK, echo.Map{"order_id": po.ID})
}

// SetPurchaseOrderStatus handles status updates along the order lifecycle
func (h *Handler) SetPurchaseOrderStatus(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid order id"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if err := h.workflow.SetStatus(id, req.Status); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		case errors.Is(err, order.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown status"})
		case errors.Is(err, order.ErrInvalidTransition):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status transition"})
		default:
			log.Error("Failed to update order status", zap.Uint("order_id", id), zap.Error(err))
			return serverError(c)
		}
	}

	log.Info("Purchase order status updated",
		zap.Uint("order_id", id),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// ReceivePurchaseOrder handles booking a placed order into a warehouse
func (h *Handler) ReceivePurchaseOrder(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid order id"})
	}

	var req struct {
		WarehouseID uint `json:"wh_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if err := h.workflow.Receive(id, req.WarehouseID); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		case errors.Is(err, order.ErrNotReceivable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Order has already been received or closed"})
		case errors.Is(err, order.ErrInvalidOrder):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing fields"})
		default:
			log.Error("Failed to receive purchase order", zap.Uint("order_id", id), zap.Error(err))
			return serverError(c)
		}
	}

	prometheus.PurchaseOrdersReceivedCounter.Inc()
	log.Info("Purchase order received",
		zap.Uint("order_id", id),
		zap.Uint("wh_id", req.WarehouseID))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// ListPurchaseOrders handles the joined purchase-order listing
func (h *Handler) ListPurchaseOrders(c echo.Context) error {
	log := logger.FromContext(c)

	rows, err := h.workflow.ListPurchaseOrders()
	if err != nil {
		log.Error("Failed to list purchase orders", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, rows)
}

// ListSales handles the admin sales listing, newest first
func (h *Handler) ListSales(c echo.Context) error {
	log := logger.FromContext(c)

	sales, err := h.workflow.ListSales()
	if err != nil {
		log.Error("Failed to list sales", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, sales)
}
