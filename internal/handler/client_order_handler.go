package handler

import (
	"errors"
	"net/http"

	"inventory-service/internal/middleware"
	"inventory-service/internal/order"
	"inventory-service/internal/stock"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PlaceClientOrder handles client order placement. The stock decrement, the
// order row and the sale row are one atomic unit in the workflow.
func (h *Handler) PlaceClientOrder(c echo.Context) error {
	log := logger.FromContext(c)

	claims, ok := middleware.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
	}

	var req struct {
		UserID      uint `json:"user_id"`
		ProductID   uint `json:"prod_id"`
		WarehouseID uint `json:"wh_id"`
		Qty         int  `json:"qty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	// Clients may only order for themselves
	if !claims.IsAdmin() && req.UserID != claims.UserID {
		log.Warn("Order placement for another user denied",
			zap.Uint("token_user_id", claims.UserID),
			zap.Uint("body_user_id", req.UserID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Cannot order for another user"})
	}

	corder, err := h.workflow.PlaceClientOrder(req.UserID, req.ProductID, req.WarehouseID, req.Qty)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidOrder):
			prometheus.RecordOrderRejection("missing_fields")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing fields"})
		case errors.Is(err, stock.ErrNoSuchLevel):
			prometheus.RecordOrderRejection("no_inventory")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "No inventory for this product at selected warehouse"})
		case errors.Is(err, stock.ErrOutOfStock):
			prometheus.RecordOrderRejection("insufficient_stock")
			log.Warn("Order rejected, insufficient stock",
				zap.Uint("prod_id", req.ProductID),
				zap.Uint("wh_id", req.WarehouseID),
				zap.Int("qty", req.Qty))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Insufficient stock"})
		default:
			log.Error("Failed to place client order", zap.Error(err))
			return serverError(c)
		}
	}

	prometheus.ClientOrdersPlacedCounter.Inc()
	log.Info("Client order placed",
		zap.Uint("corder_id", corder.ID),
		zap.Uint("user_id", corder.UserID),
		zap.Uint("prod_id", corder.ProductID),
		zap.Uint("wh_id", corder.WarehouseID),
		zap.Int("qty", corder.Qty))
	return c.JSON(http.StatusOK, echo.Map{"corder_id": corder.ID})
}

// ListClientOrdersByUser handles one user's order history, newest first.
// Clients may only read their own orders.
func (h *Handler) ListClientOrdersByUser(c echo.Context) error {
	log := logger.FromContext(c)

	claims, ok := middleware.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
	}

	userID, err := parseID(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user id"})
	}

	if !claims.IsAdmin() && userID != claims.UserID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Cannot view another user's orders"})
	}

	orders, err := h.workflow.ListClientOrders(userID)
	if err != nil {
		log.Error("Failed to list client orders", zap.Uint("user_id", userID), zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, orders)
}

// ListAllClientOrders handles the admin listing of every client order
func (h *Handler) ListAllClientOrders(c echo.Context) error {
	log := logger.FromContext(c)

	orders, err := h.workflow.ListAllClientOrders()
	if err != nil {
		log.Error("Failed to list all client orders", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, orders)
}
