package handler

import (
	"errors"
	"net/http"
	"time"

	"inventory-service/internal/stock"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListInventory handles the joined stock listing, optionally filtered by
// prod_id and/or wh_id query parameters
func (h *Handler) ListInventory(c echo.Context) error {
	log := logger.FromContext(c)

	var productID, warehouseID uint
	if v := c.QueryParam("prod_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid prod_id"})
		}
		productID = id
	}
	if v := c.QueryParam("wh_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid wh_id"})
		}
		warehouseID = id
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	rows, err := h.ledger.ListLevels(productID, warehouseID)
	if err != nil {
		log.Error("Failed to list inventory", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, rows)
}

// UpdateStock handles the admin manual stock override for one inventory row
func (h *Handler) UpdateStock(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid inventory id"})
	}

	var req struct {
		StockQty *int `json:"stock_qty"`
	}
	if err := c.Bind(&req); err != nil || req.StockQty == nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if err := h.ledger.SetLevel(id, *req.StockQty); err != nil {
		switch {
		case errors.Is(err, stock.ErrInvalidQuantity):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Stock quantity must not be negative"})
		case errors.Is(err, stock.ErrNoSuchLevel):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Inventory record not found"})
		default:
			log.Error("Failed to update stock", zap.Uint("inv_id", id), zap.Error(err))
			return serverError(c)
		}
	}

	log.Info("Stock overridden", zap.Uint("inv_id", id), zap.Int("stock_qty", *req.StockQty))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// ListLowStock handles the admin listing of levels under their safety threshold
func (h *Handler) ListLowStock(c echo.Context) error {
	log := logger.FromContext(c)

	rows, err := h.ledger.ListBelowSafety()
	if err != nil {
		log.Error("Failed to list low stock", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, rows)
}
