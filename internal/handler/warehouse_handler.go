package handler

import (
	"net/http"

	"inventory-service/internal/model"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WarehouseRequest defines the structure for warehouse creation/update requests
type WarehouseRequest struct {
	Location string `json:"location"`
}

// ListWarehouses handles retrieving all warehouses
func (h *Handler) ListWarehouses(c echo.Context) error {
	log := logger.FromContext(c)

	var warehouses []model.Warehouse
	if err := h.db.Find(&warehouses).Error; err != nil {
		log.Error("Failed to list warehouses", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, warehouses)
}

// CreateWarehouse handles creating a new warehouse
func (h *Handler) CreateWarehouse(c echo.Context) error {
	log := logger.FromContext(c)

	var req WarehouseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing fields"})
	}

	warehouse := model.Warehouse{Location: req.Location}
	if err := h.db.Create(&warehouse).Error; err != nil {
		log.Error("Failed to create warehouse", zap.Error(err))
		return serverError(c)
	}

	log.Info("Warehouse created", zap.Uint("wh_id", warehouse.ID), zap.String("location", warehouse.Location))
	return c.JSON(http.StatusOK, echo.Map{"wh_id": warehouse.ID})
}

// UpdateWarehouse handles updating an existing warehouse
func (h *Handler) UpdateWarehouse(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid warehouse id"})
	}

	var req WarehouseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var warehouse model.Warehouse
	if err := h.db.First(&warehouse, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Warehouse not found"})
	}

	warehouse.Location = req.Location
	if err := h.db.Save(&warehouse).Error; err != nil {
		log.Error("Failed to update warehouse", zap.Uint("wh_id", id), zap.Error(err))
		return serverError(c)
	}

	log.Info("Warehouse updated", zap.Uint("wh_id", id))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// DeleteWarehouse handles deleting a warehouse. Deletion is blocked while
// stock or order history references it.
func (h *Handler) DeleteWarehouse(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid warehouse id"})
	}

	if h.warehouseReferenced(id) {
		log.Warn("Warehouse delete blocked by references", zap.Uint("wh_id", id))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Cannot delete warehouse: It has active orders or sales records. Please complete/cancel all orders first.",
		})
	}

	result := h.db.Delete(&model.Warehouse{}, id)
	if result.Error != nil {
		log.Error("Failed to delete warehouse", zap.Uint("wh_id", id), zap.Error(result.Error))
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Warehouse not found"})
	}

	log.Info("Warehouse deleted", zap.Uint("wh_id", id))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *Handler) warehouseReferenced(id uint) bool {
	var count int64
	for _, m := range []interface{}{&model.StockLevel{}, &model.ClientOrder{}, &model.Sale{}} {
		h.db.Model(m).Where("wh_id = ?", id).Count(&count)
		if count > 0 {
			return true
		}
	}
	return false
}
