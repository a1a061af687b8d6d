package handler

import (
	"net/http"

	"inventory-service/internal/model"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SupplierRequest defines the structure for supplier creation/update requests
type SupplierRequest struct {
	CompanyName string `json:"company_name"`
	Rating      int    `json:"rating"`
}

// ListSuppliers handles retrieving all suppliers
func (h *Handler) ListSuppliers(c echo.Context) error {
	log := logger.FromContext(c)

	var suppliers []model.Supplier
	if err := h.db.Find(&suppliers).Error; err != nil {
		log.Error("Failed to list suppliers", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, suppliers)
}

// CreateSupplier handles creating a new supplier
func (h *Handler) CreateSupplier(c echo.Context) error {
	log := logger.FromContext(c)

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.CompanyName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing fields"})
	}

	rating := req.Rating
	if rating == 0 {
		rating = 3
	}
	if rating < 1 || rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Rating must be between 1 and 5"})
	}

	supplier := model.Supplier{CompanyName: req.CompanyName, Rating: rating}
	if err := h.db.Create(&supplier).Error; err != nil {
		log.Error("Failed to create supplier", zap.Error(err))
		return serverError(c)
	}

	log.Info("Supplier created",
		zap.Uint("supplier_id", supplier.ID),
		zap.String("company_name", supplier.CompanyName))
	return c.JSON(http.StatusOK, echo.Map{"supplier_id": supplier.ID})
}

// UpdateSupplier handles updating an existing supplier
func (h *Handler) UpdateSupplier(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid supplier id"})
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Rating must be between 1 and 5"})
	}

	var supplier model.Supplier
	if err := h.db.First(&supplier, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
	}

	supplier.CompanyName = req.CompanyName
	supplier.Rating = req.Rating
	if err := h.db.Save(&supplier).Error; err != nil {
		log.Error("Failed to update supplier", zap.Uint("supplier_id", id), zap.Error(err))
		return serverError(c)
	}

	log.Info("Supplier updated", zap.Uint("supplier_id", id))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// DeleteSupplier handles deleting a supplier. Purchase orders referencing it
// keep their history with the supplier reference nulled.
func (h *Handler) DeleteSupplier(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid supplier id"})
	}

	var deleted int64
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PurchaseOrder{}).
			Where("supplier_id = ?", id).
			Update("supplier_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Supplier{}, id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if txErr != nil {
		log.Error("Failed to delete supplier", zap.Uint("supplier_id", id), zap.Error(txErr))
		return serverError(c)
	}
	if deleted == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
	}

	log.Info("Supplier deleted", zap.Uint("supplier_id", id))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
