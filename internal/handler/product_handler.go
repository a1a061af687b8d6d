package handler

import (
	"net/http"
	"time"

	"inventory-service/internal/model"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ListProducts handles retrieving all products
func (h *Handler) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var products []model.Product
	if err := h.db.Find(&products).Error; err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return serverError(c)
	}

	return c.JSON(http.StatusOK, products)
}

// CreateProduct handles creating a new product
func (h *Handler) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" {
		log.Warn("Product creation with empty name")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing fields"})
	}

	product := model.Product{
		Name:      req.Name,
		Category:  req.Category,
		UnitPrice: req.UnitPrice,
	}
	if err := h.db.Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.String("name", req.Name), zap.Error(err))
		return serverError(c)
	}

	log.Info("Product created",
		zap.Uint("prod_id", product.ID),
		zap.String("name", product.Name),
		zap.String("category", product.Category))
	return c.JSON(http.StatusOK, echo.Map{"prod_id": product.ID})
}

// UpdateProduct handles updating an existing product
func (h *Handler) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product id"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var product model.Product
	if err := h.db.First(&product, id).Error; err != nil {
		log.Warn("Product not found for update", zap.Uint("prod_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	product.Name = req.Name
	product.Category = req.Category
	product.UnitPrice = req.UnitPrice
	if err := h.db.Save(&product).Error; err != nil {
		log.Error("Failed to update product", zap.Uint("prod_id", id), zap.Error(err))
		return serverError(c)
	}

	log.Info("Product updated", zap.Uint("prod_id", id), zap.String("name", product.Name))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// DeleteProduct handles deleting a product. Deletion is blocked while the
// product is referenced by inventory or order history.
func (h *Handler) DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product id"})
	}

	if h.productReferenced(id) {
		log.Warn("Product delete blocked by references", zap.Uint("prod_id", id))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Cannot delete product: It has inventory records or order history. Please remove all inventory and complete/cancel all orders first.",
		})
	}

	result := h.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.Uint("prod_id", id), zap.Error(result.Error))
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	log.Info("Product deleted", zap.Uint("prod_id", id))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// productReferenced reports whether inventory, orders, client orders or
// sales still reference the product
func (h *Handler) productReferenced(id uint) bool {
	var count int64
	for _, m := range []interface{}{&model.StockLevel{}, &model.PurchaseOrder{}, &model.ClientOrder{}, &model.Sale{}} {
		h.db.Model(m).Where("prod_id = ?", id).Count(&count)
		if count > 0 {
			return true
		}
	}
	return false
}
