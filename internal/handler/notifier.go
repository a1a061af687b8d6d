package handler

import (
	"inventory-service/internal/model"
	"inventory-service/prometheus"

	"go.uber.org/zap"
)

// LowStockNotifier is the low-stock alert sink wired at startup: it logs
// the event and bumps the alert counter
type LowStockNotifier struct {
	Log *zap.Logger
}

func (n *LowStockNotifier) LowStock(level model.StockLevel) {
	prometheus.RecordLowStockAlert()
	n.Log.Warn("Low stock alert",
		zap.Uint("prod_id", level.ProductID),
		zap.Uint("wh_id", level.WarehouseID),
		zap.Int("stock_qty", level.StockQty),
		zap.Int("safety_stock", level.SafetyStock))
}
