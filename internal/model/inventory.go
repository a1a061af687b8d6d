package model

import "time"

// StockLevel is the quantity-on-hand record for one product at one warehouse.
// The (prod_id, wh_id) pair is unique; stock_qty never goes negative through
// the stock ledger.
type StockLevel struct {
	ID          uint      `json:"inv_id" gorm:"primaryKey;column:inv_id"`
	ProductID   uint      `json:"prod_id" gorm:"column:prod_id;not null;uniqueIndex:idx_inventory_prod_wh"`
	WarehouseID uint      `json:"wh_id" gorm:"column:wh_id;not null;uniqueIndex:idx_inventory_prod_wh"`
	StockQty    int       `json:"stock_qty" gorm:"column:stock_qty;not null;default:0"`
	SafetyStock int       `json:"safety_stock" gorm:"column:safety_stock;not null;default:0"`
	LastUpdated time.Time `json:"last_updated" gorm:"column:last_updated"`
}

// TableName keeps the legacy table name
func (StockLevel) TableName() string {
	return "inventory"
}

// BelowSafety reports whether the level is under its safety threshold
func (s *StockLevel) BelowSafety() bool {
	return s.StockQty < s.SafetyStock
}
