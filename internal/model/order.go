package model

import "time"

// Purchase order lifecycle states
const (
	StatusPlaced    = "Placed"
	StatusDelivered = "Delivered"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// PurchaseOrder is a replenishment request to a supplier. The supplier
// reference is nullable: deleting a supplier nulls it instead of blocking.
type PurchaseOrder struct {
	ID           uint       `json:"order_id" gorm:"primaryKey;column:order_id"`
	SupplierID   *uint      `json:"supplier_id" gorm:"column:supplier_id"`
	ProductID    uint       `json:"prod_id" gorm:"column:prod_id;not null"`
	Qty          int        `json:"qty" gorm:"not null"`
	ExpectedDate *time.Time `json:"expected_date" gorm:"column:expected_date;type:date"`
	Status       string     `json:"status" gorm:"type:varchar(20);not null;default:'Placed'"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName keeps the legacy table name
func (PurchaseOrder) TableName() string {
	return "orders"
}

// ClientOrder is an end-customer purchase request that consumed stock when it
// was placed. There is no further workflow for client orders.
type ClientOrder struct {
	ID          uint      `json:"corder_id" gorm:"primaryKey;column:corder_id"`
	UserID      uint      `json:"user_id" gorm:"column:user_id;not null"`
	ProductID   uint      `json:"prod_id" gorm:"column:prod_id;not null"`
	WarehouseID uint      `json:"wh_id" gorm:"column:wh_id;not null"`
	Qty         int       `json:"qty" gorm:"not null"`
	OrderDate   time.Time `json:"order_date" gorm:"column:order_date"`
	Status      string    `json:"status" gorm:"type:varchar(20);not null;default:'Placed'"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sale is the system-generated record of a fulfilled client order.
// Append-only, never created or edited by users directly.
type Sale struct {
	ID          uint      `json:"sale_id" gorm:"primaryKey;column:sale_id"`
	ProductID   uint      `json:"prod_id" gorm:"column:prod_id;not null"`
	WarehouseID uint      `json:"wh_id" gorm:"column:wh_id;not null"`
	QtySold     int       `json:"qty_sold" gorm:"column:qty_sold;not null"`
	SaleDate    time.Time `json:"sale_date" gorm:"column:sale_date"`
	CreatedAt   time.Time `json:"created_at"`
}
