package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the product master data
type Product struct {
	ID        uint            `json:"prod_id" gorm:"primaryKey;column:prod_id"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Category  string          `json:"category" gorm:"type:varchar(100)"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"column:unit_price;type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Warehouse represents a storage location holding stock
type Warehouse struct {
	ID        uint      `json:"wh_id" gorm:"primaryKey;column:wh_id"`
	Location  string    `json:"location" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Supplier represents a replenishment source referenced by purchase orders
type Supplier struct {
	ID          uint      `json:"supplier_id" gorm:"primaryKey;column:supplier_id"`
	CompanyName string    `json:"company_name" gorm:"column:company_name;type:varchar(255);not null"`
	Rating      int       `json:"rating" gorm:"default:3"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
