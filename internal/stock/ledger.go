package stock

import (
	"errors"
	"sync"
	"time"

	"inventory-service/internal/model"

	"gorm.io/gorm"
)

// Ledger failure modes. ReserveAndDecrement is the only race-sensitive
// operation; everything else fails on plain validation.
var (
	// ErrNoSuchLevel is returned when no stock record exists for the
	// (product, warehouse) pair.
	ErrNoSuchLevel = errors.New("no inventory for this product at selected warehouse")
	// ErrOutOfStock is returned when the available quantity does not cover
	// the requested quantity.
	ErrOutOfStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type levelKey struct {
	productID   uint
	warehouseID uint
}

// Ledger is the authoritative owner of per-(product, warehouse) stock
// quantities. All mutations go through it; check-then-write sequences are
// serialized per key so concurrent reservations can never drive a level
// negative. Other keys proceed concurrently.
type Ledger struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[levelKey]*sync.Mutex
}

// NewLedger creates a stock ledger on top of the given database handle
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{
		db:    db,
		locks: make(map[levelKey]*sync.Mutex),
	}
}

// LockLevel acquires the exclusive lock for one (product, warehouse) key and
// returns the release function. Callers that combine a reservation with other
// writes in a single transaction hold this lock for the whole unit.
func (l *Ledger) LockLevel(productID, warehouseID uint) func() {
	k := levelKey{productID: productID, warehouseID: warehouseID}

	l.mu.Lock()
	m, ok := l.locks[k]
	if !ok {
		m = &sync.Mutex{}
		l.locks[k] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// GetLevel returns the stock record for the pair, or nil when absent
func (l *Ledger) GetLevel(productID, warehouseID uint) (*model.StockLevel, error) {
	var level model.StockLevel
	err := l.db.Where("prod_id = ? AND wh_id = ?", productID, warehouseID).First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// Row is a stock level joined with the product name and warehouse location,
// the shape the inventory listings return.
type Row struct {
	InvID       uint      `json:"inv_id" gorm:"column:inv_id"`
	ProductID   uint      `json:"prod_id" gorm:"column:prod_id"`
	WarehouseID uint      `json:"wh_id" gorm:"column:wh_id"`
	StockQty    int       `json:"stock_qty" gorm:"column:stock_qty"`
	SafetyStock int       `json:"safety_stock" gorm:"column:safety_stock"`
	LastUpdated time.Time `json:"last_updated" gorm:"column:last_updated"`
	ProductName string    `json:"product_name" gorm:"column:product_name"`
	Warehouse   string    `json:"warehouse" gorm:"column:warehouse"`
}

func (l *Ledger) joined() *gorm.DB {
	return l.db.Table("inventory").
		Select("inventory.*, products.name AS product_name, warehouses.location AS warehouse").
		Joins("JOIN products ON products.prod_id = inventory.prod_id").
		Joins("JOIN warehouses ON warehouses.wh_id = inventory.wh_id")
}

// ListLevels returns joined stock rows, optionally filtered by product
// and/or warehouse (zero means no filter)
func (l *Ledger) ListLevels(productID, warehouseID uint) ([]Row, error) {
	query := l.joined()
	if productID != 0 {
		query = query.Where("inventory.prod_id = ?", productID)
	}
	if warehouseID != 0 {
		query = query.Where("inventory.wh_id = ?", warehouseID)
	}

	var rows []Row
	if err := query.Order("inventory.inv_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListBelowSafety returns exactly the joined rows where stock is under the
// safety threshold
func (l *Ledger) ListBelowSafety() ([]Row, error) {
	var rows []Row
	err := l.joined().
		Where("inventory.stock_qty < inventory.safety_stock").
		Order("inventory.inv_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReserveAndDecrement checks that the level covers qty and decrements it,
// holding the key lock across the check and the write
func (l *Ledger) ReserveAndDecrement(productID, warehouseID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	unlock := l.LockLevel(productID, warehouseID)
	defer unlock()

	return l.db.Transaction(func(tx *gorm.DB) error {
		return l.ReserveAndDecrementTx(tx, productID, warehouseID, qty)
	})
}

// ReserveAndDecrementTx is the transaction-scoped reservation used by the
// order workflow to keep the decrement atomic with order and sale inserts.
// The caller must hold the key lock.
func (l *Ledger) ReserveAndDecrementTx(tx *gorm.DB, productID, warehouseID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	var level model.StockLevel
	if err := tx.Where("prod_id = ? AND wh_id = ?", productID, warehouseID).First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSuchLevel
		}
		return err
	}

	if level.StockQty < qty {
		return ErrOutOfStock
	}

	return tx.Model(&level).Updates(map[string]interface{}{
		"stock_qty":    level.StockQty - qty,
		"last_updated": time.Now(),
	}).Error
}

// Increment adds qty to the level, creating the record with safety_stock = 0
// when absent, and returns the new stock value. Used by purchase-order
// receipt.
func (l *Ledger) Increment(productID, warehouseID uint, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}

	unlock := l.LockLevel(productID, warehouseID)
	defer unlock()

	var newStock int
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		newStock, txErr = l.IncrementTx(tx, productID, warehouseID, qty)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	return newStock, nil
}

// IncrementTx is the transaction-scoped variant of Increment. The caller
// must hold the key lock.
func (l *Ledger) IncrementTx(tx *gorm.DB, productID, warehouseID uint, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}

	var level model.StockLevel
	err := tx.Where("prod_id = ? AND wh_id = ?", productID, warehouseID).First(&level).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}

		level = model.StockLevel{
			ProductID:   productID,
			WarehouseID: warehouseID,
			StockQty:    qty,
			SafetyStock: 0,
			LastUpdated: time.Now(),
		}
		if err := tx.Create(&level).Error; err != nil {
			return 0, err
		}
		return level.StockQty, nil
	}

	newStock := level.StockQty + qty
	updateErr := tx.Model(&level).Updates(map[string]interface{}{
		"stock_qty":    newStock,
		"last_updated": time.Now(),
	}).Error
	if updateErr != nil {
		return 0, updateErr
	}
	return newStock, nil
}

// SetLevel overwrites the stock quantity of an inventory row by its id.
// Manual admin override; the safety threshold is left untouched. Holds the
// key lock so the write cannot interleave with a concurrent reservation's
// check-then-write.
func (l *Ledger) SetLevel(invID uint, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}

	var level model.StockLevel
	if err := l.db.Where("inv_id = ?", invID).First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSuchLevel
		}
		return err
	}

	unlock := l.LockLevel(level.ProductID, level.WarehouseID)
	defer unlock()

	result := l.db.Model(&model.StockLevel{}).Where("inv_id = ?", invID).Updates(map[string]interface{}{
		"stock_qty":    qty,
		"last_updated": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoSuchLevel
	}
	return nil
}
