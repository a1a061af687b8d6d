package order

import (
	"errors"
	"time"

	"inventory-service/internal/model"
	"inventory-service/internal/stock"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInvalidOrder is returned when required fields are missing or qty
	// is not positive.
	ErrInvalidOrder = errors.New("missing fields")
	// ErrOrderNotFound is returned for an unknown purchase order id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNotReceivable is returned when receiving an order that is no
	// longer in the Placed state.
	ErrNotReceivable = errors.New("order has already been received or closed")
	// ErrInvalidStatus is returned for a status value outside the lifecycle.
	ErrInvalidStatus = errors.New("unknown order status")
	// ErrInvalidTransition is returned when the requested status cannot be
	// reached from the current one.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// transitions is the purchase-order state machine: Placed -> Delivered ->
// Completed, with Cancelled reachable from both non-terminal states.
var transitions = map[string][]string{
	model.StatusPlaced:    {model.StatusDelivered, model.StatusCancelled},
	model.StatusDelivered: {model.StatusCompleted, model.StatusCancelled},
	model.StatusCompleted: {},
	model.StatusCancelled: {},
}

// Notifier receives low-stock events emitted after a client order drops a
// level under its safety threshold. Implementations must not block.
type Notifier interface {
	LowStock(level model.StockLevel)
}

// LogNotifier is the default Notifier: it logs the alert so admins can
// follow up via the low-stock listing.
type LogNotifier struct {
	Log *zap.Logger
}

func (n *LogNotifier) LowStock(level model.StockLevel) {
	n.Log.Warn("Low stock alert",
		zap.Uint("prod_id", level.ProductID),
		zap.Uint("wh_id", level.WarehouseID),
		zap.Int("stock_qty", level.StockQty),
		zap.Int("safety_stock", level.SafetyStock))
}

// Workflow orchestrates client orders and the purchase-order lifecycle.
// It never writes stock levels directly; all quantity changes go through
// the ledger.
type Workflow struct {
	db       *gorm.DB
	ledger   *stock.Ledger
	notifier Notifier
}

// NewWorkflow creates an order workflow over the given database and ledger
func NewWorkflow(db *gorm.DB, ledger *stock.Ledger, notifier Notifier) *Workflow {
	if notifier == nil {
		notifier = &LogNotifier{Log: zap.L()}
	}
	return &Workflow{
		db:       db,
		ledger:   ledger,
		notifier: notifier,
	}
}

// PlaceClientOrder reserves stock and records the order and its sale as one
// atomic unit: either the level is decremented and both rows exist, or
// nothing changed. After commit the level is re-read and a low-stock
// notification is emitted when it dropped under its safety threshold.
func (w *Workflow) PlaceClientOrder(userID, productID, warehouseID uint, qty int) (*model.ClientOrder, error) {
	if userID == 0 || productID == 0 || warehouseID == 0 || qty <= 0 {
		return nil, ErrInvalidOrder
	}

	unlock := w.ledger.LockLevel(productID, warehouseID)
	defer unlock()

	now := time.Now()
	corder := model.ClientOrder{
		UserID:      userID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Qty:         qty,
		OrderDate:   now,
		Status:      model.StatusPlaced,
	}

	err := w.db.Transaction(func(tx *gorm.DB) error {
		if err := w.ledger.ReserveAndDecrementTx(tx, productID, warehouseID, qty); err != nil {
			return err
		}

		if err := tx.Create(&corder).Error; err != nil {
			return err
		}

		sale := model.Sale{
			ProductID:   productID,
			WarehouseID: warehouseID,
			QtySold:     qty,
			SaleDate:    now,
		}
		return tx.Create(&sale).Error
	})
	if err != nil {
		return nil, err
	}

	// Side channel, outside the transaction
	if level, lvlErr := w.ledger.GetLevel(productID, warehouseID); lvlErr == nil && level != nil && level.BelowSafety() {
		w.notifier.LowStock(*level)
	}

	return &corder, nil
}

// ListClientOrders returns one user's orders, newest first
func (w *Workflow) ListClientOrders(userID uint) ([]model.ClientOrder, error) {
	var orders []model.ClientOrder
	err := w.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// ListAllClientOrders returns every client order, newest first
func (w *Workflow) ListAllClientOrders() ([]model.ClientOrder, error) {
	var orders []model.ClientOrder
	err := w.db.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// CreatePurchaseOrder records a replenishment request in the Placed state
func (w *Workflow) CreatePurchaseOrder(supplierID *uint, productID uint, qty int, expectedDate *time.Time) (*model.PurchaseOrder, error) {
	if productID == 0 || qty <= 0 {
		return nil, ErrInvalidOrder
	}

	order := model.PurchaseOrder{
		SupplierID:   supplierID,
		ProductID:    productID,
		Qty:          qty,
		ExpectedDate: expectedDate,
		Status:       model.StatusPlaced,
	}
	if err := w.db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Receive books a placed order into the given warehouse: the level is
// incremented (created with safety_stock 0 when absent) and the order moves
// to Delivered, atomically. Only Placed orders are receivable, so a repeated
// receive cannot double-increment stock.
func (w *Workflow) Receive(orderID, warehouseID uint) error {
	if warehouseID == 0 {
		return ErrInvalidOrder
	}

	var order model.PurchaseOrder
	if err := w.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if order.Status != model.StatusPlaced {
		return ErrNotReceivable
	}

	unlock := w.ledger.LockLevel(order.ProductID, warehouseID)
	defer unlock()

	return w.db.Transaction(func(tx *gorm.DB) error {
		// The status check above ran outside the transaction; claim the
		// order conditionally so a concurrent receive that committed
		// first leaves nothing to claim and the increment rolls back.
		result := tx.Model(&model.PurchaseOrder{}).
			Where("order_id = ? AND status = ?", orderID, model.StatusPlaced).
			Update("status", model.StatusDelivered)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotReceivable
		}

		_, err := w.ledger.IncrementTx(tx, order.ProductID, warehouseID, order.Qty)
		return err
	})
}

// SetStatus moves a purchase order to the requested status, validating the
// transition against the lifecycle
func (w *Workflow) SetStatus(orderID uint, status string) error {
	if _, known := transitions[status]; !known {
		return ErrInvalidStatus
	}

	var order model.PurchaseOrder
	if err := w.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if !transitionAllowed(order.Status, status) {
		return ErrInvalidTransition
	}

	return w.db.Model(&order).Update("status", status).Error
}

func transitionAllowed(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PurchaseOrderRow is a purchase order joined with the supplier company name
// and product name for listings
type PurchaseOrderRow struct {
	OrderID      uint       `json:"order_id" gorm:"column:order_id"`
	SupplierID   *uint      `json:"supplier_id" gorm:"column:supplier_id"`
	ProductID    uint       `json:"prod_id" gorm:"column:prod_id"`
	Qty          int        `json:"qty" gorm:"column:qty"`
	ExpectedDate *time.Time `json:"expected_date" gorm:"column:expected_date"`
	Status       string     `json:"status" gorm:"column:status"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at"`
	CompanyName  *string    `json:"company_name" gorm:"column:company_name"`
	ProductName  *string    `json:"product_name" gorm:"column:product_name"`
}

// ListPurchaseOrders returns all purchase orders joined with supplier and
// product names, newest first
func (w *Workflow) ListPurchaseOrders() ([]PurchaseOrderRow, error) {
	var rows []PurchaseOrderRow
	err := w.db.Table("orders").
		Select("orders.*, suppliers.company_name AS company_name, products.name AS product_name").
		Joins("LEFT JOIN suppliers ON suppliers.supplier_id = orders.supplier_id").
		Joins("LEFT JOIN products ON products.prod_id = orders.prod_id").
		Order("orders.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSales returns every sale record, newest first
func (w *Workflow) ListSales() ([]model.Sale, error) {
	var sales []model.Sale
	err := w.db.Order("created_at DESC").Find(&sales).Error
	return sales, err
}
