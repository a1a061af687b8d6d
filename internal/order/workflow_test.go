package order

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"inventory-service/internal/model"
	"inventory-service/internal/stock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordingNotifier captures low-stock events for assertions
type recordingNotifier struct {
	alerts []model.StockLevel
}

func (n *recordingNotifier) LowStock(level model.StockLevel) {
	n.alerts = append(n.alerts, level)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Warehouse{},
		&model.Supplier{},
		&model.StockLevel{},
		&model.PurchaseOrder{},
		&model.ClientOrder{},
		&model.Sale{},
	))
	return db
}

type fixture struct {
	db       *gorm.DB
	ledger   *stock.Ledger
	workflow *Workflow
	notifier *recordingNotifier

	user      model.User
	product   model.Product
	warehouse model.Warehouse
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := openTestDB(t)
	ledger := stock.NewLedger(db)
	notifier := &recordingNotifier{}
	workflow := NewWorkflow(db, ledger, notifier)

	f := &fixture{
		db:       db,
		ledger:   ledger,
		workflow: workflow,
		notifier: notifier,
	}

	f.user = model.User{Name: "Client", Email: "client@example.com", Password: "x", Role: model.RoleClient}
	require.NoError(t, db.Create(&f.user).Error)
	f.product = model.Product{Name: "Widget", Category: "Tools"}
	require.NoError(t, db.Create(&f.product).Error)
	f.warehouse = model.Warehouse{Location: "Springfield"}
	require.NoError(t, db.Create(&f.warehouse).Error)
	return f
}

func (f *fixture) seedLevel(t *testing.T, stockQty, safety int) model.StockLevel {
	t.Helper()

	level := model.StockLevel{
		ProductID:   f.product.ID,
		WarehouseID: f.warehouse.ID,
		StockQty:    stockQty,
		SafetyStock: safety,
		LastUpdated: time.Now(),
	}
	require.NoError(t, f.db.Create(&level).Error)
	return level
}

func (f *fixture) counts(t *testing.T) (orders, sales int64) {
	t.Helper()

	require.NoError(t, f.db.Model(&model.ClientOrder{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&model.Sale{}).Count(&sales).Error)
	return orders, sales
}

func TestPlaceClientOrderAtomicSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedLevel(t, 5, 2)

	corder, err := f.workflow.PlaceClientOrder(f.user.ID, f.product.ID, f.warehouse.ID, 5)
	require.NoError(t, err)
	require.NotZero(t, corder.ID)
	assert.Equal(t, model.StatusPlaced, corder.Status)

	level, err := f.ledger.GetLevel(f.product.ID, f.warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, level.StockQty)

	var sale model.Sale
	require.NoError(t, f.db.First(&sale).Error)
	assert.Equal(t, f.product.ID, sale.ProductID)
	assert.Equal(t, f.warehouse.ID, sale.WarehouseID)
	assert.Equal(t, 5, sale.QtySold)

	orders, sales := f.counts(t)
	assert.EqualValues(t, 1, orders)
	assert.EqualValues(t, 1, sales)

	// 0 < 2 fires the low-stock alert
	require.Len(t, f.notifier.alerts, 1)
	assert.Equal(t, 0, f.notifier.alerts[0].StockQty)

	// Stock is exhausted, a follow-up order fails and changes nothing
	_, err = f.workflow.PlaceClientOrder(f.user.ID, f.product.ID, f.warehouse.ID, 1)
	assert.ErrorIs(t, err, stock.ErrOutOfStock)

	level, err = f.ledger.GetLevel(f.product.ID, f.warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, level.StockQty)
	orders, sales = f.counts(t)
	assert.EqualValues(t, 1, orders)
	assert.EqualValues(t, 1, sales)
}

func TestPlaceClientOrderOutOfStockLeavesEverythingUnchanged(t *testing.T) {
	f := newFixture(t)
	f.seedLevel(t, 3, 1)

	_, err := f.workflow.PlaceClientOrder(f.user.ID, f.product.ID, f.warehouse.ID, 4)
	assert.ErrorIs(t, err, stock.ErrOutOfStock)

	level, lvlErr := f.ledger.GetLevel(f.product.ID, f.warehouse.ID)
	require.NoError(t, lvlErr)
	assert.Equal(t, 3, level.StockQty)

	orders, sales := f.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, sales)
	assert.Empty(t, f.notifier.alerts)
}

func TestPlaceClientOrderNoInventoryRow(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.PlaceClientOrder(f.user.ID, f.product.ID, f.warehouse.ID, 1)
	assert.ErrorIs(t, err, stock.ErrNoSuchLevel)

	orders, sales := f.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, sales)
}

func TestPlaceClientOrderValidation(t *testing.T) {
	f := newFixture(t)
	f.seedLevel(t, 5, 0)

	cases := []struct {
		name        string
		userID      uint
		productID   uint
		warehouseID uint
		qty         int
	}{
		{"missing user", 0, f.product.ID, f.warehouse.ID, 1},
		{"missing product", f.user.ID, 0, f.warehouse.ID, 1},
		{"missing warehouse", f.user.ID, f.product.ID, 0, 1},
		{"zero qty", f.user.ID, f.product.ID, f.warehouse.ID, 0},
		{"negative qty", f.user.ID, f.product.ID, f.warehouse.ID, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.workflow.PlaceClientOrder(tc.userID, tc.productID, tc.warehouseID, tc.qty)
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}
}

func TestPlaceClientOrderNoAlertAboveSafety(t *testing.T) {
	f := newFixture(t)
	f.seedLevel(t, 10, 2)

	_, err := f.workflow.PlaceClientOrder(f.user.ID, f.product.ID, f.warehouse.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.alerts)
}

func TestReceiveCreatesLevel(t *testing.T) {
	f := newFixture(t)

	po, err := f.workflow.CreatePurchaseOrder(nil, f.product.ID, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlaced, po.Status)

	require.NoError(t, f.workflow.Receive(po.ID, f.warehouse.ID))

	level, err := f.ledger.GetLevel(f.product.ID, f.warehouse.ID)
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, 10, level.StockQty)
	assert.Equal(t, 0, level.SafetyStock)

	var reloaded model.PurchaseOrder
	require.NoError(t, f.db.First(&reloaded, po.ID).Error)
	assert.Equal(t, model.StatusDelivered, reloaded.Status)
}

func TestReceiveAddsToExistingLevel(t *testing.T) {
	f := newFixture(t)
	f.seedLevel(t, 4, 1)

	po, err := f.workflow.CreatePurchaseOrder(nil, f.product.ID, 6, nil)
	require.NoError(t, err)
	require.NoError(t, f.workflow.Receive(po.ID, f.warehouse.ID))

	level, err := f.ledger.GetLevel(f.product.ID, f.warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, level.StockQty)
	assert.Equal(t, 1, level.SafetyStock)
}

func TestReceiveUnknownOrder(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.workflow.Receive(99, f.warehouse.ID), ErrOrderNotFound)
}

func TestReceiveTwiceDoesNotDoubleIncrement(t *testing.T) {
	f := newFixture(t)

	po, err := f.workflow.CreatePurchaseOrder(nil, f.product.ID, 10, nil)
	require.NoError(t, err)
	require.NoError(t, f.workflow.Receive(po.ID, f.warehouse.ID))

	assert.ErrorIs(t, f.workflow.Receive(po.ID, f.warehouse.ID), ErrNotReceivable)

	level, err := f.ledger.GetLevel(f.product.ID, f.warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, level.StockQty)
}

func TestReceiveConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)

	po, err := f.workflow.CreatePurchaseOrder(nil, f.product.ID, 10, nil)
	require.NoError(t, err)

	// All workers observe Placed before any of them commits; only one may
	// win the increment.
	const workers = 4
	start := make(chan struct{})
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- f.workflow.Receive(po.ID, f.warehouse.ID)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrNotReceivable)
		}
	}
	assert.Equal(t, 1, succeeded)

	level, err := f.ledger.GetLevel(f.product.ID, f.warehouse.ID)
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, 10, level.StockQty)

	var reloaded model.PurchaseOrder
	require.NoError(t, f.db.First(&reloaded, po.ID).Error)
	assert.Equal(t, model.StatusDelivered, reloaded.Status)
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.CreatePurchaseOrder(nil, 0, 5, nil)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = f.workflow.CreatePurchaseOrder(nil, f.product.ID, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestSetStatusTransitions(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		wantErr error
	}{
		{model.StatusPlaced, model.StatusDelivered, nil},
		{model.StatusPlaced, model.StatusCancelled, nil},
		{model.StatusPlaced, model.StatusCompleted, ErrInvalidTransition},
		{model.StatusDelivered, model.StatusCompleted, nil},
		{model.StatusDelivered, model.StatusCancelled, nil},
		{model.StatusDelivered, model.StatusPlaced, ErrInvalidTransition},
		{model.StatusCompleted, model.StatusCancelled, ErrInvalidTransition},
		{model.StatusCancelled, model.StatusPlaced, ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.from+"_to_"+tc.to, func(t *testing.T) {
			f := newFixture(t)
			po, err := f.workflow.CreatePurchaseOrder(nil, f.product.ID, 5, nil)
			require.NoError(t, err)
			require.NoError(t, f.db.Model(po).Update("status", tc.from).Error)

			err = f.workflow.SetStatus(po.ID, tc.to)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				var reloaded model.PurchaseOrder
				require.NoError(t, f.db.First(&reloaded, po.ID).Error)
				assert.Equal(t, tc.to, reloaded.Status)
			}
		})
	}
}

func TestSetStatusUnknownValue(t *testing.T) {
	f := newFixture(t)
	po, err := f.workflow.CreatePurchaseOrder(nil, f.product.ID, 5, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.workflow.SetStatus(po.ID, "Shipped"), ErrInvalidStatus)
}

func TestSetStatusUnknownOrder(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.workflow.SetStatus(123, model.StatusCancelled), ErrOrderNotFound)
}

func TestListPurchaseOrdersJoins(t *testing.T) {
	f := newFixture(t)

	supplier := model.Supplier{CompanyName: "Acme Corp", Rating: 4}
	require.NoError(t, f.db.Create(&supplier).Error)

	_, err := f.workflow.CreatePurchaseOrder(&supplier.ID, f.product.ID, 5, nil)
	require.NoError(t, err)
	_, err = f.workflow.CreatePurchaseOrder(nil, f.product.ID, 2, nil)
	require.NoError(t, err)

	rows, err := f.workflow.ListPurchaseOrders()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var withSupplier, withoutSupplier *PurchaseOrderRow
	for i := range rows {
		if rows[i].SupplierID != nil {
			withSupplier = &rows[i]
		} else {
			withoutSupplier = &rows[i]
		}
	}
	require.NotNil(t, withSupplier)
	require.NotNil(t, withoutSupplier)
	require.NotNil(t, withSupplier.CompanyName)
	assert.Equal(t, "Acme Corp", *withSupplier.CompanyName)
	require.NotNil(t, withSupplier.ProductName)
	assert.Equal(t, "Widget", *withSupplier.ProductName)
	assert.Nil(t, withoutSupplier.CompanyName)
}

func TestListClientOrdersByUser(t *testing.T) {
	f := newFixture(t)
	f.seedLevel(t, 10, 0)

	other := model.User{Name: "Other", Email: "other@example.com", Password: "x", Role: model.RoleClient}
	require.NoError(t, f.db.Create(&other).Error)

	_, err := f.workflow.PlaceClientOrder(f.user.ID, f.product.ID, f.warehouse.ID, 1)
	require.NoError(t, err)
	_, err = f.workflow.PlaceClientOrder(other.ID, f.product.ID, f.warehouse.ID, 2)
	require.NoError(t, err)

	mine, err := f.workflow.ListClientOrders(f.user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.user.ID, mine[0].UserID)

	all, err := f.workflow.ListAllClientOrders()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListSales(t *testing.T) {
	f := newFixture(t)
	f.seedLevel(t, 10, 0)

	_, err := f.workflow.PlaceClientOrder(f.user.ID, f.product.ID, f.warehouse.ID, 4)
	require.NoError(t, err)

	sales, err := f.workflow.ListSales()
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 4, sales[0].QtySold)
}
