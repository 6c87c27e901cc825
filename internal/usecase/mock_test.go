package usecase

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// noopLogger глушит вывод в тестах.
type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...any)            {}
func (noopLogger) Infof(format string, args ...any)             {}
func (noopLogger) Warnf(format string, args ...any)             {}
func (noopLogger) Errorf(err error, format string, args ...any) {}

// stubTx — pgx.Tx, за которым нет соединения: юзкейсы трогают транзакцию
// только через замоканные репозитории.
type stubTx struct{}

func (stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return stubTx{}, nil }
func (stubTx) Commit(ctx context.Context) error          { return nil }
func (stubTx) Rollback(ctx context.Context) error        { return nil }
func (stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (stubTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (stubTx) Conn() *pgx.Conn                                               { return nil }

type fakeTxPool struct{}

func (fakeTxPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return stubTx{}, nil
}

type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) GetByInventoryItemID(ctx context.Context, inventoryItemID int64) (*domain.Product, error) {
	args := m.Called(ctx, inventoryItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) GetByProductID(ctx context.Context, productID int64) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) GetForUpdate(ctx context.Context, inventoryItemID int64) (*domain.Product, error) {
	args := m.Called(ctx, inventoryItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) SetNotifiedState(ctx context.Context, id int64, level, group int32) error {
	args := m.Called(ctx, id, level, group)
	return args.Error(0)
}

func (m *MockProductRepo) SetQuantity(ctx context.Context, id int64, quantity int32) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockProductRepo) SetLocation(ctx context.Context, id int64, locationID int64) error {
	args := m.Called(ctx, id, locationID)
	return args.Error(0)
}

func (m *MockProductRepo) DeleteByInventoryItemID(ctx context.Context, inventoryItemID int64) (bool, error) {
	args := m.Called(ctx, inventoryItemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepo) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, inventoryItemID int64) (bool, error) {
	args := m.Called(ctx, inventoryItemID)
	return args.Bool(0), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProducts(ctx context.Context, limit int, sinceID int64) ([]CatalogProduct, error) {
	args := m.Called(ctx, limit, sinceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CatalogProduct), args.Error(1)
}

func (m *MockCatalog) GetInventoryItem(ctx context.Context, inventoryItemID int64) (*InventoryItem, error) {
	args := m.Called(ctx, inventoryItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InventoryItem), args.Error(1)
}

func (m *MockCatalog) GetLocations(ctx context.Context) ([]Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Location), args.Error(1)
}

func (m *MockCatalog) GetVariantBySKU(ctx context.Context, sku string) (*VariantDetails, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VariantDetails), args.Error(1)
}

func (m *MockCatalog) SetInventoryQuantity(ctx context.Context, inventoryItemID, locationID int64, quantity int32) ([]UserError, error) {
	args := m.Called(ctx, inventoryItemID, locationID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]UserError), args.Error(1)
}

func (m *MockCatalog) DeleteProduct(ctx context.Context, productID int64) ([]UserError, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]UserError), args.Error(1)
}

func (m *MockCatalog) ListWebhooks(ctx context.Context) ([]WebhookSubscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WebhookSubscription), args.Error(1)
}

func (m *MockCatalog) RegisterWebhook(ctx context.Context, topic, address string) (*WebhookSubscription, error) {
	args := m.Called(ctx, topic, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WebhookSubscription), args.Error(1)
}

func (m *MockCatalog) DeleteWebhook(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) DispatchLowStock(ctx context.Context, product *domain.Product, level, available int32) (bool, error) {
	args := m.Called(ctx, product, level, available)
	return args.Bool(0), args.Error(1)
}

func (m *MockDispatcher) DispatchQuantityUpdated(ctx context.Context, product *domain.Product, newQuantity int32) {
	m.Called(ctx, product, newQuantity)
}

func (m *MockDispatcher) DispatchProductDeleted(ctx context.Context, product *domain.Product, source string) {
	m.Called(ctx, product, source)
}

type MockAlertRepo struct {
	mock.Mock
}

func (m *MockAlertRepo) LogAttempt(ctx context.Context, log *domain.AlertLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAlertRepo) CreateInventoryAlert(ctx context.Context, alert *domain.InventoryAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

type MockRecipientRepo struct {
	mock.Mock
}

func (m *MockRecipientRepo) ListEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to string, cc []string, subject, body string) error {
	args := m.Called(ctx, to, cc, subject, body)
	return args.Error(0)
}
