package store

import (
	"context"
	"errors"

	"mimipro/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate record")
)

// Repository is the persistence boundary. Implementations guarantee
// per-call isolation only; multi-call sequences are coordinated by the
// service layer.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByName(ctx context.Context, name string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListStock(ctx context.Context) ([]domain.StockRecord, error)
	GetStockByProduct(ctx context.Context, productID int64) (*domain.StockRecord, error)
	CreateStock(ctx context.Context, record domain.StockRecord) (*domain.StockRecord, error)
	UpdateStock(ctx context.Context, record domain.StockRecord) (*domain.StockRecord, error)

	AppendStockHistory(ctx context.Context, entry domain.StockHistoryEntry) (*domain.StockHistoryEntry, error)
	ListStockHistory(ctx context.Context, productID int64, limit int) ([]domain.StockHistoryEntry, error)

	ListDeliveries(ctx context.Context, limit int) ([]domain.DeliveryRecord, error)
	GetDelivery(ctx context.Context, id int64) (*domain.DeliveryRecord, error)
	CreateDelivery(ctx context.Context, record domain.DeliveryRecord) (*domain.DeliveryRecord, error)
	UpdateDelivery(ctx context.Context, record domain.DeliveryRecord) (*domain.DeliveryRecord, error)

	CreateSyncStatus(ctx context.Context, record domain.SyncStatusRecord) (*domain.SyncStatusRecord, error)
	ListSyncStatus(ctx context.Context) ([]domain.SyncStatusRecord, error)
	UpdateSyncStatus(ctx context.Context, record domain.SyncStatusRecord) (*domain.SyncStatusRecord, error)

	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)

	CreateAttendance(ctx context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error)
	ListAttendance(ctx context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error)

	CreateAdvance(ctx context.Context, record domain.AdvanceRecord) (*domain.AdvanceRecord, error)
	ListAdvances(ctx context.Context, employeeID int64) ([]domain.AdvanceRecord, error)

	CreateCredit(ctx context.Context, record domain.CreditRecord) (*domain.CreditRecord, error)
	ListCredits(ctx context.Context, includeSettled bool) ([]domain.CreditRecord, error)
	SettleCredit(ctx context.Context, id int64) (*domain.CreditRecord, error)

	CreateExpense(ctx context.Context, record domain.ExpenseRecord) (*domain.ExpenseRecord, error)
	ListExpenses(ctx context.Context, limit int) ([]domain.ExpenseRecord, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
