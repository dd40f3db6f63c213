package domain

import "time"

type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Pcs       int       `json:"pcs"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductCreateRequest struct {
	Name  string  `json:"name"`
	Pcs   int     `json:"pcs"`
	Price float64 `json:"price"`
}

type ProductUpdateRequest struct {
	Name  *string  `json:"name,omitempty"`
	Pcs   *int     `json:"pcs,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

// DeliveryLineInput is one editable row of the delivery form. ProductID 0
// means no product has been selected yet; such rows are ignored by the
// calculation and by save.
type DeliveryLineInput struct {
	ProductID        int64   `json:"product_id"`
	DeliveredCartons int     `json:"delivered_cartons"`
	DeliveredPieces  int     `json:"delivered_pieces"`
	ReturnedCartons  int     `json:"returned_cartons"`
	ReturnedPieces   int     `json:"returned_pieces"`
	UnitPrice        float64 `json:"unit_price"`
}

// DeliveryLine is the persisted form of a line: the input fields plus the
// derived sold quantity and rounded line total.
type DeliveryLine struct {
	ProductID        int64   `json:"product_id"`
	ProductName      string  `json:"product_name"`
	DeliveredCartons int     `json:"delivered_cartons"`
	DeliveredPieces  int     `json:"delivered_pieces"`
	ReturnedCartons  int     `json:"returned_cartons"`
	ReturnedPieces   int     `json:"returned_pieces"`
	UnitPrice        float64 `json:"unit_price"`
	Sold             int     `json:"sold"`
	LineTotal        int64   `json:"line_total"`
}

type CashCountInput struct {
	Note int64 `json:"note"`
	Qty  int   `json:"qty"`
}

type CashCount struct {
	Note  int64 `json:"note"`
	Qty   int   `json:"qty"`
	Total int64 `json:"total"`
}

type ExpenseLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type DeliveryTotals struct {
	SalesTotal   int64 `json:"sales_total"`
	CashTotal    int64 `json:"cash_total"`
	ExpenseTotal int64 `json:"expense_total"`
	NetTotal     int64 `json:"net_total"`
}

type DeliveryRecord struct {
	ID           int64          `json:"id"`
	CustomerName string         `json:"customer_name"`
	Date         time.Time      `json:"date"`
	SalesTotal   int64          `json:"sales_total"`
	CashTotal    int64          `json:"cash_total"`
	ExpenseTotal int64          `json:"expense_total"`
	NetTotal     int64          `json:"net_total"`
	Lines        []DeliveryLine `json:"lines"`
	Expenses     []ExpenseLine  `json:"expenses"`
	CashCounts   []CashCount    `json:"cash_counts"`
}

// DeliverySaveRequest carries the full form state for a save. ID 0 creates
// a new record; a non-zero ID replaces the existing record in place.
// ReconcileStock opts update mode into re-applying the per-product sold
// delta to the stock ledger; create mode always decrements stock.
type DeliverySaveRequest struct {
	ID             int64               `json:"id,omitempty"`
	CustomerName   string              `json:"customer_name"`
	Lines          []DeliveryLineInput `json:"lines"`
	Expenses       []ExpenseLine       `json:"expenses"`
	CashCounts     []CashCountInput    `json:"cash_counts"`
	ReconcileStock bool                `json:"reconcile_stock,omitempty"`
}

type DeliveryPreview struct {
	Lines  []DeliveryLine `json:"lines"`
	Totals DeliveryTotals `json:"totals"`
}

// DeliveryEditState is the form state reconstructed from a stored record.
type DeliveryEditState struct {
	ID           int64               `json:"id"`
	CustomerName string              `json:"customer_name"`
	Lines        []DeliveryLineInput `json:"lines"`
	Expenses     []ExpenseLine       `json:"expenses"`
	CashCounts   []CashCountInput    `json:"cash_counts"`
}

type StockRecord struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	LastUpdated time.Time `json:"last_updated"`
}

// StockHistoryEntry is one append-only ledger line. Change always records
// the requested delta; NewQuantity records the post-clamp quantity, so the
// two disagree when an over-decrement was clamped at zero. OldQuantity is
// only set by absolute adjustments.
type StockHistoryEntry struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Change      int       `json:"change"`
	OldQuantity *int      `json:"old_quantity,omitempty"`
	NewQuantity int       `json:"new_quantity"`
	Reason      string    `json:"reason"`
	Date        time.Time `json:"date"`
}

type StockRestockRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note"`
}

type StockAdjustRequest struct {
	ProductID   int64  `json:"product_id"`
	NewQuantity int    `json:"new_quantity"`
	Reason      string `json:"reason"`
}

type StockView struct {
	StockRecord
	Status string `json:"status"`
}

type SyncStatusRecord struct {
	ID          int64      `json:"id"`
	StoreName   string     `json:"store_name"`
	RecordID    int64      `json:"record_id"`
	Status      string     `json:"status"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SyncRunResult struct {
	RunID    string `json:"run_id"`
	Synced   int    `json:"synced"`
	SyncedAt string `json:"synced_at"`
}

type Employee struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	SalaryType string    `json:"salary_type"`
	SalaryRate float64   `json:"salary_rate"`
	IsActive   bool      `json:"is_active"`
	JoinedAt   time.Time `json:"joined_at"`
}

type EmployeeCreateRequest struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Role       string  `json:"role"`
	SalaryType string  `json:"salary_type"`
	SalaryRate float64 `json:"salary_rate"`
}

type EmployeeUpdateRequest struct {
	Name       *string  `json:"name,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Role       *string  `json:"role,omitempty"`
	SalaryType *string  `json:"salary_type,omitempty"`
	SalaryRate *float64 `json:"salary_rate,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// AttendanceRecord marks one employee on one calendar day. Date is the day
// in "2006-01-02" form; (EmployeeID, Date) is unique.
type AttendanceRecord struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type AttendanceMarkRequest struct {
	EmployeeID int64  `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

type AdvanceRecord struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note"`
	Date       time.Time `json:"date"`
}

type AdvanceCreateRequest struct {
	EmployeeID int64   `json:"employee_id"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
}

type CreditRecord struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	Amount       float64   `json:"amount"`
	Note         string    `json:"note"`
	Settled      bool      `json:"settled"`
	Date         time.Time `json:"date"`
}

type CreditCreateRequest struct {
	CustomerName string  `json:"customer_name"`
	Amount       float64 `json:"amount"`
	Note         string  `json:"note"`
}

// ExpenseRecord is the standalone expense book, separate from the expense
// lines embedded in a delivery record.
type ExpenseRecord struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

type ExpenseCreateRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type DashboardSummary struct {
	Date          string `json:"date"`
	Deliveries    int    `json:"deliveries"`
	SalesTotal    int64  `json:"sales_total"`
	CashTotal     int64  `json:"cash_total"`
	ExpenseTotal  int64  `json:"expense_total"`
	NetTotal      int64  `json:"net_total"`
	OutOfStock    int    `json:"out_of_stock"`
	LowStock      int    `json:"low_stock"`
	PendingSync   int    `json:"pending_sync"`
	ActiveWorkers int    `json:"active_workers"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// CashNotes is the fixed denomination set for the cash counting table,
// largest note first.
var CashNotes = []int64{1000, 500, 200, 100, 50, 20, 10, 5, 2, 1}

// LowStockThreshold is the boundary between low_stock and normal.
const LowStockThreshold = 50

const (
	StockStatusOut    = "out_of_stock"
	StockStatusLow    = "low_stock"
	StockStatusNormal = "normal"
)

const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
)

const (
	RoleDeliveryman = "deliveryman"
	RoleHelper      = "helper"
)

const (
	SalaryTypeDaily   = "daily"
	SalaryTypeMonthly = "monthly"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)
