// Package memory implements store.Repository with mutex-guarded maps and
// auto-increment integer keys, mirroring the IndexedDB layout the mobile
// client persisted to. It backs dev/demo mode and all unit tests.
package memory

import (
	"cmp"
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

type Store struct {
	mu sync.RWMutex

	products     map[int64]domain.Product
	stock        map[int64]domain.StockRecord
	stockByProd  map[int64]int64
	stockHistory []domain.StockHistoryEntry
	deliveries   map[int64]domain.DeliveryRecord
	syncStatus   map[int64]domain.SyncStatusRecord
	employees    map[int64]domain.Employee
	attendance   map[int64]domain.AttendanceRecord
	advances     []domain.AdvanceRecord
	credits      map[int64]domain.CreditRecord
	expenses     []domain.ExpenseRecord
	users        map[string]domain.UserAccount

	seq map[string]int64
}

func New() *Store {
	return &Store{
		products:     make(map[int64]domain.Product),
		stock:        make(map[int64]domain.StockRecord),
		stockByProd:  make(map[int64]int64),
		stockHistory: make([]domain.StockHistoryEntry, 0, 128),
		deliveries:   make(map[int64]domain.DeliveryRecord),
		syncStatus:   make(map[int64]domain.SyncStatusRecord),
		employees:    make(map[int64]domain.Employee),
		attendance:   make(map[int64]domain.AttendanceRecord),
		advances:     make([]domain.AdvanceRecord, 0, 64),
		credits:      make(map[int64]domain.CreditRecord),
		expenses:     make([]domain.ExpenseRecord, 0, 64),
		users:        make(map[string]domain.UserAccount),
		seq:          make(map[string]int64),
	}
}

// seedUsers builds the initial user accounts for dev/demo mode. The admin
// password is read from SEED_ADMIN_PASSWORD; a hardcoded dev default is
// used with a warning when unset. Production deployments use PostgreSQL
// and bootstrap users from configuration instead.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD to override.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPwd), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[memory-store] failed to hash seed password: %v", err)
	}

	return map[string]domain.UserAccount{
		"admin": {
			Username:  "admin",
			Password:  string(hash),
			Role:      "admin",
			Active:    true,
			CreatedAt: time.Now().UTC(),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	s := New()
	s.users = seedUsers()

	now := time.Now().UTC()
	seedProducts := []domain.Product{
		{Name: "Coca Cola 250ml", Pcs: 24, Price: 20},
		{Name: "Pepsi 250ml", Pcs: 24, Price: 20},
		{Name: "Mineral Water 500ml", Pcs: 12, Price: 15},
		{Name: "Orange Juice 1L", Pcs: 6, Price: 60},
		{Name: "Biscuit Pack", Pcs: 48, Price: 5},
	}
	for _, p := range seedProducts {
		p.ID = s.next("products")
		p.CreatedAt = now
		s.products[p.ID] = p

		rec := domain.StockRecord{
			ID:          s.next("stock"),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    120,
			LastUpdated: now,
		}
		s.stock[rec.ID] = rec
		s.stockByProd[p.ID] = rec.ID
	}

	return s
}

func (s *Store) next(collection string) int64 {
	s.seq[collection]++
	return s.seq[collection]
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyP := p
	return &copyP, nil
}

func (s *Store) GetProductByName(_ context.Context, name string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range s.products {
		if strings.ToLower(p.Name) == name {
			copyP := p
			return &copyP, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" || product.Pcs < 1 || product.Price <= 0 {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.products {
		if strings.EqualFold(existing.Name, product.Name) {
			return nil, store.ErrDuplicate
		}
	}

	product.ID = s.next("products")
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" || product.Pcs < 1 || product.Price <= 0 {
		return nil, store.ErrInvalidInput
	}
	existing, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for id, other := range s.products {
		if id != product.ID && strings.EqualFold(other.Name, product.Name) {
			return nil, store.ErrDuplicate
		}
	}

	product.CreatedAt = existing.CreatedAt
	s.products[product.ID] = product

	// Keep the denormalized product name on the stock record in step.
	if stockID, ok := s.stockByProd[product.ID]; ok {
		rec := s.stock[stockID]
		rec.ProductName = product.Name
		s.stock[stockID] = rec
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.stockByProd[id]; ok {
		return store.ErrInvalidInput
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListStock(_ context.Context) ([]domain.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.StockRecord, 0, len(s.stock))
	for _, rec := range s.stock {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b domain.StockRecord) int {
		return cmpString(a.ProductName, b.ProductName)
	})
	return records, nil
}

func (s *Store) GetStockByProduct(_ context.Context, productID int64) (*domain.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stockID, ok := s.stockByProd[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	rec := s.stock[stockID]
	copyRec := rec
	return &copyRec, nil
}

func (s *Store) CreateStock(_ context.Context, record domain.StockRecord) (*domain.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ProductID == 0 || record.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.stockByProd[record.ProductID]; exists {
		return nil, store.ErrDuplicate
	}

	record.ID = s.next("stock")
	if record.LastUpdated.IsZero() {
		record.LastUpdated = time.Now().UTC()
	}
	s.stock[record.ID] = record
	s.stockByProd[record.ProductID] = record.ID
	created := record
	return &created, nil
}

func (s *Store) UpdateStock(_ context.Context, record domain.StockRecord) (*domain.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, ok := s.stock[record.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.stock[record.ID] = record
	updated := record
	return &updated, nil
}

func (s *Store) AppendStockHistory(_ context.Context, entry domain.StockHistoryEntry) (*domain.StockHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.next("stock_history")
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	s.stockHistory = append(s.stockHistory, entry)
	created := entry
	return &created, nil
}

func (s *Store) ListStockHistory(_ context.Context, productID int64, limit int) ([]domain.StockHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StockHistoryEntry, 0, len(s.stockHistory))
	for _, entry := range s.stockHistory {
		if productID != 0 && entry.ProductID != productID {
			continue
		}
		result = append(result, entry)
	}
	slices.SortFunc(result, func(a, b domain.StockHistoryEntry) int {
		if a.Date.Equal(b.Date) {
			return cmp.Compare(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) ListDeliveries(_ context.Context, limit int) ([]domain.DeliveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.DeliveryRecord, 0, len(s.deliveries))
	for _, rec := range s.deliveries {
		records = append(records, cloneDelivery(rec))
	}
	slices.SortFunc(records, func(a, b domain.DeliveryRecord) int {
		if a.Date.Equal(b.Date) {
			return cmp.Compare(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Store) GetDelivery(_ context.Context, id int64) (*domain.DeliveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.deliveries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyRec := cloneDelivery(rec)
	return &copyRec, nil
}

func (s *Store) CreateDelivery(_ context.Context, record domain.DeliveryRecord) (*domain.DeliveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(record.CustomerName) == "" {
		return nil, store.ErrInvalidInput
	}
	record.ID = s.next("history")
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}
	s.deliveries[record.ID] = cloneDelivery(record)
	created := cloneDelivery(record)
	return &created, nil
}

func (s *Store) UpdateDelivery(_ context.Context, record domain.DeliveryRecord) (*domain.DeliveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(record.CustomerName) == "" {
		return nil, store.ErrInvalidInput
	}
	if _, ok := s.deliveries[record.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.deliveries[record.ID] = cloneDelivery(record)
	updated := cloneDelivery(record)
	return &updated, nil
}

func (s *Store) CreateSyncStatus(_ context.Context, record domain.SyncStatusRecord) (*domain.SyncStatusRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.StoreName == "" {
		return nil, store.ErrInvalidInput
	}
	record.ID = s.next("sync_status")
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Status == "" {
		record.Status = domain.SyncStatusPending
	}
	s.syncStatus[record.ID] = record
	created := record
	return &created, nil
}

func (s *Store) ListSyncStatus(_ context.Context) ([]domain.SyncStatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.SyncStatusRecord, 0, len(s.syncStatus))
	for _, rec := range s.syncStatus {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b domain.SyncStatusRecord) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return records, nil
}

func (s *Store) UpdateSyncStatus(_ context.Context, record domain.SyncStatusRecord) (*domain.SyncStatusRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.syncStatus[record.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.syncStatus[record.ID] = record
	updated := record
	return &updated, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees := make([]domain.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		employees = append(employees, e)
	}
	slices.SortFunc(employees, func(a, b domain.Employee) int {
		return cmpString(a.Name, b.Name)
	})
	return employees, nil
}

func (s *Store) GetEmployee(_ context.Context, id int64) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyE := e
	return &copyE, nil
}

func (s *Store) CreateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(employee.Name) == "" {
		return nil, store.ErrInvalidInput
	}
	employee.ID = s.next("employees")
	if employee.JoinedAt.IsZero() {
		employee.JoinedAt = time.Now().UTC()
	}
	s.employees[employee.ID] = employee
	created := employee
	return &created, nil
}

func (s *Store) UpdateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(employee.Name) == "" {
		return nil, store.ErrInvalidInput
	}
	if _, ok := s.employees[employee.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.employees[employee.ID] = employee
	updated := employee
	return &updated, nil
}

func (s *Store) CreateAttendance(_ context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.EmployeeID == 0 || record.Date == "" {
		return nil, store.ErrInvalidInput
	}
	if _, ok := s.employees[record.EmployeeID]; !ok {
		return nil, store.ErrNotFound
	}
	for _, existing := range s.attendance {
		if existing.EmployeeID == record.EmployeeID && existing.Date == record.Date {
			return nil, store.ErrDuplicate
		}
	}

	record.ID = s.next("attendance")
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.attendance[record.ID] = record
	created := record
	return &created, nil
}

func (s *Store) ListAttendance(_ context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.AttendanceRecord, 0, len(s.attendance))
	for _, rec := range s.attendance {
		if employeeID != 0 && rec.EmployeeID != employeeID {
			continue
		}
		if date != "" && rec.Date != date {
			continue
		}
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b domain.AttendanceRecord) int {
		if a.Date == b.Date {
			return cmp.Compare(a.ID, b.ID)
		}
		return cmpString(b.Date, a.Date)
	})
	return records, nil
}

func (s *Store) CreateAdvance(_ context.Context, record domain.AdvanceRecord) (*domain.AdvanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.EmployeeID == 0 || record.Amount <= 0 {
		return nil, store.ErrInvalidInput
	}
	if _, ok := s.employees[record.EmployeeID]; !ok {
		return nil, store.ErrNotFound
	}
	record.ID = s.next("advances")
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}
	s.advances = append(s.advances, record)
	created := record
	return &created, nil
}

func (s *Store) ListAdvances(_ context.Context, employeeID int64) ([]domain.AdvanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.AdvanceRecord, 0, len(s.advances))
	for _, rec := range s.advances {
		if employeeID != 0 && rec.EmployeeID != employeeID {
			continue
		}
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b domain.AdvanceRecord) int {
		if a.Date.Equal(b.Date) {
			return cmp.Compare(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return records, nil
}

func (s *Store) CreateCredit(_ context.Context, record domain.CreditRecord) (*domain.CreditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(record.CustomerName) == "" || record.Amount <= 0 {
		return nil, store.ErrInvalidInput
	}
	record.ID = s.next("credits")
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}
	s.credits[record.ID] = record
	created := record
	return &created, nil
}

func (s *Store) ListCredits(_ context.Context, includeSettled bool) ([]domain.CreditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.CreditRecord, 0, len(s.credits))
	for _, rec := range s.credits {
		if !includeSettled && rec.Settled {
			continue
		}
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b domain.CreditRecord) int {
		if a.Date.Equal(b.Date) {
			return cmp.Compare(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return records, nil
}

func (s *Store) SettleCredit(_ context.Context, id int64) (*domain.CreditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.credits[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if rec.Settled {
		return nil, store.ErrInvalidInput
	}
	rec.Settled = true
	s.credits[id] = rec
	updated := rec
	return &updated, nil
}

func (s *Store) CreateExpense(_ context.Context, record domain.ExpenseRecord) (*domain.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(record.Name) == "" || record.Amount <= 0 {
		return nil, store.ErrInvalidInput
	}
	record.ID = s.next("expenses")
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}
	s.expenses = append(s.expenses, record)
	created := record
	return &created, nil
}

func (s *Store) ListExpenses(_ context.Context, limit int) ([]domain.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.ExpenseRecord, len(s.expenses))
	copy(records, s.expenses)
	slices.SortFunc(records, func(a, b domain.ExpenseRecord) int {
		if a.Date.Equal(b.Date) {
			return cmp.Compare(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.users[username]; exists {
		return store.ErrDuplicate
	}
	user.Username = username
	if user.Role == "" {
		user.Role = "admin"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.users[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	user, exists := s.users[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.users[username] = user
	return nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneDelivery(src domain.DeliveryRecord) domain.DeliveryRecord {
	dup := src
	lines := make([]domain.DeliveryLine, len(src.Lines))
	copy(lines, src.Lines)
	dup.Lines = lines
	expenses := make([]domain.ExpenseLine, len(src.Expenses))
	copy(expenses, src.Expenses)
	dup.Expenses = expenses
	counts := make([]domain.CashCount, len(src.CashCounts))
	copy(counts, src.CashCounts)
	dup.CashCounts = counts
	return dup
}
