package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, pcs, price, created_at
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Pcs, &p.Price, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, pcs, price, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Pcs, &p.Price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, pcs, price, created_at
		FROM products
		WHERE lower(name) = lower($1)
	`, strings.TrimSpace(name)).Scan(&p.ID, &p.Name, &p.Pcs, &p.Price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" || product.Pcs < 1 || product.Price <= 0 {
		return nil, store.ErrInvalidInput
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, pcs, price, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, product.Name, product.Pcs, product.Price, product.CreatedAt).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" || product.Pcs < 1 || product.Price <= 0 {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, pcs = $3, price = $4
		WHERE id = $1
	`, product.ID, product.Name, product.Pcs, product.Price)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	// Stock rows carry a denormalized product name for list views.
	_, err = s.db.ExecContext(ctx, `
		UPDATE stock_records SET product_name = $2 WHERE product_id = $1
	`, product.ID, product.Name)
	if err != nil {
		return nil, err
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	var stockCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM stock_records WHERE product_id = $1
	`, id).Scan(&stockCount)
	if err != nil {
		return err
	}
	if stockCount > 0 {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListStock(ctx context.Context) ([]domain.StockRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, quantity, last_updated
		FROM stock_records
		ORDER BY product_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.StockRecord, 0, 64)
	for rows.Next() {
		var record domain.StockRecord
		if err := rows.Scan(&record.ID, &record.ProductID, &record.ProductName, &record.Quantity, &record.LastUpdated); err != nil {
			return nil, err
		}
		record.LastUpdated = record.LastUpdated.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) GetStockByProduct(ctx context.Context, productID int64) (*domain.StockRecord, error) {
	var record domain.StockRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, product_name, quantity, last_updated
		FROM stock_records
		WHERE product_id = $1
	`, productID).Scan(&record.ID, &record.ProductID, &record.ProductName, &record.Quantity, &record.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	record.LastUpdated = record.LastUpdated.UTC()
	return &record, nil
}

func (s *Store) CreateStock(ctx context.Context, record domain.StockRecord) (*domain.StockRecord, error) {
	if record.ProductID < 1 || record.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if record.LastUpdated.IsZero() {
		record.LastUpdated = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO stock_records (product_id, product_name, quantity, last_updated)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, record.ProductID, record.ProductName, record.Quantity, record.LastUpdated).Scan(&record.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := record
	return &created, nil
}

func (s *Store) UpdateStock(ctx context.Context, record domain.StockRecord) (*domain.StockRecord, error) {
	if record.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if record.LastUpdated.IsZero() {
		record.LastUpdated = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE stock_records
		SET quantity = $2, last_updated = $3
		WHERE id = $1
	`, record.ID, record.Quantity, record.LastUpdated)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := record
	return &updated, nil
}

func (s *Store) AppendStockHistory(ctx context.Context, entry domain.StockHistoryEntry) (*domain.StockHistoryEntry, error) {
	if entry.ProductID < 1 || strings.TrimSpace(entry.Reason) == "" {
		return nil, store.ErrInvalidInput
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO stock_history (product_id, product_name, change, old_quantity, new_quantity, reason, date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, entry.ProductID, entry.ProductName, entry.Change, nullInt(entry.OldQuantity), entry.NewQuantity, entry.Reason, entry.Date).Scan(&entry.ID)
	if err != nil {
		return nil, err
	}

	created := entry
	return &created, nil
}

func (s *Store) ListStockHistory(ctx context.Context, productID int64, limit int) ([]domain.StockHistoryEntry, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, change, old_quantity, new_quantity, reason, date
		FROM stock_history
		WHERE ($1 = 0 OR product_id = $1)
		ORDER BY date DESC, id DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.StockHistoryEntry, 0, limit)
	for rows.Next() {
		var entry domain.StockHistoryEntry
		var oldQty sql.NullInt64
		if err := rows.Scan(&entry.ID, &entry.ProductID, &entry.ProductName, &entry.Change, &oldQty, &entry.NewQuantity, &entry.Reason, &entry.Date); err != nil {
			return nil, err
		}
		if oldQty.Valid {
			old := int(oldQty.Int64)
			entry.OldQuantity = &old
		}
		entry.Date = entry.Date.UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) ListDeliveries(ctx context.Context, limit int) ([]domain.DeliveryRecord, error) {
	query := `
		SELECT id, customer_name, date, sales_total, cash_total, expense_total, net_total,
			lines, expenses, cash_counts
		FROM deliveries
		ORDER BY date DESC, id DESC
	`
	args := []any{}
	// limit < 1 means no cap, matching the in-memory store.
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.DeliveryRecord, 0, 32)
	for rows.Next() {
		record, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) GetDelivery(ctx context.Context, id int64) (*domain.DeliveryRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_name, date, sales_total, cash_total, expense_total, net_total,
			lines, expenses, cash_counts
		FROM deliveries
		WHERE id = $1
	`, id)
	record, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *Store) CreateDelivery(ctx context.Context, record domain.DeliveryRecord) (*domain.DeliveryRecord, error) {
	if strings.TrimSpace(record.CustomerName) == "" || len(record.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}

	lines, expenses, cashCounts, err := marshalDeliveryDocs(record)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO deliveries (customer_name, date, sales_total, cash_total, expense_total, net_total,
			lines, expenses, cash_counts)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, record.CustomerName, record.Date, record.SalesTotal, record.CashTotal, record.ExpenseTotal, record.NetTotal,
		lines, expenses, cashCounts).Scan(&record.ID)
	if err != nil {
		return nil, err
	}

	created := record
	return &created, nil
}

func (s *Store) UpdateDelivery(ctx context.Context, record domain.DeliveryRecord) (*domain.DeliveryRecord, error) {
	if strings.TrimSpace(record.CustomerName) == "" || len(record.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}

	lines, expenses, cashCounts, err := marshalDeliveryDocs(record)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE deliveries
		SET customer_name = $2, date = $3, sales_total = $4, cash_total = $5,
			expense_total = $6, net_total = $7, lines = $8, expenses = $9, cash_counts = $10
		WHERE id = $1
	`, record.ID, record.CustomerName, record.Date, record.SalesTotal, record.CashTotal,
		record.ExpenseTotal, record.NetTotal, lines, expenses, cashCounts)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := record
	return &updated, nil
}

func (s *Store) CreateSyncStatus(ctx context.Context, record domain.SyncStatusRecord) (*domain.SyncStatusRecord, error) {
	if strings.TrimSpace(record.StoreName) == "" {
		return nil, store.ErrInvalidInput
	}
	if record.Status == "" {
		record.Status = domain.SyncStatusPending
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sync_status (store_name, record_id, status, last_attempt, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, record.StoreName, record.RecordID, record.Status, nullTimePtr(record.LastAttempt), record.CreatedAt).Scan(&record.ID)
	if err != nil {
		return nil, err
	}

	created := record
	return &created, nil
}

func (s *Store) ListSyncStatus(ctx context.Context) ([]domain.SyncStatusRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_name, record_id, status, last_attempt, created_at
		FROM sync_status
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.SyncStatusRecord, 0, 32)
	for rows.Next() {
		var record domain.SyncStatusRecord
		var lastAttempt sql.NullTime
		if err := rows.Scan(&record.ID, &record.StoreName, &record.RecordID, &record.Status, &lastAttempt, &record.CreatedAt); err != nil {
			return nil, err
		}
		if lastAttempt.Valid {
			at := lastAttempt.Time.UTC()
			record.LastAttempt = &at
		}
		record.CreatedAt = record.CreatedAt.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) UpdateSyncStatus(ctx context.Context, record domain.SyncStatusRecord) (*domain.SyncStatusRecord, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sync_status
		SET status = $2, last_attempt = $3
		WHERE id = $1
	`, record.ID, record.Status, nullTimePtr(record.LastAttempt))
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := record
	return &updated, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, role, salary_type, salary_rate, is_active, joined_at
		FROM employees
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0, 16)
	for rows.Next() {
		var employee domain.Employee
		if err := rows.Scan(&employee.ID, &employee.Name, &employee.Phone, &employee.Role, &employee.SalaryType, &employee.SalaryRate, &employee.IsActive, &employee.JoinedAt); err != nil {
			return nil, err
		}
		employee.JoinedAt = employee.JoinedAt.UTC()
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	var employee domain.Employee
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, role, salary_type, salary_rate, is_active, joined_at
		FROM employees
		WHERE id = $1
	`, id).Scan(&employee.ID, &employee.Name, &employee.Phone, &employee.Role, &employee.SalaryType, &employee.SalaryRate, &employee.IsActive, &employee.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	employee.JoinedAt = employee.JoinedAt.UTC()
	return &employee, nil
}

func (s *Store) CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	employee.Name = strings.TrimSpace(employee.Name)
	if employee.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if employee.JoinedAt.IsZero() {
		employee.JoinedAt = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO employees (name, phone, role, salary_type, salary_rate, is_active, joined_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, employee.Name, employee.Phone, employee.Role, employee.SalaryType, employee.SalaryRate, employee.IsActive, employee.JoinedAt).Scan(&employee.ID)
	if err != nil {
		return nil, err
	}

	created := employee
	return &created, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	employee.Name = strings.TrimSpace(employee.Name)
	if employee.Name == "" {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees
		SET name = $2, phone = $3, role = $4, salary_type = $5, salary_rate = $6, is_active = $7
		WHERE id = $1
	`, employee.ID, employee.Name, employee.Phone, employee.Role, employee.SalaryType, employee.SalaryRate, employee.IsActive)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := employee
	return &updated, nil
}

func (s *Store) CreateAttendance(ctx context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	if record.EmployeeID < 1 || record.Date == "" || record.Status == "" {
		return nil, store.ErrInvalidInput
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO attendance (employee_id, date, status, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, record.EmployeeID, record.Date, record.Status, record.CreatedAt).Scan(&record.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := record
	return &created, nil
}

func (s *Store) ListAttendance(ctx context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, date, status, created_at
		FROM attendance
		WHERE ($1 = 0 OR employee_id = $1)
			AND ($2 = '' OR date = $2)
		ORDER BY date DESC, id DESC
	`, employeeID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.AttendanceRecord, 0, 32)
	for rows.Next() {
		var record domain.AttendanceRecord
		if err := rows.Scan(&record.ID, &record.EmployeeID, &record.Date, &record.Status, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.CreatedAt = record.CreatedAt.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) CreateAdvance(ctx context.Context, record domain.AdvanceRecord) (*domain.AdvanceRecord, error) {
	if record.EmployeeID < 1 || record.Amount <= 0 {
		return nil, store.ErrInvalidInput
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO advances (employee_id, amount, note, date)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, record.EmployeeID, record.Amount, record.Note, record.Date).Scan(&record.ID)
	if err != nil {
		return nil, err
	}

	created := record
	return &created, nil
}

func (s *Store) ListAdvances(ctx context.Context, employeeID int64) ([]domain.AdvanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, amount, note, date
		FROM advances
		WHERE ($1 = 0 OR employee_id = $1)
		ORDER BY date DESC, id DESC
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.AdvanceRecord, 0, 32)
	for rows.Next() {
		var record domain.AdvanceRecord
		if err := rows.Scan(&record.ID, &record.EmployeeID, &record.Amount, &record.Note, &record.Date); err != nil {
			return nil, err
		}
		record.Date = record.Date.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) CreateCredit(ctx context.Context, record domain.CreditRecord) (*domain.CreditRecord, error) {
	record.CustomerName = strings.TrimSpace(record.CustomerName)
	if record.CustomerName == "" || record.Amount <= 0 {
		return nil, store.ErrInvalidInput
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}
	record.Settled = false

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO credits (customer_name, amount, note, settled, date)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, record.CustomerName, record.Amount, record.Note, record.Settled, record.Date).Scan(&record.ID)
	if err != nil {
		return nil, err
	}

	created := record
	return &created, nil
}

func (s *Store) ListCredits(ctx context.Context, includeSettled bool) ([]domain.CreditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_name, amount, note, settled, date
		FROM credits
		WHERE ($1 OR settled = false)
		ORDER BY date DESC, id DESC
	`, includeSettled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.CreditRecord, 0, 32)
	for rows.Next() {
		var record domain.CreditRecord
		if err := rows.Scan(&record.ID, &record.CustomerName, &record.Amount, &record.Note, &record.Settled, &record.Date); err != nil {
			return nil, err
		}
		record.Date = record.Date.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SettleCredit(ctx context.Context, id int64) (*domain.CreditRecord, error) {
	var record domain.CreditRecord
	err := s.db.QueryRowContext(ctx, `
		UPDATE credits
		SET settled = true
		WHERE id = $1 AND settled = false
		RETURNING id, customer_name, amount, note, settled, date
	`, id).Scan(&record.ID, &record.CustomerName, &record.Amount, &record.Note, &record.Settled, &record.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish a missing credit from one already settled.
			var exists bool
			checkErr := s.db.QueryRowContext(ctx, `SELECT true FROM credits WHERE id = $1`, id).Scan(&exists)
			if checkErr == nil {
				return nil, store.ErrInvalidInput
			}
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	record.Date = record.Date.UTC()
	return &record, nil
}

func (s *Store) CreateExpense(ctx context.Context, record domain.ExpenseRecord) (*domain.ExpenseRecord, error) {
	record.Name = strings.TrimSpace(record.Name)
	if record.Name == "" || record.Amount <= 0 {
		return nil, store.ErrInvalidInput
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO expenses (name, amount, date)
		VALUES ($1,$2,$3)
		RETURNING id
	`, record.Name, record.Amount, record.Date).Scan(&record.ID)
	if err != nil {
		return nil, err
	}

	created := record
	return &created, nil
}

func (s *Store) ListExpenses(ctx context.Context, limit int) ([]domain.ExpenseRecord, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, date
		FROM expenses
		ORDER BY date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ExpenseRecord, 0, limit)
	for rows.Next() {
		var record domain.ExpenseRecord
		if err := rows.Scan(&record.ID, &record.Name, &record.Amount, &record.Date); err != nil {
			return nil, err
		}
		record.Date = record.Date.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (*domain.DeliveryRecord, error) {
	var record domain.DeliveryRecord
	var lines, expenses, cashCounts []byte
	err := row.Scan(&record.ID, &record.CustomerName, &record.Date,
		&record.SalesTotal, &record.CashTotal, &record.ExpenseTotal, &record.NetTotal,
		&lines, &expenses, &cashCounts)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(lines, &record.Lines); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(expenses, &record.Expenses); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cashCounts, &record.CashCounts); err != nil {
		return nil, err
	}

	record.Date = record.Date.UTC()
	return &record, nil
}

func marshalDeliveryDocs(record domain.DeliveryRecord) ([]byte, []byte, []byte, error) {
	if record.Lines == nil {
		record.Lines = []domain.DeliveryLine{}
	}
	if record.Expenses == nil {
		record.Expenses = []domain.ExpenseLine{}
	}
	if record.CashCounts == nil {
		record.CashCounts = []domain.CashCount{}
	}

	lines, err := json.Marshal(record.Lines)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := json.Marshal(record.Expenses)
	if err != nil {
		return nil, nil, nil, err
	}
	cashCounts, err := json.Marshal(record.CashCounts)
	if err != nil {
		return nil, nil, nil, err
	}
	return lines, expenses, cashCounts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullTimePtr(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
