package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

// InitializeStock creates the stock record for a product if one does not
// exist yet. Safe to call repeatedly; the unique product index makes a
// lost race collapse into a fetch of the winner's record.
func (s *Service) InitializeStock(ctx context.Context, productID int64, productName string) (domain.StockRecord, error) {
	if productID < 1 {
		return domain.StockRecord{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetStockByProduct(ctx, productID)
	if err == nil {
		return *existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.StockRecord{}, fmt.Errorf("lookup stock for product %d: %w", productID, err)
	}

	created, err := s.repo.CreateStock(ctx, domain.StockRecord{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    0,
		LastUpdated: time.Now().UTC(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		existing, err := s.repo.GetStockByProduct(ctx, productID)
		if err != nil {
			return domain.StockRecord{}, err
		}
		return *existing, nil
	}
	if err != nil {
		return domain.StockRecord{}, fmt.Errorf("create stock for product %d: %w", productID, err)
	}
	return *created, nil
}

// adjustStock applies a relative delta to a product's stock. The resulting
// quantity is clamped at zero; the ledger entry records the requested
// delta alongside the clamped quantity so over-decrements stay visible.
// The ledger is appended before the stock record is updated.
func (s *Service) adjustStock(ctx context.Context, productID int64, delta int, reason string, markSync bool) (domain.StockRecord, error) {
	record, err := s.repo.GetStockByProduct(ctx, productID)
	if err != nil {
		return domain.StockRecord{}, err
	}

	newQty := record.Quantity + delta
	if newQty < 0 {
		newQty = 0
	}

	if _, err := s.repo.AppendStockHistory(ctx, domain.StockHistoryEntry{
		ProductID:   productID,
		ProductName: record.ProductName,
		Change:      delta,
		NewQuantity: newQty,
		Reason:      reason,
		Date:        time.Now().UTC(),
	}); err != nil {
		return domain.StockRecord{}, fmt.Errorf("append stock history: %w", err)
	}

	record.Quantity = newQty
	record.LastUpdated = time.Now().UTC()
	updated, err := s.repo.UpdateStock(ctx, *record)
	if err != nil {
		return domain.StockRecord{}, fmt.Errorf("update stock: %w", err)
	}

	if markSync {
		if err := s.MarkPendingSync(ctx, "stock", updated.ID); err != nil {
			log.Printf("[service] WARN: failed to mark stock %d pending sync: %v", updated.ID, err)
		}
	}

	return *updated, nil
}

// RestockStock adds quantity from a manual restock and flags the record
// for sync.
func (s *Service) RestockStock(ctx context.Context, req domain.StockRestockRequest) (domain.StockRecord, error) {
	if req.ProductID < 1 || req.Quantity < 1 {
		return domain.StockRecord{}, store.ErrInvalidInput
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.StockRecord{}, err
	}
	if _, err := s.InitializeStock(ctx, product.ID, product.Name); err != nil {
		return domain.StockRecord{}, err
	}

	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = "Manual restock"
	}
	return s.adjustStock(ctx, req.ProductID, req.Quantity, note, true)
}

// SetStockAbsolute overwrites a product's quantity from a physical count.
// A non-empty reason is required; the ledger entry keeps both the old and
// new quantity.
func (s *Service) SetStockAbsolute(ctx context.Context, req domain.StockAdjustRequest) (domain.StockRecord, error) {
	if req.ProductID < 1 {
		return domain.StockRecord{}, store.ErrInvalidInput
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.StockRecord{}, store.ErrInvalidInput
	}

	newQty := req.NewQuantity
	if newQty < 0 {
		newQty = 0
	}

	record, err := s.repo.GetStockByProduct(ctx, req.ProductID)
	if err != nil {
		return domain.StockRecord{}, err
	}

	oldQty := record.Quantity
	if _, err := s.repo.AppendStockHistory(ctx, domain.StockHistoryEntry{
		ProductID:   req.ProductID,
		ProductName: record.ProductName,
		Change:      newQty - oldQty,
		OldQuantity: &oldQty,
		NewQuantity: newQty,
		Reason:      reason,
		Date:        time.Now().UTC(),
	}); err != nil {
		return domain.StockRecord{}, fmt.Errorf("append stock history: %w", err)
	}

	record.Quantity = newQty
	record.LastUpdated = time.Now().UTC()
	updated, err := s.repo.UpdateStock(ctx, *record)
	if err != nil {
		return domain.StockRecord{}, fmt.Errorf("update stock: %w", err)
	}

	if err := s.MarkPendingSync(ctx, "stock", updated.ID); err != nil {
		log.Printf("[service] WARN: failed to mark stock %d pending sync: %v", updated.ID, err)
	}

	return *updated, nil
}

// StockStatus buckets a quantity for the stock overview.
func StockStatus(quantity int) string {
	switch {
	case quantity == 0:
		return domain.StockStatusOut
	case quantity < domain.LowStockThreshold:
		return domain.StockStatusLow
	default:
		return domain.StockStatusNormal
	}
}

func (s *Service) ListStock(ctx context.Context) ([]domain.StockView, error) {
	records, err := s.repo.ListStock(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.StockView, 0, len(records))
	for _, rec := range records {
		views = append(views, domain.StockView{
			StockRecord: rec,
			Status:      StockStatus(rec.Quantity),
		})
	}
	return views, nil
}

func (s *Service) ListStockHistory(ctx context.Context, productID int64, limit int) ([]domain.StockHistoryEntry, error) {
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListStockHistory(ctx, productID, limit)
}
