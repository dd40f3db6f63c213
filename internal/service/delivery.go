package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"mimipro/backend/internal/calc"
	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

// productLookup resolves every referenced product once up front so a line
// always prices against the same product snapshot.
func (s *Service) productLookup(ctx context.Context, lines []domain.DeliveryLineInput) (map[int64]domain.Product, error) {
	products := make(map[int64]domain.Product, len(lines))
	for _, line := range lines {
		if line.ProductID == 0 {
			continue
		}
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		product, err := s.repo.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %d: %w", line.ProductID, err)
		}
		products[line.ProductID] = *product
	}
	return products, nil
}

func validateLines(lines []domain.DeliveryLineInput) error {
	for _, line := range lines {
		if line.DeliveredCartons < 0 || line.DeliveredPieces < 0 ||
			line.ReturnedCartons < 0 || line.ReturnedPieces < 0 || line.UnitPrice < 0 {
			return store.ErrInvalidInput
		}
	}
	return nil
}

// buildRecord computes the persisted form of a save request: derived lines,
// filtered cash/expense rows and the rounded totals.
func buildRecord(req domain.DeliverySaveRequest, products map[int64]domain.Product) domain.DeliveryRecord {
	lines := make([]domain.DeliveryLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		product, ok := products[input.ProductID]
		if input.ProductID == 0 || !ok {
			continue
		}
		sold, total := calc.ComputeLine(input, product)
		lines = append(lines, domain.DeliveryLine{
			ProductID:        input.ProductID,
			ProductName:      product.Name,
			DeliveredCartons: input.DeliveredCartons,
			DeliveredPieces:  input.DeliveredPieces,
			ReturnedCartons:  input.ReturnedCartons,
			ReturnedPieces:   input.ReturnedPieces,
			UnitPrice:        input.UnitPrice,
			Sold:             sold,
			LineTotal:        total.Round(0).IntPart(),
		})
	}

	counts := make([]domain.CashCount, 0, len(req.CashCounts))
	for _, c := range req.CashCounts {
		if c.Qty <= 0 {
			continue
		}
		counts = append(counts, domain.CashCount{Note: c.Note, Qty: c.Qty, Total: c.Note * int64(c.Qty)})
	}

	expenses := make([]domain.ExpenseLine, 0, len(req.Expenses))
	for _, e := range req.Expenses {
		if e.Amount <= 0 {
			continue
		}
		expenses = append(expenses, domain.ExpenseLine{Name: strings.TrimSpace(e.Name), Amount: e.Amount})
	}

	totals := calc.Totals(
		calc.SalesTotal(req.Lines, products),
		calc.CashTotal(req.CashCounts),
		calc.ExpenseTotal(req.Expenses),
	)

	return domain.DeliveryRecord{
		ID:           req.ID,
		CustomerName: strings.TrimSpace(req.CustomerName),
		Date:         time.Now().UTC(),
		SalesTotal:   totals.SalesTotal,
		CashTotal:    totals.CashTotal,
		ExpenseTotal: totals.ExpenseTotal,
		NetTotal:     totals.NetTotal,
		Lines:        lines,
		Expenses:     expenses,
		CashCounts:   counts,
	}
}

// PreviewDelivery recomputes lines and totals for the current form state
// without writing anything.
func (s *Service) PreviewDelivery(ctx context.Context, req domain.DeliverySaveRequest) (domain.DeliveryPreview, error) {
	if err := validateLines(req.Lines); err != nil {
		return domain.DeliveryPreview{}, err
	}
	products, err := s.productLookup(ctx, req.Lines)
	if err != nil {
		return domain.DeliveryPreview{}, err
	}

	record := buildRecord(req, products)
	return domain.DeliveryPreview{
		Lines: record.Lines,
		Totals: domain.DeliveryTotals{
			SalesTotal:   record.SalesTotal,
			CashTotal:    record.CashTotal,
			ExpenseTotal: record.ExpenseTotal,
			NetTotal:     record.NetTotal,
		},
	}, nil
}

// SaveDelivery persists the settlement. In create mode the record is
// written first and stock is decremented per sold line only after that
// write succeeds, so stock is never reduced for an unrecorded sale. In
// update mode the record is wholly replaced under the same ID with a
// fresh date; the ledger is left untouched unless ReconcileStock is set.
func (s *Service) SaveDelivery(ctx context.Context, req domain.DeliverySaveRequest) (domain.DeliveryRecord, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return domain.DeliveryRecord{}, store.ErrInvalidInput
	}
	if err := validateLines(req.Lines); err != nil {
		return domain.DeliveryRecord{}, err
	}

	products, err := s.productLookup(ctx, req.Lines)
	if err != nil {
		return domain.DeliveryRecord{}, err
	}

	record := buildRecord(req, products)
	if len(record.Lines) == 0 {
		return domain.DeliveryRecord{}, store.ErrInvalidInput
	}

	if req.ID != 0 {
		return s.updateDelivery(ctx, req, record)
	}

	saved, err := s.repo.CreateDelivery(ctx, record)
	if err != nil {
		return domain.DeliveryRecord{}, fmt.Errorf("save delivery: %w", err)
	}

	reason := "Delivery to " + saved.CustomerName
	for _, line := range saved.Lines {
		if line.Sold <= 0 {
			continue
		}
		if err := s.applyStockDelta(ctx, line.ProductID, line.ProductName, -line.Sold, reason); err != nil {
			s.flagDeliveryForReview(ctx, saved.ID)
			return domain.DeliveryRecord{}, fmt.Errorf("decrement stock for product %d: %w", line.ProductID, err)
		}
	}

	return *saved, nil
}

func (s *Service) updateDelivery(ctx context.Context, req domain.DeliverySaveRequest, record domain.DeliveryRecord) (domain.DeliveryRecord, error) {
	previous, err := s.repo.GetDelivery(ctx, req.ID)
	if err != nil {
		return domain.DeliveryRecord{}, err
	}

	saved, err := s.repo.UpdateDelivery(ctx, record)
	if err != nil {
		return domain.DeliveryRecord{}, fmt.Errorf("update delivery: %w", err)
	}

	if req.ReconcileStock {
		if err := s.reconcileUpdate(ctx, *previous, *saved); err != nil {
			s.flagDeliveryForReview(ctx, saved.ID)
			return domain.DeliveryRecord{}, err
		}
	}

	return *saved, nil
}

// reconcileUpdate applies the per-product sold delta between the old and
// new version of an edited delivery to the stock ledger.
func (s *Service) reconcileUpdate(ctx context.Context, previous, current domain.DeliveryRecord) error {
	oldSold := make(map[int64]int, len(previous.Lines))
	names := make(map[int64]string, len(previous.Lines)+len(current.Lines))
	for _, line := range previous.Lines {
		oldSold[line.ProductID] += line.Sold
		names[line.ProductID] = line.ProductName
	}
	newSold := make(map[int64]int, len(current.Lines))
	for _, line := range current.Lines {
		newSold[line.ProductID] += line.Sold
		names[line.ProductID] = line.ProductName
	}

	deltas := make(map[int64]int, len(names))
	for productID := range names {
		deltas[productID] = newSold[productID] - oldSold[productID]
	}

	reason := "Delivery update for " + current.CustomerName
	for productID, delta := range deltas {
		if delta == 0 {
			continue
		}
		if err := s.applyStockDelta(ctx, productID, names[productID], -delta, reason); err != nil {
			return fmt.Errorf("reconcile stock for product %d: %w", productID, err)
		}
	}
	return nil
}

// applyStockDelta makes sure a stock record exists, then adjusts it.
func (s *Service) applyStockDelta(ctx context.Context, productID int64, productName string, delta int, reason string) error {
	if _, err := s.InitializeStock(ctx, productID, productName); err != nil {
		return err
	}
	_, err := s.adjustStock(ctx, productID, delta, reason, false)
	return err
}

// flagDeliveryForReview leaves a pending sync marker when a stock write
// fails mid-save, so the half-applied settlement is surfaced for manual
// correction instead of silently diverging.
func (s *Service) flagDeliveryForReview(ctx context.Context, deliveryID int64) {
	_, err := s.repo.CreateSyncStatus(ctx, domain.SyncStatusRecord{
		StoreName: "history",
		RecordID:  deliveryID,
		Status:    domain.SyncStatusPending,
	})
	if err != nil {
		log.Printf("[service] WARN: failed to flag delivery %d for review: %v", deliveryID, err)
	}
}

// LoadDeliveryForEdit reconstructs the editable form state from a stored
// record. Pure read; the record is untouched until the next save.
func (s *Service) LoadDeliveryForEdit(ctx context.Context, id int64) (domain.DeliveryEditState, error) {
	if id < 1 {
		return domain.DeliveryEditState{}, store.ErrInvalidInput
	}
	record, err := s.repo.GetDelivery(ctx, id)
	if err != nil {
		return domain.DeliveryEditState{}, err
	}

	lines := make([]domain.DeliveryLineInput, 0, len(record.Lines))
	for _, line := range record.Lines {
		lines = append(lines, domain.DeliveryLineInput{
			ProductID:        line.ProductID,
			DeliveredCartons: line.DeliveredCartons,
			DeliveredPieces:  line.DeliveredPieces,
			ReturnedCartons:  line.ReturnedCartons,
			ReturnedPieces:   line.ReturnedPieces,
			UnitPrice:        line.UnitPrice,
		})
	}
	counts := make([]domain.CashCountInput, 0, len(record.CashCounts))
	for _, c := range record.CashCounts {
		counts = append(counts, domain.CashCountInput{Note: c.Note, Qty: c.Qty})
	}

	return domain.DeliveryEditState{
		ID:           record.ID,
		CustomerName: record.CustomerName,
		Lines:        lines,
		Expenses:     record.Expenses,
		CashCounts:   counts,
	}, nil
}

func (s *Service) GetDelivery(ctx context.Context, id int64) (domain.DeliveryRecord, error) {
	if id < 1 {
		return domain.DeliveryRecord{}, store.ErrInvalidInput
	}
	record, err := s.repo.GetDelivery(ctx, id)
	if err != nil {
		return domain.DeliveryRecord{}, err
	}
	return *record, nil
}

func (s *Service) ListDeliveries(ctx context.Context, limit int) ([]domain.DeliveryRecord, error) {
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListDeliveries(ctx, limit)
}
