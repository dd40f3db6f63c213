package service

import (
	"errors"
	"testing"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

func TestInitializeStock_Idempotent(t *testing.T) {
	svc, ctx := newTestService()

	product, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "Lemonade 330ml", Pcs: 12, Price: 25})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	first, err := svc.InitializeStock(ctx, product.ID, product.Name)
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	if first.Quantity != 0 {
		t.Fatalf("expected zero quantity, got %d", first.Quantity)
	}

	second, err := svc.InitializeStock(ctx, product.ID, product.Name)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("init must be idempotent, got ids %d and %d", first.ID, second.ID)
	}
}

func TestRestockStock_Accumulates(t *testing.T) {
	svc, ctx := newTestService()

	product, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "Lemonade 330ml", Pcs: 12, Price: 25})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := svc.RestockStock(ctx, domain.StockRestockRequest{ProductID: product.ID, Quantity: 10}); err != nil {
		t.Fatalf("first restock: %v", err)
	}
	rec, err := svc.RestockStock(ctx, domain.StockRestockRequest{ProductID: product.ID, Quantity: 50})
	if err != nil {
		t.Fatalf("second restock: %v", err)
	}

	if rec.Quantity != 60 {
		t.Fatalf("expected 60 after 10+50, got %d", rec.Quantity)
	}

	history, err := svc.ListStockHistory(ctx, product.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(history))
	}
	if history[0].Change != 50 || history[0].NewQuantity != 60 {
		t.Fatalf("unexpected latest entry: %+v", history[0])
	}
	if history[0].Reason != "Manual restock" {
		t.Fatalf("expected default restock reason, got %q", history[0].Reason)
	}

	// Manual restocks queue sync work.
	pending, err := svc.PendingSyncItems(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending sync items, got %d", len(pending))
	}
	if pending[0].StoreName != "stock" {
		t.Fatalf("expected stock sync item, got %+v", pending[0])
	}
}

func TestRestockStock_RejectsBadInput(t *testing.T) {
	svc, ctx := newTestService()

	if _, err := svc.RestockStock(ctx, domain.StockRestockRequest{ProductID: 1, Quantity: 0}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero quantity, got %v", err)
	}
	if _, err := svc.RestockStock(ctx, domain.StockRestockRequest{ProductID: 9999, Quantity: 5}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

// Over-selling clamps the quantity at zero while the ledger keeps the full
// requested delta.
func TestSaveDelivery_OverDecrementClampsAtZero(t *testing.T) {
	svc, ctx := newTestService()

	if _, err := svc.SetStockAbsolute(ctx, domain.StockAdjustRequest{
		ProductID:   1,
		NewQuantity: 10,
		Reason:      "opening count",
	}); err != nil {
		t.Fatalf("set absolute: %v", err)
	}

	_, err := svc.SaveDelivery(ctx, domain.DeliverySaveRequest{
		CustomerName: "Corner Shop",
		Lines: []domain.DeliveryLineInput{{
			ProductID:       1,
			DeliveredPieces: 40,
			UnitPrice:       20,
		}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	stock, err := svc.repo.GetStockByProduct(ctx, 1)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if stock.Quantity != 0 {
		t.Fatalf("expected clamp to zero, got %d", stock.Quantity)
	}

	history, err := svc.ListStockHistory(ctx, 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history[0].Change != -40 || history[0].NewQuantity != 0 {
		t.Fatalf("ledger must keep the requested delta: %+v", history[0])
	}
}

func TestSetStockAbsolute_RecordsOldQuantity(t *testing.T) {
	svc, ctx := newTestService()

	rec, err := svc.SetStockAbsolute(ctx, domain.StockAdjustRequest{
		ProductID:   1,
		NewQuantity: 75,
		Reason:      "shelf count",
	})
	if err != nil {
		t.Fatalf("set absolute: %v", err)
	}
	if rec.Quantity != 75 {
		t.Fatalf("expected 75, got %d", rec.Quantity)
	}

	history, err := svc.ListStockHistory(ctx, 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	entry := history[0]
	if entry.OldQuantity == nil || *entry.OldQuantity != 120 {
		t.Fatalf("expected old quantity 120, got %+v", entry.OldQuantity)
	}
	if entry.Change != -45 || entry.NewQuantity != 75 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	pending, err := svc.PendingSyncItems(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("absolute adjust must queue sync work, got %d items", len(pending))
	}
}

func TestSetStockAbsolute_RequiresReason(t *testing.T) {
	svc, ctx := newTestService()

	_, err := svc.SetStockAbsolute(ctx, domain.StockAdjustRequest{ProductID: 1, NewQuantity: 75})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestStockStatus_Buckets(t *testing.T) {
	cases := []struct {
		quantity int
		want     string
	}{
		{0, domain.StockStatusOut},
		{1, domain.StockStatusLow},
		{49, domain.StockStatusLow},
		{50, domain.StockStatusNormal},
		{120, domain.StockStatusNormal},
	}
	for _, tc := range cases {
		if got := StockStatus(tc.quantity); got != tc.want {
			t.Fatalf("quantity %d: expected %s, got %s", tc.quantity, tc.want, got)
		}
	}
}

func TestListStock_IncludesStatus(t *testing.T) {
	svc, ctx := newTestService()

	views, err := svc.ListStock(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) == 0 {
		t.Fatalf("expected seeded stock records")
	}
	for _, view := range views {
		if view.Status != domain.StockStatusNormal {
			t.Fatalf("seeded stock of 120 must be normal, got %+v", view)
		}
	}
}
