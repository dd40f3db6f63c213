package service

import (
	"context"
	"errors"
	"testing"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

func TestCreateProduct_Validation(t *testing.T) {
	svc, ctx := newTestService()

	cases := []domain.ProductCreateRequest{
		{Name: "", Pcs: 24, Price: 20},
		{Name: "Soda", Pcs: 0, Price: 20},
		{Name: "Soda", Pcs: 24, Price: 0},
	}
	for _, req := range cases {
		if _, err := svc.CreateProduct(ctx, req); !errors.Is(err, store.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", req, err)
		}
	}
}

func TestCreateProduct_DuplicateName(t *testing.T) {
	svc, ctx := newTestService()

	_, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "coca cola 250ml", Pcs: 24, Price: 20})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate for case-insensitive name clash, got %v", err)
	}
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := WithActor(context.Background(), domain.Actor{Username: "worker", Role: domain.RoleHelper})

	if _, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "Soda", Pcs: 24, Price: 20}); err == nil {
		t.Fatalf("expected role error")
	}
}

func TestUpdateProduct_PartialUpdate(t *testing.T) {
	svc, ctx := newTestService()

	newPrice := 22.0
	updated, err := svc.UpdateProduct(ctx, 1, domain.ProductUpdateRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 22 {
		t.Fatalf("expected price 22, got %v", updated.Price)
	}
	if updated.Name != "Coca Cola 250ml" || updated.Pcs != 24 {
		t.Fatalf("unset fields must be preserved, got %+v", updated)
	}
}

func TestDeleteProduct_RefusedWhileStockExists(t *testing.T) {
	svc, ctx := newTestService()

	// Seeded products carry stock records.
	if err := svc.DeleteProduct(ctx, 1); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected refusal while stock exists, got %v", err)
	}

	product, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "Soda", Pcs: 24, Price: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetProduct(ctx, product.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
