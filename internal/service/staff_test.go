package service

import (
	"context"
	"errors"
	"testing"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

func createTestEmployee(t *testing.T, svc *Service, ctx context.Context) domain.Employee {
	t.Helper()
	employee, err := svc.CreateEmployee(ctx, domain.EmployeeCreateRequest{
		Name:       "Sameh",
		Phone:      "0100000000",
		Role:       domain.RoleDeliveryman,
		SalaryType: domain.SalaryTypeDaily,
		SalaryRate: 150,
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return employee
}

func TestCreateEmployee_Validation(t *testing.T) {
	svc, ctx := newTestService()

	_, err := svc.CreateEmployee(ctx, domain.EmployeeCreateRequest{
		Name:       "Sameh",
		Role:       "driver",
		SalaryType: domain.SalaryTypeDaily,
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown role, got %v", err)
	}

	_, err = svc.CreateEmployee(ctx, domain.EmployeeCreateRequest{
		Name:       "Sameh",
		Role:       domain.RoleHelper,
		SalaryType: "weekly",
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown salary type, got %v", err)
	}
}

func TestCreateEmployee_RequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := WithActor(context.Background(), domain.Actor{Username: "worker", Role: domain.RoleHelper})

	_, err := svc.CreateEmployee(ctx, domain.EmployeeCreateRequest{
		Name:       "Sameh",
		Role:       domain.RoleHelper,
		SalaryType: domain.SalaryTypeDaily,
	})
	if err == nil {
		t.Fatalf("expected role error")
	}
}

func TestUpdateEmployee_PartialUpdate(t *testing.T) {
	svc, ctx := newTestService()
	employee := createTestEmployee(t, svc, ctx)

	newRate := 200.0
	inactive := false
	updated, err := svc.UpdateEmployee(ctx, employee.ID, domain.EmployeeUpdateRequest{
		SalaryRate: &newRate,
		IsActive:   &inactive,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.SalaryRate != 200 || updated.IsActive {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Name != employee.Name {
		t.Fatalf("unset fields must be preserved, got %+v", updated)
	}
}

func TestMarkAttendance_DuplicateDayRejected(t *testing.T) {
	svc, ctx := newTestService()
	employee := createTestEmployee(t, svc, ctx)

	mark := domain.AttendanceMarkRequest{
		EmployeeID: employee.ID,
		Date:       "2025-03-10",
		Status:     domain.AttendancePresent,
	}
	if _, err := svc.MarkAttendance(ctx, mark); err != nil {
		t.Fatalf("first mark: %v", err)
	}

	_, err := svc.MarkAttendance(ctx, mark)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestMarkAttendance_Validation(t *testing.T) {
	svc, ctx := newTestService()
	employee := createTestEmployee(t, svc, ctx)

	_, err := svc.MarkAttendance(ctx, domain.AttendanceMarkRequest{
		EmployeeID: employee.ID,
		Date:       "10/03/2025",
		Status:     domain.AttendancePresent,
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for bad date, got %v", err)
	}

	_, err = svc.MarkAttendance(ctx, domain.AttendanceMarkRequest{
		EmployeeID: employee.ID,
		Date:       "2025-03-10",
		Status:     "late",
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for bad status, got %v", err)
	}
}

func TestCreateAdvance_AndList(t *testing.T) {
	svc, ctx := newTestService()
	employee := createTestEmployee(t, svc, ctx)

	if _, err := svc.CreateAdvance(ctx, domain.AdvanceCreateRequest{
		EmployeeID: employee.ID,
		Amount:     50,
		Note:       "mid-month",
	}); err != nil {
		t.Fatalf("create advance: %v", err)
	}

	advances, err := svc.ListAdvances(ctx, employee.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(advances) != 1 || advances[0].Amount != 50 {
		t.Fatalf("unexpected advances: %+v", advances)
	}
}
