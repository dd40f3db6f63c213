package service

import (
	"context"
	"strings"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

func validRole(role string) bool {
	return role == domain.RoleDeliveryman || role == domain.RoleHelper
}

func validSalaryType(salaryType string) bool {
	return salaryType == domain.SalaryTypeDaily || salaryType == domain.SalaryTypeMonthly
}

func (s *Service) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ListEmployees(ctx)
}

func (s *Service) CreateEmployee(ctx context.Context, req domain.EmployeeCreateRequest) (domain.Employee, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Employee{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || !validRole(req.Role) || !validSalaryType(req.SalaryType) || req.SalaryRate < 0 {
		return domain.Employee{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateEmployee(ctx, domain.Employee{
		Name:       req.Name,
		Phone:      strings.TrimSpace(req.Phone),
		Role:       req.Role,
		SalaryType: req.SalaryType,
		SalaryRate: req.SalaryRate,
		IsActive:   true,
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return *created, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, id int64, req domain.EmployeeUpdateRequest) (domain.Employee, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Employee{}, err
	}
	if id < 1 {
		return domain.Employee{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return domain.Employee{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Employee{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return domain.Employee{}, store.ErrInvalidInput
		}
		updated.Role = *req.Role
	}
	if req.SalaryType != nil {
		if !validSalaryType(*req.SalaryType) {
			return domain.Employee{}, store.ErrInvalidInput
		}
		updated.SalaryType = *req.SalaryType
	}
	if req.SalaryRate != nil {
		if *req.SalaryRate < 0 {
			return domain.Employee{}, store.ErrInvalidInput
		}
		updated.SalaryRate = *req.SalaryRate
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}

	saved, err := s.repo.UpdateEmployee(ctx, updated)
	if err != nil {
		return domain.Employee{}, err
	}
	return *saved, nil
}

// MarkAttendance records one employee's status for one day. Marking the
// same day twice is rejected.
func (s *Service) MarkAttendance(ctx context.Context, req domain.AttendanceMarkRequest) (domain.AttendanceRecord, error) {
	if req.EmployeeID < 1 {
		return domain.AttendanceRecord{}, store.ErrInvalidInput
	}
	if req.Status != domain.AttendancePresent && req.Status != domain.AttendanceAbsent {
		return domain.AttendanceRecord{}, store.ErrInvalidInput
	}
	if _, err := parseDay(req.Date); err != nil {
		return domain.AttendanceRecord{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateAttendance(ctx, domain.AttendanceRecord{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Status:     req.Status,
	})
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	return *created, nil
}

func (s *Service) ListAttendance(ctx context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error) {
	if date != "" {
		if _, err := parseDay(date); err != nil {
			return nil, store.ErrInvalidInput
		}
	}
	return s.repo.ListAttendance(ctx, employeeID, date)
}

func (s *Service) CreateAdvance(ctx context.Context, req domain.AdvanceCreateRequest) (domain.AdvanceRecord, error) {
	if req.EmployeeID < 1 || req.Amount <= 0 {
		return domain.AdvanceRecord{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateAdvance(ctx, domain.AdvanceRecord{
		EmployeeID: req.EmployeeID,
		Amount:     req.Amount,
		Note:       strings.TrimSpace(req.Note),
	})
	if err != nil {
		return domain.AdvanceRecord{}, err
	}
	return *created, nil
}

func (s *Service) ListAdvances(ctx context.Context, employeeID int64) ([]domain.AdvanceRecord, error) {
	return s.repo.ListAdvances(ctx, employeeID)
}
