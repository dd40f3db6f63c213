package service

import (
	"context"
	"strings"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

func (s *Service) CreateCredit(ctx context.Context, req domain.CreditCreateRequest) (domain.CreditRecord, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" || req.Amount <= 0 {
		return domain.CreditRecord{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateCredit(ctx, domain.CreditRecord{
		CustomerName: req.CustomerName,
		Amount:       req.Amount,
		Note:         strings.TrimSpace(req.Note),
	})
	if err != nil {
		return domain.CreditRecord{}, err
	}
	return *created, nil
}

func (s *Service) ListCredits(ctx context.Context, includeSettled bool) ([]domain.CreditRecord, error) {
	return s.repo.ListCredits(ctx, includeSettled)
}

func (s *Service) SettleCredit(ctx context.Context, id int64) (domain.CreditRecord, error) {
	if id < 1 {
		return domain.CreditRecord{}, store.ErrInvalidInput
	}
	settled, err := s.repo.SettleCredit(ctx, id)
	if err != nil {
		return domain.CreditRecord{}, err
	}
	return *settled, nil
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.ExpenseRecord, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Amount <= 0 {
		return domain.ExpenseRecord{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateExpense(ctx, domain.ExpenseRecord{
		Name:   req.Name,
		Amount: req.Amount,
	})
	if err != nil {
		return domain.ExpenseRecord{}, err
	}
	return *created, nil
}

func (s *Service) ListExpenses(ctx context.Context, limit int) ([]domain.ExpenseRecord, error) {
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListExpenses(ctx, limit)
}
