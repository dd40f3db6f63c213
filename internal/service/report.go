package service

import (
	"context"
	"log"
	"time"

	"mimipro/backend/internal/domain"
	"mimipro/backend/internal/store"
)

const summaryCacheTTL = 30 * time.Second

func parseDay(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// DashboardSummary aggregates one day's deliveries with the current stock
// and sync state. Results are cached briefly; cache failures only cost the
// caching, never the summary.
func (s *Service) DashboardSummary(ctx context.Context, date string) (domain.DashboardSummary, error) {
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	day, err := parseDay(date)
	if err != nil {
		return domain.DashboardSummary{}, store.ErrInvalidInput
	}

	cacheKey := "summary:" + date
	if cached, ok, err := s.summary.Get(ctx, cacheKey); err != nil {
		log.Printf("[service] WARN: summary cache get failed: %v", err)
	} else if ok {
		return *cached, nil
	}

	deliveries, err := s.repo.ListDeliveries(ctx, 0)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	dayStart := day
	dayEnd := day.Add(24 * time.Hour)
	summary := domain.DashboardSummary{Date: date}
	for _, rec := range deliveries {
		if rec.Date.Before(dayStart) || !rec.Date.Before(dayEnd) {
			continue
		}
		summary.Deliveries++
		summary.SalesTotal += rec.SalesTotal
		summary.CashTotal += rec.CashTotal
		summary.ExpenseTotal += rec.ExpenseTotal
		summary.NetTotal += rec.NetTotal
	}

	stock, err := s.repo.ListStock(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	for _, rec := range stock {
		switch StockStatus(rec.Quantity) {
		case domain.StockStatusOut:
			summary.OutOfStock++
		case domain.StockStatusLow:
			summary.LowStock++
		}
	}

	pending, err := s.PendingSyncItems(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	summary.PendingSync = len(pending)

	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	for _, e := range employees {
		if e.IsActive {
			summary.ActiveWorkers++
		}
	}

	if err := s.summary.Set(ctx, cacheKey, &summary, summaryCacheTTL); err != nil {
		log.Printf("[service] WARN: summary cache set failed: %v", err)
	}

	return summary, nil
}
