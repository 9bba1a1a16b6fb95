// internal/services/dashboard_service.go
package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
)

// DashboardService derives seller statistics on every request. Nothing is
// cached or persisted.
type DashboardService struct {
	items  repository.ItemRepository
	orders repository.OrderRepository
}

type MonthlyEarning struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Earnings decimal.Decimal `json:"earnings"`
}

type DashboardStats struct {
	TotalCompletedOrders int              `json:"totalCompletedOrders"`
	TotalEarnings        decimal.Decimal  `json:"totalEarnings"`
	TotalPendingOrders   int              `json:"totalPendingOrders"`
	TotalRejectedOrders  int              `json:"totalRejectedOrders"`
	MonthlyEarnings      []MonthlyEarning `json:"monthlyEarnings"`
	TotalItemsCount      int              `json:"totalItemsCount"`
}

func NewDashboardService(repos *repository.Repositories) *DashboardService {
	return &DashboardService{
		items:  repos.Items,
		orders: repos.Orders,
	}
}

// Stats aggregates the seller's items created inside window. Earnings are
// price minus acquisition price over completed items. TotalItemsCount is
// counted from completed orders system-wide and ignores the window.
func (s *DashboardService) Stats(ctx context.Context, actor Principal, window repository.DateWindow) (*DashboardStats, error) {
	if window.From != nil && window.To != nil && window.From.After(*window.To) {
		return nil, ValidationError("from must not be after to")
	}

	items, err := s.items.ListBySeller(ctx, actor.UserID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller items: %w", err)
	}

	type monthKey struct{ year, month int }
	monthly := make(map[monthKey]decimal.Decimal)

	stats := &DashboardStats{
		TotalEarnings:   decimal.Zero,
		MonthlyEarnings: []MonthlyEarning{},
	}
	for _, item := range items {
		switch item.ItemStatus {
		case models.ItemStatusCompleted:
			profit := item.Price.Sub(item.OP)
			stats.TotalCompletedOrders++
			stats.TotalEarnings = stats.TotalEarnings.Add(profit)

			created := item.CreatedAt.UTC()
			key := monthKey{created.Year(), int(created.Month())}
			monthly[key] = monthly[key].Add(profit)
		case models.ItemStatusPending:
			stats.TotalPendingOrders++
		case models.ItemStatusDeclined:
			stats.TotalRejectedOrders++
		}
	}

	for key, earnings := range monthly {
		stats.MonthlyEarnings = append(stats.MonthlyEarnings, MonthlyEarning{
			Year:     key.year,
			Month:    key.month,
			Earnings: earnings,
		})
	}
	sort.Slice(stats.MonthlyEarnings, func(i, j int) bool {
		a, b := stats.MonthlyEarnings[i], stats.MonthlyEarnings[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	stats.TotalItemsCount, err = s.soldLineCount(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// soldLineCount counts lines of completed orders whose item the seller
// created, resolving ownership through the live items.
func (s *DashboardService) soldLineCount(ctx context.Context, sellerID uuid.UUID) (int, error) {
	orders, err := s.orders.ListByStatus(ctx, models.OrderStatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("failed to load completed orders: %w", err)
	}

	var ids []uuid.UUID
	for i := range orders {
		ids = append(ids, orders[i].ItemIDs()...)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve sold items: %w", err)
	}
	owned := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.CreatedBy == sellerID {
			owned[item.ID] = true
		}
	}

	count := 0
	for _, id := range ids {
		if owned[id] {
			count++
		}
	}
	return count, nil
}
