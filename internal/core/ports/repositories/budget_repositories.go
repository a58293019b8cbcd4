package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
)

// BudgetReader defines read operations for budgets.
type BudgetReader interface {
	FindBudgetByID(ctx context.Context, userID string, budgetID string) (*domain.Budget, error)
	FindBudgetsByName(ctx context.Context, userID string, name string) ([]domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budgets.
type BudgetWriter interface {
	SaveBudget(ctx context.Context, budget domain.Budget) error
}

// BudgetLimitReader defines read operations for budget limits.
type BudgetLimitReader interface {
	// FindLimitsForPeriod returns the limits of a budget covering exactly [start, end], newest first.
	FindLimitsForPeriod(ctx context.Context, budgetID string, start, end time.Time) ([]domain.BudgetLimit, error)

	// ListLimitsByBudget returns all limits of a budget.
	ListLimitsByBudget(ctx context.Context, budgetID string) ([]domain.BudgetLimit, error)

	// ListLimitsByUser returns all limits of the user's budgets, newest first.
	ListLimitsByUser(ctx context.Context, userID string) ([]domain.BudgetLimit, error)
}

// BudgetLimitWriter defines write operations for budget limits.
type BudgetLimitWriter interface {
	SaveLimit(ctx context.Context, limit domain.BudgetLimit) error
	UpdateLimit(ctx context.Context, limit domain.BudgetLimit) error
	DeleteLimits(ctx context.Context, limitIDs []string) error
}

// AvailableBudgetRepository stores per-currency period totals.
type AvailableBudgetRepository interface {
	FindAvailableBudget(ctx context.Context, userID, currencyID string, start, end time.Time) (*domain.AvailableBudget, error)
	// SaveAvailableBudget inserts or replaces the amount for (user, currency, start, end).
	SaveAvailableBudget(ctx context.Context, available domain.AvailableBudget) error
}

// BudgetRepositoryFacade combines all budget-related repository interfaces
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
	BudgetLimitReader
	BudgetLimitWriter
	AvailableBudgetRepository
}
