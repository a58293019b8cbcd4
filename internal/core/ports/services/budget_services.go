package services

import (
	"context"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetReaderSvc defines read operations for budgets and their periods.
type BudgetReaderSvc interface {
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)

	// SpentInPeriod sums withdrawals tagged with the budgets from the accounts (all asset accounts when empty).
	SpentInPeriod(ctx context.Context, userID string, budgetIDs []string, accountIDs []string, start, end time.Time) (decimal.Decimal, error)

	// BudgetedPerDay averages the per-day amount of the budget's limits.
	BudgetedPerDay(ctx context.Context, userID string, budgetID string) (decimal.Decimal, error)

	// CollectBudgetInformation returns, per active budget, spending and limits for [start, end].
	CollectBudgetInformation(ctx context.Context, userID string, start, end time.Time) ([]domain.BudgetInformation, error)

	GetAvailableBudget(ctx context.Context, userID string, currencyID string, start, end time.Time) (*domain.AvailableBudget, error)
}

// BudgetWriterSvc defines write operations for budgets and their limits.
type BudgetWriterSvc interface {
	CreateBudget(ctx context.Context, userID string, name string) (*domain.Budget, error)

	// UpdateLimitAmount sets the single limit for [start, end]. It returns nil when the limit was removed.
	UpdateLimitAmount(ctx context.Context, userID string, budgetID string, start, end time.Time, amount decimal.Decimal) (*domain.BudgetLimit, error)

	// CleanupBudgets removes zero and duplicate limits and reports how many were removed.
	CleanupBudgets(ctx context.Context, userID string) (int, error)

	SetAvailableBudget(ctx context.Context, userID string, currencyID string, start, end time.Time, amount decimal.Decimal) (*domain.AvailableBudget, error)
}

// BudgetSvcFacade combines all budget-related service interfaces
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
}
