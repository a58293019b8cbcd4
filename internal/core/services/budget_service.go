package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/amount"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/platform/cache"
)

type budgetService struct {
	BaseService
	tx       portsrepo.TransactionManager
	budgets  portsrepo.BudgetRepositoryFacade
	accounts portsrepo.AccountRepositoryFacade
	journals portsrepo.JournalRepositoryFacade
}

// NewBudgetService creates the budget and budget-limit service.
func NewBudgetService(repos portsrepo.RepositoryProvider, opts ...ServiceOption) portssvc.BudgetSvcFacade {
	base := newBaseService()
	applyOptions(&base, opts)
	return &budgetService{
		BaseService: base,
		tx:          repos.TxManager,
		budgets:     repos.BudgetRepo,
		accounts:    repos.AccountRepo,
		journals:    repos.JournalRepo,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) CreateBudget(ctx context.Context, userID string, name string) (*domain.Budget, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "a name is required")
	}
	budget := domain.Budget{
		BudgetID:    uuid.NewString(),
		UserID:      userID,
		Name:        name,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.budgets.SaveBudget(ctx, budget); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewValidationError("name", "a budget with this name already exists")
		}
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	s.Cache.Mark(userID)
	return &budget, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	budgets, err := s.budgets.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// UpdateLimitAmount keeps exactly one limit for (budget, start, end). Duplicates are collapsed onto
// the most recently created one first; an amount of zero or less removes the limit.
func (s *budgetService) UpdateLimitAmount(ctx context.Context, userID string, budgetID string, start, end time.Time, amt decimal.Decimal) (*domain.BudgetLimit, error) {
	logger := s.GetLogger(ctx)
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if end.Before(start) {
		return nil, apperrors.NewValidationError("end", "the period must not end before it starts")
	}

	var result *domain.BudgetLimit
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.budgets.FindBudgetByID(ctx, userID, budgetID); err != nil {
			return err
		}
		limits, err := s.budgets.FindLimitsForPeriod(ctx, budgetID, start, end)
		if err != nil {
			return err
		}
		if len(limits) > 1 {
			duplicates := make([]string, 0, len(limits)-1)
			for _, l := range limits[1:] {
				duplicates = append(duplicates, l.BudgetLimitID)
			}
			logger.Debug("Removing duplicate budget limits", slog.String("budget_id", budgetID), slog.Int("count", len(duplicates)))
			if err := s.budgets.DeleteLimits(ctx, duplicates); err != nil {
				return err
			}
			limits = limits[:1]
		}

		now := s.Now()
		switch {
		case !amt.IsPositive():
			if len(limits) == 1 {
				return s.budgets.DeleteLimits(ctx, []string{limits[0].BudgetLimitID})
			}
			return nil
		case len(limits) == 1:
			limit := limits[0]
			limit.Amount = amt
			limit.UpdatedAt = now
			result = &limit
			return s.budgets.UpdateLimit(ctx, limit)
		default:
			limit := domain.BudgetLimit{
				BudgetLimitID: uuid.NewString(),
				BudgetID:      budgetID,
				StartDate:     start,
				EndDate:       end,
				Amount:        amt,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			result = &limit
			return s.budgets.SaveLimit(ctx, limit)
		}
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update budget limit", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to update budget limit: %w", err)
	}
	s.Cache.Mark(userID)
	return result, nil
}

// SpentInPeriod sums the negative withdrawal legs on the accounts, or on every asset account
// when none are given, dated within [start, end] and carrying one of the budgets.
// The result is negative when money was spent.
func (s *budgetService) SpentInPeriod(ctx context.Context, userID string, budgetIDs []string, accountIDs []string, start, end time.Time) (decimal.Decimal, error) {
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	key := s.Cache.Key(userID, "spent-in-period", strings.Join(budgetIDs, ","), strings.Join(accountIDs, ","), start, end)
	return cache.Remember(s.Cache, key, func() (decimal.Decimal, error) {
		if len(accountIDs) == 0 {
			assets, err := s.accounts.ListAccountsByType(ctx, userID, []domain.AccountType{domain.Asset})
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to list asset accounts: %w", err)
			}
			if len(assets) == 0 {
				return decimal.Zero, nil
			}
			for _, a := range assets {
				accountIDs = append(accountIDs, a.AccountID)
			}
		}
		spent, err := s.journals.SumTransactions(ctx, portsrepo.TransactionSumFilter{
			UserID:       userID,
			JournalTypes: []domain.JournalType{domain.Withdrawal},
			AccountIDs:   accountIDs,
			BudgetIDs:    budgetIDs,
			Start:        start,
			End:          end,
			NegativeOnly: true,
		})
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to sum spending: %w", err)
		}
		return spent, nil
	})
}

// BudgetedPerDay averages amount / max(days, 1) over the budget's limits.
func (s *budgetService) BudgetedPerDay(ctx context.Context, userID string, budgetID string) (decimal.Decimal, error) {
	if _, err := s.budgets.FindBudgetByID(ctx, userID, budgetID); err != nil {
		return decimal.Zero, err
	}
	limits, err := s.budgets.ListLimitsByBudget(ctx, budgetID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list budget limits: %w", err)
	}
	return PerDay(limits)
}

// PerDay is the mean daily amount of limits. A limit spanning no days counts as one day.
func PerDay(limits []domain.BudgetLimit) (decimal.Decimal, error) {
	if len(limits) == 0 {
		return decimal.Zero, nil
	}
	total := decimal.Zero
	for _, l := range limits {
		days := l.Days()
		if days < 1 {
			days = 1
		}
		daily, err := amount.Div(l.Amount, decimal.NewFromInt(days))
		if err != nil {
			return decimal.Zero, err
		}
		total = amount.Add(total, daily)
	}
	return amount.Div(total, decimal.NewFromInt(int64(len(limits))))
}

// CollectBudgetInformation returns, for every active budget, what was spent in [start, end],
// the limit covering exactly that period and the other limits overlapping it.
func (s *budgetService) CollectBudgetInformation(ctx context.Context, userID string, start, end time.Time) ([]domain.BudgetInformation, error) {
	budgets, err := s.budgets.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	info := make([]domain.BudgetInformation, 0, len(budgets))
	for _, budget := range budgets {
		if !budget.IsActive {
			continue
		}
		spent, err := s.SpentInPeriod(ctx, userID, []string{budget.BudgetID}, nil, start, end)
		if err != nil {
			return nil, err
		}
		limits, err := s.budgets.ListLimitsByBudget(ctx, budget.BudgetID)
		if err != nil {
			return nil, fmt.Errorf("failed to list budget limits: %w", err)
		}
		entry := domain.BudgetInformation{Budget: budget, Spent: spent, Other: []domain.BudgetLimit{}}
		for _, l := range limits {
			l := l
			switch {
			case entry.Current == nil && l.Matches(start, end):
				entry.Current = &l
			case l.Overlaps(start, end):
				entry.Other = append(entry.Other, l)
			}
		}
		info = append(info, entry)
	}
	return info, nil
}

// CleanupBudgets deletes zero-amount limits and then, newest first, every limit whose
// (budget, start, end) was already seen.
func (s *budgetService) CleanupBudgets(ctx context.Context, userID string) (int, error) {
	var deleted int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		limits, err := s.budgets.ListLimitsByUser(ctx, userID)
		if err != nil {
			return err
		}
		ids := DuplicateOrEmptyLimits(limits)
		if len(ids) == 0 {
			return nil
		}
		deleted = len(ids)
		return s.budgets.DeleteLimits(ctx, ids)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to clean up budget limits")
		return 0, fmt.Errorf("failed to clean up budget limits: %w", err)
	}
	if deleted > 0 {
		s.Cache.Mark(userID)
		s.GetLogger(ctx).Info("Cleaned up budget limits", slog.Int("deleted", deleted))
	}
	return deleted, nil
}

// DuplicateOrEmptyLimits returns the ids cleanup removes from limits, which must be ordered newest first.
func DuplicateOrEmptyLimits(limits []domain.BudgetLimit) []string {
	ids := []string{}
	kept := map[string]bool{}
	for _, l := range limits {
		if l.Amount.IsZero() {
			ids = append(ids, l.BudgetLimitID)
			continue
		}
		key := l.PeriodKey()
		if kept[key] {
			ids = append(ids, l.BudgetLimitID)
			continue
		}
		kept[key] = true
	}
	return ids
}

func (s *budgetService) SetAvailableBudget(ctx context.Context, userID string, currencyID string, start, end time.Time, amt decimal.Decimal) (*domain.AvailableBudget, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if amt.IsNegative() {
		return nil, apperrors.NewValidationError("amount", "available amount cannot be negative")
	}
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	now := s.Now()
	available := domain.AvailableBudget{
		AvailableBudgetID: uuid.NewString(),
		UserID:            userID,
		CurrencyID:        currencyID,
		StartDate:         start,
		EndDate:           end,
		Amount:            amt,
		AuditFields:       domain.NewAuditFields(userID, now),
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.budgets.FindAvailableBudget(ctx, userID, currencyID, start, end)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if existing != nil {
			available.AvailableBudgetID = existing.AvailableBudgetID
			available.AuditFields = existing.AuditFields
			available.Touch(userID, now)
		}
		return s.budgets.SaveAvailableBudget(ctx, available)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save available budget: %w", err)
	}
	s.Cache.Mark(userID)
	return &available, nil
}

func (s *budgetService) GetAvailableBudget(ctx context.Context, userID string, currencyID string, start, end time.Time) (*domain.AvailableBudget, error) {
	available, err := s.budgets.FindAvailableBudget(ctx, userID, currencyID, domain.DateOnly(start), domain.DateOnly(end))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get available budget: %w", err)
	}
	return available, nil
}
