package dto

import (
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create a budget.
type CreateBudgetRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdateLimitRequest sets the amount a budget may spend in one period.
type UpdateLimitRequest struct {
	Start  time.Time       `json:"start" binding:"required"`
	End    time.Time       `json:"end" binding:"required,gtefield=Start"`
	Amount decimal.Decimal `json:"amount"`
}

// PeriodParams selects an inclusive date range.
type PeriodParams struct {
	Start time.Time `form:"start" time_format:"2006-01-02" binding:"required"`
	End   time.Time `form:"end" time_format:"2006-01-02" binding:"required,gtefield=Start"`
}

// SpentParams selects what spending to sum.
type SpentParams struct {
	PeriodParams
	BudgetIDs  []string `form:"budgetID"`
	AccountIDs []string `form:"accountID"`
	// Currency is an ISO code; when set the response also carries the formatted amount.
	Currency string `form:"currency"`
}

// AvailableBudgetRequest sets the total available in one currency for a period.
type AvailableBudgetRequest struct {
	CurrencyID string          `json:"currencyID" binding:"required"`
	Start      time.Time       `json:"start" binding:"required"`
	End        time.Time       `json:"end" binding:"required,gtefield=Start"`
	Amount     decimal.Decimal `json:"amount"`
}

// BudgetLimitResponse defines the data returned for a budget limit. Nil means the limit was removed.
type BudgetLimitResponse struct {
	Limit *domain.BudgetLimit `json:"limit"`
}

// AmountResponse wraps a single amount.
type AmountResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted,omitempty"`
}

// CleanupResponse reports how many limits were removed.
type CleanupResponse struct {
	Deleted int `json:"deleted"`
}
