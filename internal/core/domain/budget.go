package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget groups withdrawals under a spending plan.
type Budget struct {
	BudgetID string `json:"budgetID"`
	UserID   string `json:"userID"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	AuditFields
}

// BudgetLimit caps spending for one budget over one inclusive date range.
type BudgetLimit struct {
	BudgetLimitID string          `json:"budgetLimitID"`
	BudgetID      string          `json:"budgetID"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PeriodKey identifies the (budget, start, end) tuple a limit must be unique on.
func (l BudgetLimit) PeriodKey() string {
	return l.BudgetID + "|" + l.StartDate.Format(MetaDateLayout) + "|" + l.EndDate.Format(MetaDateLayout)
}

// Matches reports whether the limit covers exactly [start, end].
func (l BudgetLimit) Matches(start, end time.Time) bool {
	return DateOnly(l.StartDate).Equal(DateOnly(start)) && DateOnly(l.EndDate).Equal(DateOnly(end))
}

// Overlaps reports whether the limit touches [start, end]: its end or start falls inside
// the range, or it spans the whole range.
func (l BudgetLimit) Overlaps(start, end time.Time) bool {
	s, e := DateOnly(start), DateOnly(end)
	ls, le := DateOnly(l.StartDate), DateOnly(l.EndDate)
	within := func(d time.Time) bool { return !d.Before(s) && !d.After(e) }
	return within(le) || within(ls) || (!ls.After(s) && !le.Before(e))
}

// Days returns the whole number of days between start and end.
func (l BudgetLimit) Days() int64 {
	return int64(DateOnly(l.EndDate).Sub(DateOnly(l.StartDate)).Hours() / 24)
}

// AvailableBudget is a per-currency total override for a period.
type AvailableBudget struct {
	AvailableBudgetID string          `json:"availableBudgetID"`
	UserID            string          `json:"userID"`
	CurrencyID        string          `json:"currencyID"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           time.Time       `json:"endDate"`
	Amount            decimal.Decimal `json:"amount"`
	AuditFields
}

// BudgetInformation bundles a budget's spending with its limits for one period.
type BudgetInformation struct {
	Budget  Budget          `json:"budget"`
	Spent   decimal.Decimal `json:"spent"`
	Current *BudgetLimit    `json:"current,omitempty"`
	Other   []BudgetLimit   `json:"other"`
}
