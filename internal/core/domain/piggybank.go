package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PiggyBank is a savings goal tracked against one asset account.
type PiggyBank struct {
	PiggyBankID  string          `json:"piggyBankID"`
	UserID       string          `json:"userID"`
	AccountID    string          `json:"accountID"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	StartDate    *time.Time      `json:"startDate,omitempty"`
	TargetDate   *time.Time      `json:"targetDate,omitempty"`
	Order        int             `json:"order"`
	AuditFields
}

// PiggyBankRepetition carries the running saved amount for a date range.
type PiggyBankRepetition struct {
	RepetitionID  string          `json:"repetitionID"`
	PiggyBankID   string          `json:"piggyBankID"`
	StartDate     *time.Time      `json:"startDate,omitempty"`
	TargetDate    *time.Time      `json:"targetDate,omitempty"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
}

// Covers reports whether the repetition is relevant on date. Open ends match everything.
func (r PiggyBankRepetition) Covers(date time.Time) bool {
	d := DateOnly(date)
	if r.StartDate != nil && d.Before(DateOnly(*r.StartDate)) {
		return false
	}
	if r.TargetDate != nil && d.After(DateOnly(*r.TargetDate)) {
		return false
	}
	return true
}

// PiggyBankEvent is one append-only signed delta of a piggy bank's saved amount.
type PiggyBankEvent struct {
	EventID     string          `json:"eventID"`
	PiggyBankID string          `json:"piggyBankID"`
	JournalID   *string         `json:"journalID,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PiggyBankWithAmount is a piggy bank together with its current saved amount.
type PiggyBankWithAmount struct {
	PiggyBank
	SavedSoFar decimal.Decimal `json:"savedSoFar"`
	LeftToSave decimal.Decimal `json:"leftToSave"`
}
