package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one signed leg of a journal: negative is outflow, positive is inflow.
type Transaction struct {
	TransactionID     string           `json:"transactionID"`
	JournalID         string           `json:"journalID"`
	AccountID         string           `json:"accountID"`
	Description       string           `json:"description,omitempty"`
	Amount            decimal.Decimal  `json:"amount"`
	CurrencyID        string           `json:"currencyID"`
	ForeignAmount     *decimal.Decimal `json:"foreignAmount,omitempty"`
	ForeignCurrencyID *string          `json:"foreignCurrencyID,omitempty"`
	Identifier        int              `json:"identifier"` // groups the two legs of one split entry
	Reconciled        bool             `json:"reconciled"`
	BudgetID          *string          `json:"budgetID,omitempty"`
	CategoryID        *string          `json:"categoryID,omitempty"`
	DeletedAt         *time.Time       `json:"-"`
	AuditFields
}

// IsMultiCurrency reports whether the leg carries a complete foreign pair.
func (t Transaction) IsMultiCurrency() bool {
	return t.ForeignAmount != nil && t.ForeignCurrencyID != nil && *t.ForeignCurrencyID != t.CurrencyID
}

// BalanceError describes a double-entry violation.
type BalanceError struct {
	Negative decimal.Decimal
	Positive decimal.Decimal
	Reason   string
}

func (e *BalanceError) Error() string {
	if e.Reason != "" {
		return "journal does not balance: " + e.Reason
	}
	return fmt.Sprintf("journal does not balance: outflow %s, inflow %s", e.Negative.String(), e.Positive.String())
}

// ValidateBalance checks the double-entry invariant: the negative legs and the positive legs
// have equal absolute totals. A journal with exactly two legs must hold one of each sign
// sharing one identifier.
func ValidateBalance(legs []Transaction) error {
	if len(legs) < 2 {
		return &BalanceError{Reason: "at least two legs are required"}
	}
	negative := decimal.Zero
	positive := decimal.Zero
	for _, leg := range legs {
		switch {
		case leg.Amount.IsNegative():
			negative = negative.Add(leg.Amount)
		case leg.Amount.IsPositive():
			positive = positive.Add(leg.Amount)
		default:
			return &BalanceError{Reason: "zero-amount leg " + leg.TransactionID}
		}
	}
	if negative.IsZero() || positive.IsZero() {
		return &BalanceError{Negative: negative, Positive: positive, Reason: "both an outflow and an inflow are required"}
	}
	if !negative.Neg().Equal(positive) {
		return &BalanceError{Negative: negative, Positive: positive}
	}
	if len(legs) == 2 && legs[0].Identifier != legs[1].Identifier {
		return &BalanceError{Reason: "legs of an unsplit journal must share an identifier"}
	}
	return nil
}

// OpposingLeg returns the leg of the same split entry with the equal and opposite amount.
func OpposingLeg(leg Transaction, legs []Transaction) (Transaction, bool) {
	for _, candidate := range legs {
		if candidate.TransactionID == leg.TransactionID {
			continue
		}
		if candidate.JournalID == leg.JournalID &&
			candidate.Identifier == leg.Identifier &&
			candidate.Amount.Equal(leg.Amount.Neg()) {
			return candidate, true
		}
	}
	return Transaction{}, false
}
