package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalType is the user-facing kind of a financial event.
type JournalType string

const (
	Withdrawal            JournalType = "WITHDRAWAL"
	Deposit               JournalType = "DEPOSIT"
	Transfer              JournalType = "TRANSFER"
	OpeningBalance        JournalType = "OPENING_BALANCE"
	ReconciliationJournal JournalType = "RECONCILIATION"
)

// Valid reports whether t is a known journal type.
func (t JournalType) Valid() bool {
	switch t {
	case Withdrawal, Deposit, Transfer, OpeningBalance, ReconciliationJournal:
		return true
	}
	return false
}

// Journal meta field names. Values are stored as name/value rows, dates as YYYY-MM-DD.
const (
	MetaInterestDate      = "interest_date"
	MetaBookDate          = "book_date"
	MetaProcessDate       = "process_date"
	MetaDueDate           = "due_date"
	MetaPaymentDate       = "payment_date"
	MetaInvoiceDate       = "invoice_date"
	MetaInternalReference = "internal_reference"
)

// MetaDateFields are the meta names that carry dates.
var MetaDateFields = []string{
	MetaInterestDate, MetaBookDate, MetaProcessDate, MetaDueDate, MetaPaymentDate, MetaInvoiceDate,
}

// MetaDateLayout is how date meta values are serialized.
const MetaDateLayout = "2006-01-02"

// Journal represents one financial event composed of one or more balanced legs.
type Journal struct {
	JournalID       string            `json:"journalID"`
	UserID          string            `json:"userID"`
	TransactionType JournalType       `json:"transactionType"`
	Description     string            `json:"description"`
	JournalDate     time.Time         `json:"journalDate"`
	Order           int               `json:"order"`
	Meta            map[string]string `json:"meta,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	BudgetID        *string           `json:"budgetID,omitempty"` // withdrawals only
	CategoryID      *string           `json:"categoryID,omitempty"`
	DeletedAt       *time.Time        `json:"-"`
	AuditFields
	Transactions []Transaction `json:"transactions,omitempty"`
}

// IsSplit reports whether the journal has more than one leg pair.
func (j Journal) IsSplit() bool {
	return len(j.Transactions) > 2
}

// Total is the canonical journal amount: the sum of its positive legs.
func (j Journal) Total() decimal.Decimal {
	total := decimal.Zero
	for _, txn := range j.Transactions {
		if txn.Amount.IsPositive() {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// SetMetaDate stores a date meta field; a nil date removes it.
func (j *Journal) SetMetaDate(name string, date *time.Time) {
	if date == nil {
		delete(j.Meta, name)
		return
	}
	if j.Meta == nil {
		j.Meta = map[string]string{}
	}
	j.Meta[name] = date.Format(MetaDateLayout)
}

// MetaDate parses a date meta field.
func (j Journal) MetaDate(name string) (time.Time, bool) {
	raw, ok := j.Meta[name]
	if !ok || raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(MetaDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
