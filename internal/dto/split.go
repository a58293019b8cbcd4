package dto

import "github.com/shopspring/decimal"

// SplitEntry is one editable row of a journal, always with a positive amount.
type SplitEntry struct {
	Identifier        int              `json:"identifier"`
	TransactionID     string           `json:"transactionID,omitempty"`
	Description       string           `json:"description"`
	Amount            decimal.Decimal  `json:"amount"`
	CurrencyID        string           `json:"currencyID"`
	ForeignAmount     *decimal.Decimal `json:"foreignAmount,omitempty"`
	ForeignCurrencyID *string          `json:"foreignCurrencyID,omitempty"`
	SourceID          string           `json:"sourceID"`
	SourceName        string           `json:"sourceName"`
	DestinationID     string           `json:"destinationID"`
	DestinationName   string           `json:"destinationName"`
	BudgetID          *string          `json:"budgetID,omitempty"`
	BudgetName        string           `json:"budgetName,omitempty"`
	CategoryID        *string          `json:"categoryID,omitempty"`
	CategoryName      string           `json:"categoryName,omitempty"`
}

// SplitEntryInput is a previously submitted row; nil fields were not submitted.
type SplitEntryInput struct {
	Description       *string          `json:"description"`
	Amount            *decimal.Decimal `json:"amount"`
	CurrencyID        *string          `json:"currencyID"`
	ForeignAmount     *decimal.Decimal `json:"foreignAmount"`
	ForeignCurrencyID *string          `json:"foreignCurrencyID"`
	SourceID          *string          `json:"sourceID"`
	SourceName        *string          `json:"sourceName"`
	DestinationID     *string          `json:"destinationID"`
	DestinationName   *string          `json:"destinationName"`
	BudgetID          *string          `json:"budgetID"`
	CategoryID        *string          `json:"categoryID"`
}

// SplitEditRequest carries the rows a failed submission sent, keyed by row index.
type SplitEditRequest struct {
	OldInput map[int]SplitEntryInput `json:"oldInput"`
}

// SplitEditResponse is the editable view of a journal.
type SplitEditResponse struct {
	JournalID string       `json:"journalID"`
	Entries   []SplitEntry `json:"entries"`
}
