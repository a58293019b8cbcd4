package dto

import (
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SplitRequest is one entry of a journal: an amount moving from a source to a destination.
type SplitRequest struct {
	Description       string           `json:"description" binding:"max=1024"`
	Amount            decimal.Decimal  `json:"amount"`
	CurrencyID        string           `json:"currencyID" binding:"required"`
	ForeignAmount     *decimal.Decimal `json:"foreignAmount"`
	ForeignCurrencyID *string          `json:"foreignCurrencyID"`
	// NativeAmount is the amount in the native currency of the account that decides the
	// journal's currency, required when CurrencyID is not that currency.
	NativeAmount      *decimal.Decimal `json:"nativeAmount"`
	SourceAmount      *decimal.Decimal `json:"sourceAmount"`      // transfers between currencies
	DestinationAmount *decimal.Decimal `json:"destinationAmount"` // transfers between currencies
	SourceID          *string          `json:"sourceID"`
	SourceName        *string          `json:"sourceName"`
	DestinationID     *string          `json:"destinationID"`
	DestinationName   *string          `json:"destinationName"`
	BudgetID          *string          `json:"budgetID"`
	CategoryID        *string          `json:"categoryID"`
}

// JournalMetaRequest carries the optional meta fields of a journal.
type JournalMetaRequest struct {
	InterestDate      *time.Time `json:"interestDate"`
	BookDate          *time.Time `json:"bookDate"`
	ProcessDate       *time.Time `json:"processDate"`
	DueDate           *time.Time `json:"dueDate"`
	PaymentDate       *time.Time `json:"paymentDate"`
	InvoiceDate       *time.Time `json:"invoiceDate"`
	InternalReference *string    `json:"internalReference"`
}

// Dates maps meta names to the supplied dates.
func (m JournalMetaRequest) Dates() map[string]*time.Time {
	return map[string]*time.Time{
		domain.MetaInterestDate: m.InterestDate,
		domain.MetaBookDate:     m.BookDate,
		domain.MetaProcessDate:  m.ProcessDate,
		domain.MetaDueDate:      m.DueDate,
		domain.MetaPaymentDate:  m.PaymentDate,
		domain.MetaInvoiceDate:  m.InvoiceDate,
	}
}

// StoreJournalRequest defines the data needed to create a journal.
type StoreJournalRequest struct {
	Type        domain.JournalType `json:"type" binding:"required,oneof=WITHDRAWAL DEPOSIT TRANSFER OPENING_BALANCE RECONCILIATION"`
	Description string             `json:"description" binding:"required,max=1024"`
	Date        time.Time          `json:"date" binding:"required"`
	JournalMetaRequest
	Notes        *string        `json:"notes"`
	Tags         []string       `json:"tags" binding:"omitempty,dive,required,max=255"`
	PiggyBankID  *string        `json:"piggyBankID"`
	BudgetID     *string        `json:"budgetID"`
	CategoryID   *string        `json:"categoryID"`
	Transactions []SplitRequest `json:"transactions" binding:"required,min=1,dive"`
}

// UpdateJournalRequest defines the data allowed for updating a journal.
// Nil fields are left untouched; a non-empty Transactions list replaces the amounts and accounts.
type UpdateJournalRequest struct {
	Description *string    `json:"description" binding:"omitempty,max=1024"`
	Date        *time.Time `json:"date"`
	JournalMetaRequest
	Notes        *string        `json:"notes"`
	Tags         *[]string      `json:"tags"`
	PiggyBankID  *string        `json:"piggyBankID"`
	BudgetID     *string        `json:"budgetID"`
	CategoryID   *string        `json:"categoryID"`
	Transactions []SplitRequest `json:"transactions" binding:"omitempty,dive"`
}

// ConvertJournalRequest asks to change a journal's type and re-point its accounts.
type ConvertJournalRequest struct {
	Type            domain.JournalType `json:"type" binding:"required,oneof=WITHDRAWAL DEPOSIT TRANSFER"`
	SourceID        *string            `json:"sourceID"`
	SourceName      *string            `json:"sourceName"`
	DestinationID   *string            `json:"destinationID"`
	DestinationName *string            `json:"destinationName"`
}

// ListJournalsParams defines query parameters for listing journals.
type ListJournalsParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// TransactionResponse defines the data returned for a leg.
type TransactionResponse struct {
	TransactionID     string           `json:"transactionID"`
	AccountID         string           `json:"accountID"`
	Description       string           `json:"description,omitempty"`
	Amount            decimal.Decimal  `json:"amount"`
	CurrencyID        string           `json:"currencyID"`
	ForeignAmount     *decimal.Decimal `json:"foreignAmount,omitempty"`
	ForeignCurrencyID *string          `json:"foreignCurrencyID,omitempty"`
	Identifier        int              `json:"identifier"`
	Reconciled        bool             `json:"reconciled"`
	BudgetID          *string          `json:"budgetID,omitempty"`
	CategoryID        *string          `json:"categoryID,omitempty"`
}

// JournalResponse defines the data returned for a journal.
type JournalResponse struct {
	JournalID    string                `json:"journalID"`
	Type         domain.JournalType    `json:"type"`
	Date         time.Time             `json:"date"`
	Description  string                `json:"description"`
	Total        decimal.Decimal       `json:"total"`
	Meta         map[string]string     `json:"meta,omitempty"`
	Notes        *string               `json:"notes,omitempty"`
	Tags         []string              `json:"tags,omitempty"`
	BudgetID     *string               `json:"budgetID,omitempty"`
	CategoryID   *string               `json:"categoryID,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	CreatedBy    string                `json:"createdBy"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ListJournalsResponse wraps a page of journals.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ReconcileResponse reports whether both legs of an entry are now reconciled.
type ReconcileResponse struct {
	Reconciled bool `json:"reconciled"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:     txn.TransactionID,
		AccountID:         txn.AccountID,
		Description:       txn.Description,
		Amount:            txn.Amount,
		CurrencyID:        txn.CurrencyID,
		ForeignAmount:     txn.ForeignAmount,
		ForeignCurrencyID: txn.ForeignCurrencyID,
		Identifier:        txn.Identifier,
		Reconciled:        txn.Reconciled,
		BudgetID:          txn.BudgetID,
		CategoryID:        txn.CategoryID,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{
		JournalID:    j.JournalID,
		Type:         j.TransactionType,
		Date:         j.JournalDate,
		Description:  j.Description,
		Total:        j.Total(),
		Meta:         j.Meta,
		Notes:        j.Notes,
		Tags:         j.Tags,
		BudgetID:     j.BudgetID,
		CategoryID:   j.CategoryID,
		CreatedAt:    j.CreatedAt,
		CreatedBy:    j.CreatedBy,
		Transactions: ToTransactionResponses(j.Transactions),
	}
}

// ToJournalResponses converts a slice of journals.
func ToJournalResponses(journals []domain.Journal) []JournalResponse {
	responses := make([]JournalResponse, len(journals))
	for i := range journals {
		responses[i] = ToJournalResponse(&journals[i])
	}
	return responses
}
