package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines what role an account plays in the ledger.
type AccountType string

const (
	Asset          AccountType = "ASSET"
	Expense        AccountType = "EXPENSE"
	Revenue        AccountType = "REVENUE"
	Cash           AccountType = "CASH"
	Reconciliation AccountType = "RECONCILIATION"
	InitialBalance AccountType = "INITIAL_BALANCE"
	Liability      AccountType = "LIABILITY"
)

// CashAccountName is the shared counter-account used when no name is supplied.
const CashAccountName = "Cash account"

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Expense, Revenue, Cash, Reconciliation, InitialBalance, Liability:
		return true
	}
	return false
}

// Account represents a ledger account owned by a user.
type Account struct {
	AccountID      string          `json:"accountID"`
	UserID         string          `json:"userID"`
	Name           string          `json:"name"`
	AccountType    AccountType     `json:"accountType"`
	IsActive       bool            `json:"isActive"`
	IBAN           string          `json:"iban,omitempty"`
	BIC            string          `json:"bic,omitempty"`
	AccountNumber  string          `json:"accountNumber,omitempty"`
	VirtualBalance decimal.Decimal `json:"virtualBalance"`
	CurrencyID     string          `json:"currencyID,omitempty"` // native currency, from account meta
	Role           string          `json:"role,omitempty"`       // e.g. defaultAsset, savingAsset
	AuditFields
}

// AllowedSourceTypes lists which account types may hold the negative leg per journal type.
var AllowedSourceTypes = map[JournalType][]AccountType{
	Withdrawal:            {Asset, Liability},
	Deposit:               {Revenue, Cash, Liability},
	Transfer:              {Asset, Liability},
	OpeningBalance:        {InitialBalance, Asset, Liability},
	ReconciliationJournal: {Asset, Reconciliation},
}

// AllowedDestinationTypes lists which account types may hold the positive leg per journal type.
var AllowedDestinationTypes = map[JournalType][]AccountType{
	Withdrawal:            {Expense, Cash, Liability},
	Deposit:               {Asset, Liability},
	Transfer:              {Asset, Liability},
	OpeningBalance:        {Asset, Liability, InitialBalance},
	ReconciliationJournal: {Reconciliation, Asset},
}

// CanBeSource reports whether the account may be the source of a journal of type jt.
func (a Account) CanBeSource(jt JournalType) bool {
	return containsType(AllowedSourceTypes[jt], a.AccountType)
}

// CanBeDestination reports whether the account may be the destination of a journal of type jt.
func (a Account) CanBeDestination(jt JournalType) bool {
	return containsType(AllowedDestinationTypes[jt], a.AccountType)
}

func containsType(types []AccountType, t AccountType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
