package domain

import "github.com/SscSPs/fireledger/internal/apperrors"

// ImportRole names what a raw statement field means.
type ImportRole string

const (
	RoleAccountID       ImportRole = "account-id"
	RoleAccountIBAN     ImportRole = "account-iban"
	RoleAccountName     ImportRole = "account-name"
	RoleAccountNumber   ImportRole = "account-number"
	RoleOpposingID      ImportRole = "opposing-id"
	RoleOpposingIBAN    ImportRole = "opposing-iban"
	RoleOpposingName    ImportRole = "opposing-name"
	RoleOpposingNumber  ImportRole = "opposing-number"
	RoleBudgetID        ImportRole = "budget-id"
	RoleBudgetName      ImportRole = "budget-name"
	RoleCategoryID      ImportRole = "category-id"
	RoleCategoryName    ImportRole = "category-name"
	RoleCurrencyID      ImportRole = "currency-id"
	RoleCurrencyCode    ImportRole = "currency-code"
	RoleCurrencySymbol  ImportRole = "currency-symbol"
	RoleCurrencyName    ImportRole = "currency-name"
	RoleForeignCurrency ImportRole = "foreign-currency-code"
	RoleAmount          ImportRole = "amount"
	RoleAmountForeign   ImportRole = "amount-foreign"
	RoleDate            ImportRole = "date-transaction"
	RoleDateInterest    ImportRole = "date-interest"
	RoleDateBook        ImportRole = "date-book"
	RoleDateProcess     ImportRole = "date-process"
	RoleDateDue         ImportRole = "date-due"
	RoleDatePayment     ImportRole = "date-payment"
	RoleDateInvoice     ImportRole = "date-invoice"
	RoleDescription     ImportRole = "description"
	RoleNote            ImportRole = "note"
	RoleTagsComma       ImportRole = "tags-comma"
	RoleInternalRef     ImportRole = "internal-reference"
)

var importRoles = map[ImportRole]bool{
	RoleAccountID: true, RoleAccountIBAN: true, RoleAccountName: true, RoleAccountNumber: true,
	RoleOpposingID: true, RoleOpposingIBAN: true, RoleOpposingName: true, RoleOpposingNumber: true,
	RoleBudgetID: true, RoleBudgetName: true, RoleCategoryID: true, RoleCategoryName: true,
	RoleCurrencyID: true, RoleCurrencyCode: true, RoleCurrencySymbol: true, RoleCurrencyName: true,
	RoleForeignCurrency: true, RoleAmount: true, RoleAmountForeign: true,
	RoleDate: true, RoleDateInterest: true, RoleDateBook: true, RoleDateProcess: true,
	RoleDateDue: true, RoleDatePayment: true, RoleDateInvoice: true,
	RoleDescription: true, RoleNote: true, RoleTagsComma: true, RoleInternalRef: true,
}

// Valid reports whether r is a known role.
func (r ImportRole) Valid() bool {
	return importRoles[r]
}

// ImportValue is one role-tagged field of a statement row, optionally pre-mapped to an entity id.
type ImportValue struct {
	Role   ImportRole `json:"role" validate:"required,import_role"`
	Value  string     `json:"value"`
	Mapped *string    `json:"mapped,omitempty"`
}

// ImportRow is one statement line.
type ImportRow struct {
	Values []ImportValue `json:"values" validate:"required,min=1,dive"`
}

// Get returns the first value with role.
func (r ImportRow) Get(role ImportRole) (ImportValue, bool) {
	for _, v := range r.Values {
		if v.Role == role {
			return v, true
		}
	}
	return ImportValue{}, false
}

// Find is Get returning a pointer, nil when the row has no value with role.
func (r ImportRow) Find(role ImportRole) *ImportValue {
	if v, ok := r.Get(role); ok {
		return &v
	}
	return nil
}

// ImportRowResult reports the outcome of one imported row.
type ImportRowResult struct {
	Row       int                  `json:"row"`
	JournalID string               `json:"journalID,omitempty"`
	Errors    apperrors.MessageBag `json:"errors,omitempty"`
}
