package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account of the user by its unique identifier.
	FindAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountsByName retrieves the user's accounts with exactly this name among the given types.
	FindAccountsByName(ctx context.Context, userID string, name string, types []domain.AccountType) ([]domain.Account, error)

	// FindAccountsByIBAN retrieves the user's accounts with this IBAN among the given types.
	FindAccountsByIBAN(ctx context.Context, userID string, iban string, types []domain.AccountType) ([]domain.Account, error)

	// FindAccountsByNumber retrieves the user's accounts with this account number among the given types.
	FindAccountsByNumber(ctx context.Context, userID string, number string, types []domain.AccountType) ([]domain.Account, error)

	// ListAccountsByType lists the user's active accounts of the given types.
	ListAccountsByType(ctx context.Context, userID string, types []domain.AccountType) ([]domain.Account, error)

	// GetAccountBalance sums the account's live legs dated on or before date.
	GetAccountBalance(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
