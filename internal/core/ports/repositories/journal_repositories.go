package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionSumFilter selects which live legs SumTransactions adds up.
type TransactionSumFilter struct {
	UserID       string
	JournalTypes []domain.JournalType
	AccountIDs   []string
	BudgetIDs    []string // matches the leg's budget or, failing that, the journal's
	Start        time.Time
	End          time.Time
	NegativeOnly bool
}

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a live journal with its legs, meta, notes and tags.
	FindJournalByID(ctx context.Context, userID string, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a page of the user's journals, newest first, using token-based pagination.
	// It returns the journals, a token for the next page, and an error.
	ListJournals(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournal persists a journal with its legs, meta, notes and tags.
	SaveJournal(ctx context.Context, journal domain.Journal) error

	// UpdateJournal rewrites the journal header, meta, notes and tags.
	UpdateJournal(ctx context.Context, journal domain.Journal) error

	// LockJournal takes a row lock on the journal for the rest of the current transaction.
	LockJournal(ctx context.Context, journalID string) error

	// DeleteJournal soft-deletes the journal and its legs and drops meta, notes, tags and piggy bank links.
	DeleteJournal(ctx context.Context, journalID string, userID string, at time.Time) error
}

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a live leg of the user's journals.
	FindTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByJournalID retrieves all live legs of a journal, ordered by identifier.
	FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error)

	// SumTransactions adds up the legs matching filter.
	SumTransactions(ctx context.Context, filter TransactionSumFilter) (decimal.Decimal, error)
}

// TransactionWriter defines write operations for legs.
type TransactionWriter interface {
	// SaveTransactions inserts legs for an existing journal.
	SaveTransactions(ctx context.Context, txns []domain.Transaction) error

	// UpdateTransaction rewrites one leg's account, amounts, currencies, budget and category.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// SoftDeleteTransactions marks all live legs of a journal as deleted.
	SoftDeleteTransactions(ctx context.Context, journalID string, at time.Time) error

	// SetReconciled sets the reconciled flag on the given legs.
	SetReconciled(ctx context.Context, transactionIDs []string, reconciled bool) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	TransactionReader
	TransactionWriter
}
