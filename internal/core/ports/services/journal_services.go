package services

import (
	"context"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/shopspring/decimal"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournal retrieves a specific journal with its legs.
	GetJournal(ctx context.Context, userID string, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a page of the user's journals.
	ListJournals(ctx context.Context, userID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// GetJournalSourceAccounts returns the distinct accounts behind the journal's negative legs.
	GetJournalSourceAccounts(ctx context.Context, userID string, journal *domain.Journal) ([]domain.Account, error)

	// GetJournalDestinationAccounts returns the distinct accounts behind the journal's positive legs.
	GetJournalDestinationAccounts(ctx context.Context, userID string, journal *domain.Journal) ([]domain.Account, error)

	// GetJournalTotal returns the sum of the journal's positive legs.
	GetJournalTotal(journal *domain.Journal) decimal.Decimal
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// Store creates a journal and its legs. Business-rule failures come back as *apperrors.ValidationError.
	Store(ctx context.Context, userID string, req dto.StoreJournalRequest) (*domain.Journal, error)

	// Update changes a journal and, when splits are supplied, its legs.
	Update(ctx context.Context, userID string, journalID string, req dto.UpdateJournalRequest) (*domain.Journal, error)

	// Convert changes the journal's type and re-points its legs.
	Convert(ctx context.Context, userID string, journalID string, req dto.ConvertJournalRequest) (*domain.Journal, error)

	// Reconcile marks a leg and its opposing leg reconciled. It reports false when no opposing leg exists.
	Reconcile(ctx context.Context, userID string, transactionID string) (bool, error)

	// Destroy soft-deletes a journal.
	Destroy(ctx context.Context, userID string, journalID string) error
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}

// SplitSvc builds the editable view of a journal.
type SplitSvc interface {
	// BuildSplitEntries returns one entry per split, merged with previously submitted rows.
	BuildSplitEntries(ctx context.Context, userID string, journalID string, oldInput map[int]dto.SplitEntryInput) ([]dto.SplitEntry, error)
}
