package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PiggyBankReader defines read operations for piggy banks.
type PiggyBankReader interface {
	FindPiggyBankByID(ctx context.Context, userID string, piggyBankID string) (*domain.PiggyBank, error)
	ListPiggyBanks(ctx context.Context, userID string) ([]domain.PiggyBank, error)

	// FindRepetition returns the repetition of the piggy bank covering date.
	FindRepetition(ctx context.Context, piggyBankID string, date time.Time) (*domain.PiggyBankRepetition, error)

	// SumSavedOnAccount adds up the current amounts, on date, of every piggy bank on the account.
	SumSavedOnAccount(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error)

	ListEvents(ctx context.Context, piggyBankID string) ([]domain.PiggyBankEvent, error)
}

// PiggyBankWriter defines write operations for piggy banks.
type PiggyBankWriter interface {
	// SavePiggyBank persists a piggy bank with its first repetition.
	SavePiggyBank(ctx context.Context, piggy domain.PiggyBank, repetition domain.PiggyBankRepetition) error
	UpdatePiggyBank(ctx context.Context, piggy domain.PiggyBank) error
	UpdateRepetitionAmount(ctx context.Context, repetitionID string, amount decimal.Decimal) error
	SaveEvent(ctx context.Context, event domain.PiggyBankEvent) error
}

// PiggyBankRepositoryFacade combines all piggy bank repository interfaces
type PiggyBankRepositoryFacade interface {
	PiggyBankReader
	PiggyBankWriter
}
