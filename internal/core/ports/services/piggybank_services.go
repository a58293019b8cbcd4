package services

import (
	"context"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/shopspring/decimal"
)

// PiggyBankReaderSvc defines read operations for piggy banks.
type PiggyBankReaderSvc interface {
	GetPiggyBanksWithAmount(ctx context.Context, userID string) ([]domain.PiggyBankWithAmount, error)
	ListEvents(ctx context.Context, userID string, piggyBankID string) ([]domain.PiggyBankEvent, error)

	CanAddAmount(ctx context.Context, piggy *domain.PiggyBank, amount decimal.Decimal) (bool, error)
	CanRemoveAmount(ctx context.Context, piggy *domain.PiggyBank, amount decimal.Decimal) (bool, error)

	// GetExactAmount derives the clamped piggy bank delta a journal implies.
	GetExactAmount(ctx context.Context, userID string, piggy *domain.PiggyBank, repetition *domain.PiggyBankRepetition, journal *domain.Journal) (decimal.Decimal, error)
}

// PiggyBankWriterSvc defines write operations for piggy banks.
type PiggyBankWriterSvc interface {
	CreatePiggyBank(ctx context.Context, userID string, req dto.CreatePiggyBankRequest) (*domain.PiggyBank, error)
	UpdatePiggyBank(ctx context.Context, userID string, piggyBankID string, req dto.UpdatePiggyBankRequest) (*domain.PiggyBank, error)

	// AddAmount and RemoveAmount check room first and return a ValidationError when the amount does not fit.
	AddAmount(ctx context.Context, userID string, piggyBankID string, amount decimal.Decimal) error
	RemoveAmount(ctx context.Context, userID string, piggyBankID string, amount decimal.Decimal) error

	// LinkJournal moves the amount a journal implies into or out of a piggy bank.
	LinkJournal(ctx context.Context, userID string, piggyBankID string, journal *domain.Journal) error
}

// PiggyBankSvcFacade combines all piggy bank service interfaces
type PiggyBankSvcFacade interface {
	PiggyBankReaderSvc
	PiggyBankWriterSvc
}
