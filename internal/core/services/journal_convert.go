package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/SscSPs/fireledger/internal/dto"
)

var convertibleTypes = map[domain.JournalType]bool{
	domain.Withdrawal: true,
	domain.Deposit:    true,
	domain.Transfer:   true,
}

// Convert changes the type of an unsplit journal and re-points its legs. The side that keeps
// its role keeps its account; the other side is resolved from the request:
//
//	withdrawal -> deposit:  source is a revenue account (or cash), destination is the old source
//	withdrawal -> transfer: source unchanged, destination is the given asset account
//	deposit -> withdrawal:  source is the old destination, destination is an expense account (or cash)
//	deposit -> transfer:    source is the given asset account, destination unchanged
//	transfer -> withdrawal: source unchanged, destination is an expense account (or cash)
//	transfer -> deposit:    source is a revenue account (or cash), destination unchanged
//
// Only withdrawals keep a budget. Rejections come back as *apperrors.ValidationError and change nothing.
func (s *journalService) Convert(ctx context.Context, userID string, journalID string, req dto.ConvertJournalRequest) (*domain.Journal, error) {
	logger := s.GetLogger(ctx)
	if userID == "" {
		return nil, ErrUserRequired
	}

	var journal *domain.Journal
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		journal, err = s.journals.FindJournalByID(ctx, userID, journalID)
		if err != nil {
			return err
		}
		if err := s.journals.LockJournal(ctx, journalID); err != nil {
			return err
		}

		bag := apperrors.NewMessageBag()
		from, to := journal.TransactionType, req.Type
		switch {
		case from == to:
			bag.Add("type", fmt.Sprintf("journal is already a %s", strings.ToLower(string(to))))
		case !convertibleTypes[from] || !convertibleTypes[to]:
			bag.Add("type", fmt.Sprintf("cannot convert a %s into a %s", strings.ToLower(string(from)), strings.ToLower(string(to))))
		case journal.IsSplit():
			bag.Add("transactions", "split journals cannot be converted")
		}
		if err := apperrors.BagOrNil(bag); err != nil {
			return err
		}

		sourceLeg, destinationLeg, ok := firstPair(journal.Transactions)
		if !ok {
			return apperrors.NewValidationError("transactions", "journal has no leg pair to convert")
		}
		oldSource, err := s.accounts.FindAccountByID(ctx, userID, sourceLeg.AccountID)
		if err != nil {
			return fmt.Errorf("failed to load source account: %w", err)
		}
		oldDestination, err := s.accounts.FindAccountByID(ctx, userID, destinationLeg.AccountID)
		if err != nil {
			return fmt.Errorf("failed to load destination account: %w", err)
		}

		source, destination, err := s.convertAccounts(ctx, userID, from, to, req, oldSource, oldDestination, bag)
		if err != nil {
			return err
		}
		if source == nil {
			bag.Add("source", "could not determine the new source account")
		}
		if destination == nil {
			bag.Add("destination", "could not determine the new destination account")
		}
		if source != nil && destination != nil && source.AccountID == destination.AccountID {
			bag.Add("destination", "source and destination must be different accounts")
		}
		if err := apperrors.BagOrNil(bag); err != nil {
			return err
		}

		sourceLeg.AccountID = source.AccountID
		destinationLeg.AccountID = destination.AccountID
		if to != domain.Withdrawal {
			sourceLeg.BudgetID, destinationLeg.BudgetID = nil, nil
			journal.BudgetID = nil
		}
		now := s.Now()
		for _, leg := range []*domain.Transaction{&sourceLeg, &destinationLeg} {
			leg.Touch(userID, now)
			if err := s.journals.UpdateTransaction(ctx, *leg); err != nil {
				return err
			}
		}

		journal.TransactionType = to
		journal.Transactions = []domain.Transaction{sourceLeg, destinationLeg}
		journal.Touch(userID, now)
		return s.journals.UpdateJournal(ctx, *journal)
	})
	if err != nil {
		if _, ok := apperrors.MessagesOf(err); ok || errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Journal conversion rejected", slog.String("journal_id", journalID), slog.String("error", err.Error()))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to convert journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to convert journal: %w", err)
	}

	s.Cache.Mark(userID)
	logger.Info("Journal converted",
		slog.String("journal_id", journalID),
		slog.String("type", string(journal.TransactionType)))
	s.events.Dispatch(ctx, domain.UpdatedTransactionJournal{Journal: *journal})
	return journal, nil
}

func (s *journalService) convertAccounts(ctx context.Context, userID string, from, to domain.JournalType, req dto.ConvertJournalRequest, oldSource, oldDestination *domain.Account, bag apperrors.MessageBag) (*domain.Account, *domain.Account, error) {
	switch {
	case from == domain.Withdrawal && to == domain.Deposit:
		source, err := s.resolver.RevenueOrCash(ctx, userID, req.SourceName)
		return source, oldSource, err
	case from == domain.Withdrawal && to == domain.Transfer:
		destination, err := s.resolver.ByID(ctx, userID, req.DestinationID, to, false, bag, "destination")
		return oldSource, destination, err
	case from == domain.Deposit && to == domain.Withdrawal:
		destination, err := s.resolver.ExpenseOrCash(ctx, userID, req.DestinationName)
		return oldDestination, destination, err
	case from == domain.Deposit && to == domain.Transfer:
		source, err := s.resolver.ByID(ctx, userID, req.SourceID, to, true, bag, "source")
		return source, oldDestination, err
	case from == domain.Transfer && to == domain.Withdrawal:
		destination, err := s.resolver.ExpenseOrCash(ctx, userID, req.DestinationName)
		return oldSource, destination, err
	case from == domain.Transfer && to == domain.Deposit:
		source, err := s.resolver.RevenueOrCash(ctx, userID, req.SourceName)
		return source, oldDestination, err
	}
	return nil, nil, nil
}
