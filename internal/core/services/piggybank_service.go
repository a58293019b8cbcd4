package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/amount"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/SscSPs/fireledger/internal/platform/cache"
)

type piggyBankService struct {
	BaseService
	tx       portsrepo.TransactionManager
	piggies  portsrepo.PiggyBankRepositoryFacade
	accounts portsrepo.AccountRepositoryFacade
}

// NewPiggyBankService creates the piggy bank service.
func NewPiggyBankService(repos portsrepo.RepositoryProvider, opts ...ServiceOption) portssvc.PiggyBankSvcFacade {
	base := newBaseService()
	applyOptions(&base, opts)
	return &piggyBankService{
		BaseService: base,
		tx:          repos.TxManager,
		piggies:     repos.PiggyRepo,
		accounts:    repos.AccountRepo,
	}
}

var _ portssvc.PiggyBankSvcFacade = (*piggyBankService)(nil)

func (s *piggyBankService) CreatePiggyBank(ctx context.Context, userID string, req dto.CreatePiggyBankRequest) (*domain.PiggyBank, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	bag := apperrors.NewMessageBag()
	if strings.TrimSpace(req.Name) == "" {
		bag.Add("name", "a name is required")
	}
	if !req.TargetAmount.IsPositive() {
		bag.Add("targetAmount", "the target amount must be positive")
	}
	if req.StartDate != nil && req.TargetDate != nil && req.TargetDate.Before(*req.StartDate) {
		bag.Add("targetDate", "the target date must not be before the start date")
	}
	if err := apperrors.BagOrNil(bag); err != nil {
		return nil, err
	}

	now := s.Now()
	start := domain.DateOnly(now)
	if req.StartDate != nil {
		start = domain.DateOnly(*req.StartDate)
	}
	var target *domain.PiggyBank
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.accounts.FindAccountByID(ctx, userID, req.AccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationError("accountID", "account does not exist")
			}
			return err
		}
		if account.AccountType != domain.Asset {
			return apperrors.NewValidationError("accountID", "piggy banks can only be linked to asset accounts")
		}
		existing, err := s.piggies.ListPiggyBanks(ctx, userID)
		if err != nil {
			return err
		}

		piggy := domain.PiggyBank{
			PiggyBankID:  uuid.NewString(),
			UserID:       userID,
			AccountID:    account.AccountID,
			Name:         strings.TrimSpace(req.Name),
			TargetAmount: req.TargetAmount,
			StartDate:    &start,
			Order:        len(existing) + 1,
			AuditFields:  domain.NewAuditFields(userID, now),
		}
		if req.TargetDate != nil {
			t := domain.DateOnly(*req.TargetDate)
			piggy.TargetDate = &t
		}
		repetition := domain.PiggyBankRepetition{
			RepetitionID:  uuid.NewString(),
			PiggyBankID:   piggy.PiggyBankID,
			StartDate:     piggy.StartDate,
			TargetDate:    piggy.TargetDate,
			CurrentAmount: decimal.Zero,
		}
		target = &piggy
		return s.piggies.SavePiggyBank(ctx, piggy, repetition)
	})
	if err != nil {
		if _, ok := apperrors.MessagesOf(err); ok {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to create piggy bank")
		return nil, fmt.Errorf("failed to create piggy bank: %w", err)
	}
	s.Cache.Mark(userID)
	s.GetLogger(ctx).Info("Piggy bank created", slog.String("piggy_bank_id", target.PiggyBankID))
	return target, nil
}

// UpdatePiggyBank changes name, target and target date. Lowering the target below the saved
// amount clamps the saved amount and records the difference as a correcting event.
func (s *piggyBankService) UpdatePiggyBank(ctx context.Context, userID string, piggyBankID string, req dto.UpdatePiggyBankRequest) (*domain.PiggyBank, error) {
	if req.TargetAmount != nil && !req.TargetAmount.IsPositive() {
		return nil, apperrors.NewValidationError("targetAmount", "the target amount must be positive")
	}
	var piggy *domain.PiggyBank
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		piggy, err = s.piggies.FindPiggyBankByID(ctx, userID, piggyBankID)
		if err != nil {
			return err
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
			piggy.Name = strings.TrimSpace(*req.Name)
		}
		if req.TargetDate != nil {
			t := domain.DateOnly(*req.TargetDate)
			piggy.TargetDate = &t
		}
		now := s.Now()
		if req.TargetAmount != nil {
			piggy.TargetAmount = *req.TargetAmount
			repetition, err := s.repetition(ctx, piggy, now)
			if err != nil {
				return err
			}
			if repetition != nil && repetition.CurrentAmount.GreaterThan(piggy.TargetAmount) {
				correction := amount.Sub(piggy.TargetAmount, repetition.CurrentAmount)
				s.GetLogger(ctx).Info("Clamping piggy bank to its new target",
					slog.String("piggy_bank_id", piggy.PiggyBankID),
					slog.String("correction", correction.String()))
				if err := s.applyDelta(ctx, repetition, correction, nil); err != nil {
					return err
				}
			}
		}
		piggy.Touch(userID, now)
		return s.piggies.UpdatePiggyBank(ctx, *piggy)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update piggy bank", slog.String("piggy_bank_id", piggyBankID))
		return nil, fmt.Errorf("failed to update piggy bank: %w", err)
	}
	s.Cache.Mark(userID)
	return piggy, nil
}

func (s *piggyBankService) GetPiggyBanksWithAmount(ctx context.Context, userID string) ([]domain.PiggyBankWithAmount, error) {
	today := domain.DateOnly(s.Now())
	key := s.Cache.Key(userID, "piggy-banks-with-amount", today)
	return cache.Remember(s.Cache, key, func() ([]domain.PiggyBankWithAmount, error) {
		piggies, err := s.piggies.ListPiggyBanks(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list piggy banks: %w", err)
		}
		result := make([]domain.PiggyBankWithAmount, 0, len(piggies))
		for _, piggy := range piggies {
			saved, err := s.savedSoFar(ctx, &piggy)
			if err != nil {
				return nil, err
			}
			left := amount.Sub(piggy.TargetAmount, saved)
			if left.IsNegative() {
				left = decimal.Zero
			}
			result = append(result, domain.PiggyBankWithAmount{PiggyBank: piggy, SavedSoFar: saved, LeftToSave: left})
		}
		return result, nil
	})
}

func (s *piggyBankService) ListEvents(ctx context.Context, userID string, piggyBankID string) ([]domain.PiggyBankEvent, error) {
	if _, err := s.piggies.FindPiggyBankByID(ctx, userID, piggyBankID); err != nil {
		return nil, err
	}
	events, err := s.piggies.ListEvents(ctx, piggyBankID)
	if err != nil {
		return nil, fmt.Errorf("failed to list piggy bank events: %w", err)
	}
	return events, nil
}

// CanAddAmount reports whether amount fits both the money left on the account, net of
// every piggy bank on it, and the room left before the target.
func (s *piggyBankService) CanAddAmount(ctx context.Context, piggy *domain.PiggyBank, amt decimal.Decimal) (bool, error) {
	today := domain.DateOnly(s.Now())
	repetition, err := s.repetition(ctx, piggy, today)
	if err != nil || repetition == nil {
		return false, err
	}
	account, err := s.accounts.FindAccountByID(ctx, piggy.UserID, piggy.AccountID)
	if err != nil {
		return false, fmt.Errorf("failed to load piggy bank account: %w", err)
	}
	balance, err := s.accounts.GetAccountBalance(ctx, account.AccountID, today)
	if err != nil {
		return false, fmt.Errorf("failed to get account balance: %w", err)
	}
	saved, err := s.piggies.SumSavedOnAccount(ctx, account.AccountID, today)
	if err != nil {
		return false, fmt.Errorf("failed to sum saved amounts: %w", err)
	}
	leftOnAccount := amount.Sub(amount.Add(balance, account.VirtualBalance), saved)
	room := amount.Sub(piggy.TargetAmount, repetition.CurrentAmount)
	return amt.LessThanOrEqual(amount.Min(leftOnAccount, room)), nil
}

// CanRemoveAmount reports whether amount does not exceed what is saved.
func (s *piggyBankService) CanRemoveAmount(ctx context.Context, piggy *domain.PiggyBank, amt decimal.Decimal) (bool, error) {
	repetition, err := s.repetition(ctx, piggy, s.Now())
	if err != nil || repetition == nil {
		return false, err
	}
	return amt.LessThanOrEqual(repetition.CurrentAmount), nil
}

func (s *piggyBankService) AddAmount(ctx context.Context, userID string, piggyBankID string, amt decimal.Decimal) error {
	return s.move(ctx, userID, piggyBankID, amt, true)
}

func (s *piggyBankService) RemoveAmount(ctx context.Context, userID string, piggyBankID string, amt decimal.Decimal) error {
	return s.move(ctx, userID, piggyBankID, amt, false)
}

func (s *piggyBankService) move(ctx context.Context, userID, piggyBankID string, amt decimal.Decimal, add bool) error {
	if !amt.IsPositive() {
		return apperrors.NewValidationError("amount", "the amount must be positive")
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		piggy, err := s.piggies.FindPiggyBankByID(ctx, userID, piggyBankID)
		if err != nil {
			return err
		}
		check, delta, message := s.CanAddAmount, amt, "the amount does not fit in the piggy bank"
		if !add {
			check, delta, message = s.CanRemoveAmount, amount.Negative(amt), "the piggy bank does not hold that much"
		}
		ok, err := check(ctx, piggy, amt)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewValidationError("amount", message)
		}
		repetition, err := s.repetition(ctx, piggy, s.Now())
		if err != nil {
			return err
		}
		return s.applyDelta(ctx, repetition, delta, nil)
	})
	if err != nil {
		if _, ok := apperrors.MessagesOf(err); ok || errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.LogError(ctx, err, "Failed to move piggy bank amount", slog.String("piggy_bank_id", piggyBankID))
		return fmt.Errorf("failed to move piggy bank amount: %w", err)
	}
	s.Cache.Mark(userID)
	return nil
}

// GetExactAmount derives what journal moves into (positive) or out of (negative) the piggy bank.
// The journal total counts as removal when the piggy bank's account pays, as addition otherwise.
// Additions are clamped to the room before the target, removals to what is saved.
// A journal that does not touch the piggy bank's account moves nothing.
func (s *piggyBankService) GetExactAmount(ctx context.Context, userID string, piggy *domain.PiggyBank, repetition *domain.PiggyBankRepetition, journal *domain.Journal) (decimal.Decimal, error) {
	if piggy == nil || repetition == nil || journal == nil {
		return decimal.Zero, nil
	}
	return ExactPiggyAmount(piggy, repetition, journal), nil
}

// ExactPiggyAmount is the storage-free core of GetExactAmount.
func ExactPiggyAmount(piggy *domain.PiggyBank, repetition *domain.PiggyBankRepetition, journal *domain.Journal) decimal.Decimal {
	var isSource, isDestination bool
	for _, leg := range journal.Transactions {
		if leg.AccountID != piggy.AccountID {
			continue
		}
		if leg.Amount.IsNegative() {
			isSource = true
		} else {
			isDestination = true
		}
	}
	if !isSource && !isDestination {
		return decimal.Zero
	}

	delta := journal.Total()
	if isSource {
		delta = delta.Neg()
	}
	room := amount.Sub(piggy.TargetAmount, repetition.CurrentAmount)
	floor := repetition.CurrentAmount.Neg()
	if delta.IsPositive() && delta.GreaterThan(room) {
		delta = room
	}
	if delta.IsNegative() && delta.LessThan(floor) {
		delta = floor
	}
	return delta
}

// LinkJournal applies the amount journal implies to the piggy bank's repetition on the journal date.
func (s *piggyBankService) LinkJournal(ctx context.Context, userID string, piggyBankID string, journal *domain.Journal) error {
	logger := s.GetLogger(ctx).With(slog.String("piggy_bank_id", piggyBankID), slog.String("journal_id", journal.JournalID))
	var delta decimal.Decimal
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		piggy, err := s.piggies.FindPiggyBankByID(ctx, userID, piggyBankID)
		if err != nil {
			return err
		}
		repetition, err := s.repetition(ctx, piggy, journal.JournalDate)
		if err != nil || repetition == nil {
			return err
		}
		linked, err := s.linkedAmount(ctx, piggyBankID, journal.JournalID)
		if err != nil {
			return err
		}
		// Size the link as if the journal had never been linked, then apply only the difference.
		unlinked := *repetition
		unlinked.CurrentAmount = amount.Sub(repetition.CurrentAmount, linked)
		desired, err := s.GetExactAmount(ctx, userID, piggy, &unlinked, journal)
		if err != nil {
			return err
		}
		delta = amount.Sub(desired, linked)
		if delta.IsZero() {
			logger.Debug("Journal moves nothing more into the piggy bank")
			return nil
		}
		journalID := journal.JournalID
		return s.applyDelta(ctx, repetition, delta, &journalID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Piggy bank not found, journal not linked")
			return nil
		}
		return fmt.Errorf("failed to link journal to piggy bank: %w", err)
	}
	if !delta.IsZero() {
		s.Cache.Mark(userID)
		logger.Info("Journal linked to piggy bank", slog.String("amount", delta.String()))
	}
	return nil
}

// linkedAmount sums what earlier links of journalID already moved into the piggy bank.
func (s *piggyBankService) linkedAmount(ctx context.Context, piggyBankID, journalID string) (decimal.Decimal, error) {
	events, err := s.piggies.ListEvents(ctx, piggyBankID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list piggy bank events: %w", err)
	}
	total := decimal.Zero
	for _, e := range events {
		if e.JournalID != nil && *e.JournalID == journalID {
			total = amount.Add(total, e.Amount)
		}
	}
	return total, nil
}

// applyDelta moves the repetition's running total by delta and records it as an event.
// It does not check bounds; callers do.
func (s *piggyBankService) applyDelta(ctx context.Context, repetition *domain.PiggyBankRepetition, delta decimal.Decimal, journalID *string) error {
	now := s.Now()
	repetition.CurrentAmount = amount.Add(repetition.CurrentAmount, delta)
	if err := s.piggies.UpdateRepetitionAmount(ctx, repetition.RepetitionID, repetition.CurrentAmount); err != nil {
		return err
	}
	return s.piggies.SaveEvent(ctx, domain.PiggyBankEvent{
		EventID:     uuid.NewString(),
		PiggyBankID: repetition.PiggyBankID,
		JournalID:   journalID,
		Date:        domain.DateOnly(now),
		Amount:      delta,
		CreatedAt:   now,
	})
}

// repetition returns the repetition covering date, or nil when the piggy bank has none then.
func (s *piggyBankService) repetition(ctx context.Context, piggy *domain.PiggyBank, date time.Time) (*domain.PiggyBankRepetition, error) {
	repetition, err := s.piggies.FindRepetition(ctx, piggy.PiggyBankID, domain.DateOnly(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.GetLogger(ctx).Warn("Piggy bank has no repetition on date",
				slog.String("piggy_bank_id", piggy.PiggyBankID),
				slog.String("date", date.Format(domain.MetaDateLayout)))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load piggy bank repetition: %w", err)
	}
	return repetition, nil
}

func (s *piggyBankService) savedSoFar(ctx context.Context, piggy *domain.PiggyBank) (decimal.Decimal, error) {
	repetition, err := s.repetition(ctx, piggy, s.Now())
	if err != nil {
		return decimal.Zero, err
	}
	if repetition == nil {
		return decimal.Zero, nil
	}
	return repetition.CurrentAmount, nil
}
