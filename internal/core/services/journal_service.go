package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/SscSPs/fireledger/internal/platform/cache"
)

// ErrUserRequired is returned when a ledger operation is called without a user.
var ErrUserRequired = fmt.Errorf("%w: a user is required", apperrors.ErrMisconfigured)

// journalService creates, changes and removes journals and their legs.
type journalService struct {
	BaseService
	tx         portsrepo.TransactionManager
	journals   portsrepo.JournalRepositoryFacade
	accounts   portsrepo.AccountRepositoryFacade
	budgets    portsrepo.BudgetRepositoryFacade
	categories portsrepo.CategoryRepositoryFacade
	resolver   *AccountResolver
	events     *EventDispatcher
}

// NewJournalService creates a new JournalService.
func NewJournalService(repos portsrepo.RepositoryProvider, events *EventDispatcher, opts ...ServiceOption) portssvc.JournalSvcFacade {
	base := newBaseService()
	applyOptions(&base, opts)
	return &journalService{
		BaseService: base,
		tx:          repos.TxManager,
		journals:    repos.JournalRepo,
		accounts:    repos.AccountRepo,
		budgets:     repos.BudgetRepo,
		categories:  repos.CategoryRepo,
		resolver:    NewAccountResolver(repos.AccountRepo, base.Now),
		events:      events,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// Store creates a journal with one leg pair per split.
func (s *journalService) Store(ctx context.Context, userID string, req dto.StoreJournalRequest) (*domain.Journal, error) {
	logger := s.GetLogger(ctx)
	if userID == "" {
		return nil, ErrUserRequired
	}

	bag := apperrors.NewMessageBag()
	if !req.Type.Valid() {
		bag.Add("type", fmt.Sprintf("unknown journal type %q", req.Type))
	}
	if strings.TrimSpace(req.Description) == "" {
		bag.Add("description", "a description is required")
	}
	if len(req.Transactions) == 0 {
		bag.Add("transactions", "at least one split is required")
	}
	if len(req.Transactions) > 1 && (req.Type == domain.OpeningBalance || req.Type == domain.ReconciliationJournal) {
		bag.Add("transactions", "opening balances and reconciliations cannot be split")
	}
	checkSplitAmounts(req.Transactions, bag)
	if err := apperrors.BagOrNil(bag); err != nil {
		return nil, err
	}

	now := s.Now()
	journal := domain.Journal{
		JournalID:       uuid.NewString(),
		UserID:          userID,
		TransactionType: req.Type,
		Description:     strings.TrimSpace(req.Description),
		JournalDate:     domain.DateOnly(req.Date),
		Notes:           emptyToNil(req.Notes),
		Tags:            normalizeTags(req.Tags),
		CategoryID:      emptyToNil(req.CategoryID),
		AuditFields:     domain.NewAuditFields(userID, now),
	}
	if req.Type == domain.Withdrawal {
		journal.BudgetID = emptyToNil(req.BudgetID)
	}
	applyMeta(&journal, req.JournalMetaRequest)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, userID, journal.BudgetID, journal.CategoryID, "", bag); err != nil {
			return err
		}
		legs, err := s.buildLegs(ctx, &journal, req.Transactions, bag)
		if err != nil {
			return err
		}
		if err := apperrors.BagOrNil(bag); err != nil {
			return err
		}
		if err := domain.ValidateBalance(legs); err != nil {
			return apperrors.NewValidationError("transactions", err.Error())
		}
		journal.Transactions = legs
		return s.journals.SaveJournal(ctx, journal)
	})
	if err != nil {
		if _, ok := apperrors.MessagesOf(err); ok {
			logger.Info("Journal rejected", slog.String("error", err.Error()))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to store journal")
		return nil, fmt.Errorf("failed to store journal: %w", err)
	}

	s.Cache.Mark(userID)
	logger.Info("Journal stored",
		slog.String("journal_id", journal.JournalID),
		slog.String("type", string(journal.TransactionType)),
		slog.Int("legs", len(journal.Transactions)))
	s.events.Dispatch(ctx, domain.StoredTransactionJournal{Journal: journal, PiggyBankID: req.PiggyBankID})
	return &journal, nil
}

// Update changes header fields and, when splits are supplied, the legs of a journal.
// A single split on an unsplit journal updates both legs in place; otherwise the legs are replaced.
func (s *journalService) Update(ctx context.Context, userID string, journalID string, req dto.UpdateJournalRequest) (*domain.Journal, error) {
	logger := s.GetLogger(ctx)
	if userID == "" {
		return nil, ErrUserRequired
	}

	bag := apperrors.NewMessageBag()
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		bag.Add("description", "a description is required")
	}
	checkSplitAmounts(req.Transactions, bag)
	if err := apperrors.BagOrNil(bag); err != nil {
		return nil, err
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

		if req.Description != nil {
			journal.Description = strings.TrimSpace(*req.Description)
		}
		if req.Date != nil {
			journal.JournalDate = domain.DateOnly(*req.Date)
		}
		applyMeta(journal, req.JournalMetaRequest)
		if req.Notes != nil {
			journal.Notes = emptyToNil(req.Notes)
		}
		if req.Tags != nil {
			journal.Tags = normalizeTags(*req.Tags)
		}
		if req.BudgetID != nil && journal.TransactionType == domain.Withdrawal {
			journal.BudgetID = emptyToNil(req.BudgetID)
		}
		if req.CategoryID != nil {
			journal.CategoryID = emptyToNil(req.CategoryID)
		}
		if err := s.checkReferences(ctx, userID, journal.BudgetID, journal.CategoryID, "", bag); err != nil {
			return err
		}

		if len(req.Transactions) > 0 {
			if err := s.replaceLegs(ctx, journal, req.Transactions, bag); err != nil {
				return err
			}
		}
		if err := apperrors.BagOrNil(bag); err != nil {
			return err
		}

		legs, err := s.journals.FindTransactionsByJournalID(ctx, journalID)
		if err != nil {
			return err
		}
		if err := domain.ValidateBalance(legs); err != nil {
			return apperrors.NewValidationError("transactions", err.Error())
		}
		journal.Transactions = legs
		journal.Touch(userID, s.Now())
		return s.journals.UpdateJournal(ctx, *journal)
	})
	if err != nil {
		if _, ok := apperrors.MessagesOf(err); ok || errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Journal update rejected", slog.String("journal_id", journalID), slog.String("error", err.Error()))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to update journal: %w", err)
	}

	s.Cache.Mark(userID)
	logger.Info("Journal updated", slog.String("journal_id", journalID))
	s.events.Dispatch(ctx, domain.UpdatedTransactionJournal{Journal: *journal, PiggyBankID: req.PiggyBankID})
	return journal, nil
}

// replaceLegs writes the submitted splits over the journal's current legs.
func (s *journalService) replaceLegs(ctx context.Context, journal *domain.Journal, splits []dto.SplitRequest, bag apperrors.MessageBag) error {
	current := journal.Transactions
	source, destination, hasPair := firstPair(current)

	if len(splits) == 1 && !journal.IsSplit() && hasPair {
		split := withCurrentAccounts(splits[0], source.AccountID, destination.AccountID)
		// Omitted budget and category keep the leg's; an empty string clears them.
		if split.BudgetID == nil {
			split.BudgetID = source.BudgetID
		}
		if split.CategoryID == nil {
			split.CategoryID = source.CategoryID
		}
		legs, err := s.buildLegs(ctx, journal, []dto.SplitRequest{split}, bag)
		if err != nil || len(legs) != 2 {
			return err
		}
		// Keep the leg rows; only their content changes.
		legs[0].TransactionID, legs[0].Reconciled, legs[0].CreatedAt, legs[0].CreatedBy = source.TransactionID, false, source.CreatedAt, source.CreatedBy
		legs[1].TransactionID, legs[1].Reconciled, legs[1].CreatedAt, legs[1].CreatedBy = destination.TransactionID, false, destination.CreatedAt, destination.CreatedBy
		legs[0].Identifier, legs[1].Identifier = source.Identifier, source.Identifier
		for _, leg := range legs {
			if err := s.journals.UpdateTransaction(ctx, leg); err != nil {
				return err
			}
		}
		return nil
	}

	defaulted := make([]dto.SplitRequest, len(splits))
	for i, split := range splits {
		defaulted[i] = withCurrentAccounts(split, source.AccountID, destination.AccountID)
	}
	legs, err := s.buildLegs(ctx, journal, defaulted, bag)
	if err != nil || !bag.IsEmpty() {
		return err
	}
	if err := s.journals.SoftDeleteTransactions(ctx, journal.JournalID, s.Now()); err != nil {
		return err
	}
	return s.journals.SaveTransactions(ctx, legs)
}

// buildLegs resolves the accounts of every split and returns the balanced legs,
// source leg first, sharing the split's index as identifier.
func (s *journalService) buildLegs(ctx context.Context, journal *domain.Journal, splits []dto.SplitRequest, bag apperrors.MessageBag) ([]domain.Transaction, error) {
	legs := make([]domain.Transaction, 0, 2*len(splits))
	jt := journal.TransactionType
	for i, split := range splits {
		field := fmt.Sprintf("transactions.%d.", i)
		accounts, err := s.resolver.Resolve(ctx, journal.UserID, jt, AccountInput{
			SourceID:        split.SourceID,
			SourceName:      split.SourceName,
			DestinationID:   split.DestinationID,
			DestinationName: split.DestinationName,
		}, bag, field)
		if err != nil {
			return nil, err
		}
		var budgetID *string
		if jt == domain.Withdrawal {
			budgetID = emptyToNil(split.BudgetID)
		}
		categoryID := emptyToNil(split.CategoryID)
		if err := s.checkReferences(ctx, journal.UserID, budgetID, categoryID, field, bag); err != nil {
			return nil, err
		}
		if accounts.Source == nil || accounts.Destination == nil {
			continue
		}

		native, nativeBag := VerifyNativeAmount(NativeAmountInput{
			Type:                  jt,
			Amount:                split.Amount,
			CurrencyID:            split.CurrencyID,
			ForeignAmount:         split.ForeignAmount,
			ForeignCurrencyID:     emptyToNil(split.ForeignCurrencyID),
			NativeAmount:          split.NativeAmount,
			SourceAmount:          split.SourceAmount,
			DestinationAmount:     split.DestinationAmount,
			SourceCurrencyID:      accounts.Source.CurrencyID,
			DestinationCurrencyID: accounts.Destination.CurrencyID,
		}, field)
		bag.Merge(nativeBag)
		if !nativeBag.IsEmpty() {
			continue
		}

		description := strings.TrimSpace(split.Description)
		if description == journal.Description {
			description = ""
		}
		audit := domain.NewAuditFields(journal.UserID, s.Now())
		source := domain.Transaction{
			TransactionID: uuid.NewString(),
			JournalID:     journal.JournalID,
			AccountID:     accounts.Source.AccountID,
			Description:   description,
			Amount:        native.Amount.Abs().Neg(),
			CurrencyID:    native.CurrencyID,
			Identifier:    i,
			BudgetID:      budgetID,
			CategoryID:    categoryID,
			AuditFields:   audit,
		}
		destination := source
		destination.TransactionID = uuid.NewString()
		destination.AccountID = accounts.Destination.AccountID
		destination.Amount = native.Amount.Abs()
		if native.ForeignAmount != nil {
			negative, positive := native.ForeignAmount.Abs().Neg(), native.ForeignAmount.Abs()
			source.ForeignAmount, destination.ForeignAmount = &negative, &positive
			source.ForeignCurrencyID, destination.ForeignCurrencyID = native.ForeignCurrencyID, native.ForeignCurrencyID
		}
		legs = append(legs, source, destination)
	}
	return legs, nil
}

// checkReferences adds a message for a budget or category the user does not own.
func (s *journalService) checkReferences(ctx context.Context, userID string, budgetID, categoryID *string, field string, bag apperrors.MessageBag) error {
	if budgetID != nil {
		if _, err := s.budgets.FindBudgetByID(ctx, userID, *budgetID); err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			bag.Add(field+"budget_id", "budget does not exist")
		}
	}
	if categoryID != nil {
		if _, err := s.categories.FindCategoryByID(ctx, userID, *categoryID); err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			bag.Add(field+"category_id", "category does not exist")
		}
	}
	return nil
}

// Reconcile marks a leg and its opposing leg as reconciled. The journal row is locked for the
// duration so concurrent calls are serialized; an already reconciled pair is left untouched.
func (s *journalService) Reconcile(ctx context.Context, userID string, transactionID string) (bool, error) {
	logger := s.GetLogger(ctx)
	reconciled := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		leg, err := s.journals.FindTransactionByID(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		if err := s.journals.LockJournal(ctx, leg.JournalID); err != nil {
			return err
		}
		legs, err := s.journals.FindTransactionsByJournalID(ctx, leg.JournalID)
		if err != nil {
			return err
		}
		// Re-read under the lock.
		for _, candidate := range legs {
			if candidate.TransactionID == leg.TransactionID {
				*leg = candidate
			}
		}
		opposing, found := domain.OpposingLeg(*leg, legs)
		if !found {
			logger.Warn("No opposing leg to reconcile against",
				slog.String("transaction_id", transactionID),
				slog.String("journal_id", leg.JournalID))
			return nil
		}
		reconciled = true
		if leg.Reconciled && opposing.Reconciled {
			return nil
		}
		return s.journals.SetReconciled(ctx, []string{leg.TransactionID, opposing.TransactionID}, true)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, err
		}
		s.LogError(ctx, err, "Failed to reconcile transaction", slog.String("transaction_id", transactionID))
		return false, fmt.Errorf("failed to reconcile transaction: %w", err)
	}
	if reconciled {
		s.Cache.Mark(userID)
	}
	return reconciled, nil
}

// Destroy soft-deletes a journal together with its legs and links.
func (s *journalService) Destroy(ctx context.Context, userID string, journalID string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.journals.FindJournalByID(ctx, userID, journalID); err != nil {
			return err
		}
		return s.journals.DeleteJournal(ctx, journalID, userID, s.Now())
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.LogError(ctx, err, "Failed to delete journal", slog.String("journal_id", journalID))
		return fmt.Errorf("failed to delete journal: %w", err)
	}
	s.Cache.Mark(userID)
	s.GetLogger(ctx).Info("Journal deleted", slog.String("journal_id", journalID))
	return nil
}

// GetJournal retrieves a journal with its legs.
func (s *journalService) GetJournal(ctx context.Context, userID string, journalID string) (*domain.Journal, error) {
	journal, err := s.journals.FindJournalByID(ctx, userID, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get journal: %w", err)
	}
	return journal, nil
}

// ListJournals retrieves a page of the user's journals.
func (s *journalService) ListJournals(ctx context.Context, userID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	journals, next, err := s.journals.ListJournals(ctx, userID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	return &dto.ListJournalsResponse{Journals: dto.ToJournalResponses(journals), NextToken: next}, nil
}

// GetJournalSourceAccounts returns the distinct accounts behind the journal's negative legs.
func (s *journalService) GetJournalSourceAccounts(ctx context.Context, userID string, journal *domain.Journal) ([]domain.Account, error) {
	return s.journalAccounts(ctx, userID, journal, "journal-source-accounts", func(d decimal.Decimal) bool { return d.IsNegative() })
}

// GetJournalDestinationAccounts returns the distinct accounts behind the journal's positive legs.
func (s *journalService) GetJournalDestinationAccounts(ctx context.Context, userID string, journal *domain.Journal) ([]domain.Account, error) {
	return s.journalAccounts(ctx, userID, journal, "journal-destination-accounts", func(d decimal.Decimal) bool { return d.IsPositive() })
}

func (s *journalService) journalAccounts(ctx context.Context, userID string, journal *domain.Journal, property string, keep func(decimal.Decimal) bool) ([]domain.Account, error) {
	key := s.Cache.Key(userID, property, journal.JournalID)
	return cache.Remember(s.Cache, key, func() ([]domain.Account, error) {
		legs := journal.Transactions
		if len(legs) == 0 {
			var err error
			if legs, err = s.journals.FindTransactionsByJournalID(ctx, journal.JournalID); err != nil {
				return nil, fmt.Errorf("failed to load legs: %w", err)
			}
		}
		ids := make([]string, 0, len(legs))
		seen := map[string]bool{}
		for _, leg := range legs {
			if keep(leg.Amount) && !seen[leg.AccountID] {
				seen[leg.AccountID] = true
				ids = append(ids, leg.AccountID)
			}
		}
		if len(ids) == 0 {
			return []domain.Account{}, nil
		}
		byID, err := s.accounts.FindAccountsByIDs(ctx, userID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load accounts: %w", err)
		}
		accounts := make([]domain.Account, 0, len(ids))
		for _, id := range ids {
			if account, ok := byID[id]; ok {
				accounts = append(accounts, account)
			}
		}
		return accounts, nil
	})
}

// GetJournalTotal returns the sum of the journal's positive legs.
func (s *journalService) GetJournalTotal(journal *domain.Journal) decimal.Decimal {
	return journal.Total()
}

func checkSplitAmounts(splits []dto.SplitRequest, bag apperrors.MessageBag) {
	for i, split := range splits {
		if !split.Amount.IsPositive() {
			bag.Add(fmt.Sprintf("transactions.%d.amount", i), "amount must be greater than zero")
		}
	}
}

// firstPair returns the negative and positive leg of the lowest identifier.
func firstPair(legs []domain.Transaction) (domain.Transaction, domain.Transaction, bool) {
	sorted := append([]domain.Transaction(nil), legs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Identifier < sorted[j].Identifier })
	for _, leg := range sorted {
		if !leg.Amount.IsNegative() {
			continue
		}
		if opposing, ok := domain.OpposingLeg(leg, sorted); ok {
			return leg, opposing, true
		}
	}
	return domain.Transaction{}, domain.Transaction{}, false
}

// withCurrentAccounts fills the sides a split leaves blank with the journal's current accounts.
func withCurrentAccounts(split dto.SplitRequest, sourceID, destinationID string) dto.SplitRequest {
	if !isSet(split.SourceID) && !isSet(split.SourceName) && sourceID != "" {
		split.SourceID = &sourceID
	}
	if !isSet(split.DestinationID) && !isSet(split.DestinationName) && destinationID != "" {
		split.DestinationID = &destinationID
	}
	return split
}

func applyMeta(journal *domain.Journal, meta dto.JournalMetaRequest) {
	for name, date := range meta.Dates() {
		if date != nil {
			journal.SetMetaDate(name, date)
		}
	}
	if meta.InternalReference != nil {
		if journal.Meta == nil {
			journal.Meta = map[string]string{}
		}
		if ref := strings.TrimSpace(*meta.InternalReference); ref != "" {
			journal.Meta[domain.MetaInternalReference] = ref
		} else {
			delete(journal.Meta, domain.MetaInternalReference)
		}
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func emptyToNil(s *string) *string {
	if !isSet(s) {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
