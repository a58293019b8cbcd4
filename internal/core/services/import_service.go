package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/amount"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/dto"
)

// importDateLayouts are tried in order for every date role.
var importDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"20060102",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

const importDescriptionFallback = "(no description)"

// ImportSettings are the defaults an import falls back to.
type ImportSettings struct {
	DefaultAccountID    string
	DefaultCurrencyCode string
}

type importService struct {
	BaseService
	tx         portsrepo.TransactionManager
	accounts   portsrepo.AccountRepositoryFacade
	currencies portsrepo.CurrencyRepositoryFacade
	budgets    portsrepo.BudgetRepositoryFacade
	categories portsrepo.CategoryRepositoryFacade
	journals   portssvc.JournalWriterSvc
	settings   ImportSettings
	validate   *validator.Validate
}

// NewImportService creates the statement import service. Rows are stored through journals.
func NewImportService(repos portsrepo.RepositoryProvider, journals portssvc.JournalWriterSvc, settings ImportSettings, opts ...ServiceOption) portssvc.ImportSvc {
	base := newBaseService()
	applyOptions(&base, opts)
	return &importService{
		BaseService: base,
		tx:          repos.TxManager,
		accounts:    repos.AccountRepo,
		currencies:  repos.CurrencyRepo,
		budgets:     repos.BudgetRepo,
		categories:  repos.CategoryRepo,
		journals:    journals,
		settings:    settings,
		validate:    newImportValidator(),
	}
}

var _ portssvc.ImportSvc = (*importService)(nil)

func newImportValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("import_role", func(fl validator.FieldLevel) bool {
		return domain.ImportRole(fl.Field().String()).Valid()
	})
	return v
}

// ImportRows stores every row as its own journal, in its own transaction. A row that fails
// is reported and skipped. A configuration error stops the run; rows stored before it stay.
func (s *importService) ImportRows(ctx context.Context, userID string, req dto.ImportRowsRequest) (*dto.ImportResponse, error) {
	logger := s.GetLogger(ctx)
	if userID == "" {
		return nil, ErrUserRequired
	}
	defaultAccountID := firstSet(req.DefaultAccountID, emptyToNil(&s.settings.DefaultAccountID))

	resp := &dto.ImportResponse{Results: make([]domain.ImportRowResult, 0, len(req.Rows))}
	for i, row := range req.Rows {
		result := domain.ImportRowResult{Row: i}
		if err := s.validate.Struct(row); err != nil {
			result.Errors = validationBag(err)
			resp.Failed++
			resp.Results = append(resp.Results, result)
			continue
		}

		var journal *domain.Journal
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			journal, err = s.importRow(ctx, userID, defaultAccountID, row)
			return err
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrMisconfigured) {
				s.LogError(ctx, err, "Import aborted", slog.Int("row", i))
				return resp, fmt.Errorf("import aborted at row %d: %w", i, err)
			}
			result.Errors = rowErrors(err)
			resp.Failed++
			resp.Results = append(resp.Results, result)
			logger.Warn("Import row rejected", slog.Int("row", i), slog.String("error", err.Error()))
			continue
		}
		// Marks made while storing the row ran before its commit.
		s.Cache.Mark(userID)
		result.JournalID = journal.JournalID
		resp.Stored++
		resp.Results = append(resp.Results, result)
	}

	logger.Info("Import finished", slog.Int("stored", resp.Stored), slog.Int("failed", resp.Failed))
	return resp, nil
}

// importRow resolves every entity the row refers to and stores the journal.
// The sign of the amount decides the direction: negative rows leave the row's account.
func (s *importService) importRow(ctx context.Context, userID string, defaultAccountID *string, row domain.ImportRow) (*domain.Journal, error) {
	amt, err := amount.Parse(valueOf(row.Find(domain.RoleAmount)))
	if err != nil {
		return nil, err
	}
	if amt.IsZero() {
		return nil, fmt.Errorf("%w: row amount is zero", apperrors.ErrArithmetic)
	}
	bag := apperrors.NewMessageBag()
	date := domain.DateOnly(s.Now())
	if raw := valueOf(row.Find(domain.RoleDate)); raw != "" {
		if parsed, ok := parseImportDate(raw); ok {
			date = parsed
		} else {
			bag.Add("date", fmt.Sprintf("cannot read date %q", raw))
		}
	}

	accountResolver := NewImportAccount(s.accounts, AccountValues(row), domain.Asset, defaultAccountID, s.Now)
	accountResolver.SetUser(userID)
	account, err := accountResolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	opposingType := domain.Expense
	if amt.IsPositive() {
		opposingType = domain.Revenue
	}
	opposingResolver := NewImportAccount(s.accounts, OpposingValues(row), opposingType, nil, s.Now)
	opposingResolver.SetUser(userID)
	opposing, err := opposingResolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if opposing.AccountID == account.AccountID {
		bag.Add("opposing", "the opposing account is the row's own account")
	}

	jt, source, destination := domain.Withdrawal, account, opposing
	if amt.IsPositive() {
		jt, source, destination = domain.Deposit, opposing, account
	}
	if opposing.AccountType == domain.Asset {
		jt = domain.Transfer
	}

	currencyID, err := s.rowCurrency(ctx, userID, row, account)
	if err != nil {
		return nil, err
	}
	if currencyID == "" {
		bag.Add("currency", "no currency could be determined for the row")
	}

	split := dto.SplitRequest{
		Amount:        amt.Abs(),
		CurrencyID:    currencyID,
		SourceID:      &source.AccountID,
		DestinationID: &destination.AccountID,
	}
	if err := s.applyForeign(ctx, userID, row, &split, jt, source, destination, bag); err != nil {
		return nil, err
	}

	if jt == domain.Withdrawal {
		budgets := NewImportBudget(s.budgets, row, s.Now)
		budgets.SetUser(userID)
		budget, err := budgets.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		if budget != nil {
			split.BudgetID = &budget.BudgetID
		}
	}
	categories := NewImportCategory(s.categories, row, s.Now)
	categories.SetUser(userID)
	category, err := categories.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if category != nil {
		split.CategoryID = &category.CategoryID
	}

	meta := importMeta(row, bag)
	if err := apperrors.BagOrNil(bag); err != nil {
		return nil, err
	}

	description := valueOf(row.Find(domain.RoleDescription))
	if description == "" {
		description = importDescriptionFallback
	}
	req := dto.StoreJournalRequest{
		Type:               jt,
		Description:        description,
		Date:               date,
		JournalMetaRequest: meta,
		Tags:               splitTags(valueOf(row.Find(domain.RoleTagsComma))),
		Transactions:       []dto.SplitRequest{split},
	}
	if note := valueOf(row.Find(domain.RoleNote)); note != "" {
		req.Notes = &note
	}
	return s.journals.Store(ctx, userID, req)
}

// rowCurrency returns the row's currency, else the account's, else the configured default.
func (s *importService) rowCurrency(ctx context.Context, userID string, row domain.ImportRow, account *domain.Account) (string, error) {
	resolver := NewImportCurrency(s.currencies, row, s.Now)
	resolver.SetUser(userID)
	currency, err := resolver.Resolve(ctx)
	if err != nil {
		return "", err
	}
	if currency != nil {
		return currency.CurrencyID, nil
	}
	if account.CurrencyID != "" {
		return account.CurrencyID, nil
	}
	if s.settings.DefaultCurrencyCode == "" {
		return "", nil
	}
	fallback, err := s.currencies.FindCurrencyByCode(ctx, s.settings.DefaultCurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return fallback.CurrencyID, nil
}

// applyForeign fills the foreign pair of split. When the foreign currency is the native
// currency of the deciding account it doubles as the native amount; on a transfer it is
// what arrived at the destination.
func (s *importService) applyForeign(ctx context.Context, userID string, row domain.ImportRow, split *dto.SplitRequest, jt domain.JournalType, source, destination *domain.Account, bag apperrors.MessageBag) error {
	raw := valueOf(row.Find(domain.RoleAmountForeign))
	if raw == "" {
		return nil
	}
	foreign, err := amount.Parse(raw)
	if err != nil {
		bag.Add("amount-foreign", err.Error())
		return nil
	}
	if foreign.IsZero() {
		return nil
	}
	resolver := NewImportCurrencyCode(s.currencies, row.Find(domain.RoleForeignCurrency), s.Now)
	resolver.SetUser(userID)
	currency, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	if currency == nil {
		bag.Add("foreign-currency-code", "a foreign amount needs a foreign currency code")
		return nil
	}

	foreign = foreign.Abs()
	split.ForeignAmount = &foreign
	split.ForeignCurrencyID = &currency.CurrencyID

	native := source.CurrencyID
	if jt == domain.Deposit {
		native = destination.CurrencyID
	}
	if native != "" && native != split.CurrencyID && native == currency.CurrencyID {
		split.NativeAmount = &foreign
	}
	if jt == domain.Transfer {
		sent := split.Amount
		split.SourceAmount = &sent
		split.DestinationAmount = &foreign
	}
	return nil
}

func importMeta(row domain.ImportRow, bag apperrors.MessageBag) dto.JournalMetaRequest {
	var meta dto.JournalMetaRequest
	dates := []struct {
		role   domain.ImportRole
		target **time.Time
	}{
		{domain.RoleDateInterest, &meta.InterestDate},
		{domain.RoleDateBook, &meta.BookDate},
		{domain.RoleDateProcess, &meta.ProcessDate},
		{domain.RoleDateDue, &meta.DueDate},
		{domain.RoleDatePayment, &meta.PaymentDate},
		{domain.RoleDateInvoice, &meta.InvoiceDate},
	}
	for _, d := range dates {
		raw := valueOf(row.Find(d.role))
		if raw == "" {
			continue
		}
		parsed, ok := parseImportDate(raw)
		if !ok {
			bag.Add(string(d.role), fmt.Sprintf("cannot read date %q", raw))
			continue
		}
		*d.target = &parsed
	}
	if ref := valueOf(row.Find(domain.RoleInternalRef)); ref != "" {
		meta.InternalReference = &ref
	}
	return meta
}

func parseImportDate(raw string) (time.Time, bool) {
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return domain.DateOnly(t), true
		}
	}
	return time.Time{}, false
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// rowErrors turns a row failure into the messages reported for it.
func rowErrors(err error) apperrors.MessageBag {
	if bag, ok := apperrors.MessagesOf(err); ok {
		return bag
	}
	bag := apperrors.NewMessageBag()
	switch {
	case errors.Is(err, apperrors.ErrArithmetic):
		bag.Add("amount", err.Error())
	default:
		bag.Add("row", "the row could not be stored")
	}
	return bag
}

func validationBag(err error) apperrors.MessageBag {
	bag := apperrors.NewMessageBag()
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		bag.Add("row", err.Error())
		return bag
	}
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "ImportRow.")
		bag.Add(field, fmt.Sprintf("failed on %s", fe.Tag()))
	}
	return bag
}
