package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	"github.com/SscSPs/fireledger/internal/middleware"
)

// The import resolvers turn the role-tagged values of a statement row into ledger entities.
// All four try, in order: the id a value was mapped to, an existing entity matching the values,
// and finally creating one. Each resolver remembers its first answer.

var errNoUser = fmt.Errorf("%w: import resolver used before a user was set", apperrors.ErrMisconfigured)

// ImportAccountValues are the row values describing one account.
type ImportAccountValues struct {
	ID     *domain.ImportValue
	IBAN   *domain.ImportValue
	Name   *domain.ImportValue
	Number *domain.ImportValue
}

// AccountValues picks the account-* roles of row.
func AccountValues(row domain.ImportRow) ImportAccountValues {
	return ImportAccountValues{
		ID:     row.Find(domain.RoleAccountID),
		IBAN:   row.Find(domain.RoleAccountIBAN),
		Name:   row.Find(domain.RoleAccountName),
		Number: row.Find(domain.RoleAccountNumber),
	}
}

// OpposingValues picks the opposing-* roles of row.
func OpposingValues(row domain.ImportRow) ImportAccountValues {
	return ImportAccountValues{
		ID:     row.Find(domain.RoleOpposingID),
		IBAN:   row.Find(domain.RoleOpposingIBAN),
		Name:   row.Find(domain.RoleOpposingName),
		Number: row.Find(domain.RoleOpposingNumber),
	}
}

func (v ImportAccountValues) all() []*domain.ImportValue {
	return []*domain.ImportValue{v.ID, v.IBAN, v.Name, v.Number}
}

// ImportAccount resolves an account of an expected type.
type ImportAccount struct {
	accounts         portsrepo.AccountRepositoryFacade
	resolver         *AccountResolver
	values           ImportAccountValues
	expected         domain.AccountType
	defaultAccountID *string
	now              func() time.Time

	userID   string
	done     bool
	resolved *domain.Account
}

// NewImportAccount creates a resolver for an account of type expected. defaultAccountID is
// the asset account used when an expected asset account cannot be found.
func NewImportAccount(accounts portsrepo.AccountRepositoryFacade, values ImportAccountValues, expected domain.AccountType, defaultAccountID *string, now func() time.Time) *ImportAccount {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ImportAccount{
		accounts:         accounts,
		resolver:         NewAccountResolver(accounts, now),
		values:           values,
		expected:         expected,
		defaultAccountID: defaultAccountID,
		now:              now,
	}
}

// SetUser sets the owner of every account looked up or created.
func (a *ImportAccount) SetUser(userID string) { a.userID = userID }

// Resolve returns the account. Configuration failures wrap apperrors.ErrMisconfigured.
func (a *ImportAccount) Resolve(ctx context.Context) (*domain.Account, error) {
	if a.userID == "" {
		return nil, errNoUser
	}
	if a.done {
		return a.resolved, nil
	}
	account, err := a.resolve(ctx)
	if err != nil {
		return nil, err
	}
	a.done, a.resolved = true, account
	return account, nil
}

func (a *ImportAccount) resolve(ctx context.Context) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("resolver", "account"), slog.String("expected", string(a.expected)))

	if account, err := a.mapped(ctx, logger); account != nil || err != nil {
		return account, err
	}
	if account, err := a.existing(ctx, a.expected); account != nil || err != nil {
		return account, err
	}
	if a.expected != domain.Asset {
		if account, err := a.existing(ctx, domain.Asset); account != nil || err != nil {
			return account, err
		}
		return a.create(ctx, logger)
	}
	return a.fallback(ctx, logger)
}

// mapped accepts a mapped account of the expected type or any asset account.
func (a *ImportAccount) mapped(ctx context.Context, logger *slog.Logger) (*domain.Account, error) {
	for _, v := range a.values.all() {
		if v == nil || !isSet(v.Mapped) {
			continue
		}
		account, err := a.accounts.FindAccountByID(ctx, a.userID, *v.Mapped)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Debug("Mapped account does not exist", slog.String("mapped", *v.Mapped))
				continue
			}
			return nil, err
		}
		if account.AccountType != a.expected && account.AccountType != domain.Asset {
			logger.Debug("Mapped account has the wrong type",
				slog.String("mapped", *v.Mapped), slog.String("type", string(account.AccountType)))
			continue
		}
		return account, nil
	}
	return nil, nil
}

// existing returns the first unique match among the user's accounts of accountType,
// trying id, IBAN, name and number in that order.
func (a *ImportAccount) existing(ctx context.Context, accountType domain.AccountType) (*domain.Account, error) {
	types := []domain.AccountType{accountType}
	if v := a.values.ID; v != nil && strings.TrimSpace(v.Value) != "" {
		account, err := a.accounts.FindAccountByID(ctx, a.userID, strings.TrimSpace(v.Value))
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if account != nil && account.AccountType == accountType {
			return account, nil
		}
	}
	lookups := []struct {
		value *domain.ImportValue
		find  func(context.Context, string, string, []domain.AccountType) ([]domain.Account, error)
	}{
		{a.values.IBAN, a.accounts.FindAccountsByIBAN},
		{a.values.Name, a.accounts.FindAccountsByName},
		{a.values.Number, a.accounts.FindAccountsByNumber},
	}
	for _, l := range lookups {
		if l.value == nil || strings.TrimSpace(l.value.Value) == "" {
			continue
		}
		found, err := l.find(ctx, a.userID, strings.TrimSpace(l.value.Value), types)
		if err != nil {
			return nil, err
		}
		if account, ok := single(found); ok {
			return account, nil
		}
	}
	return nil, nil
}

func (a *ImportAccount) fallback(ctx context.Context, logger *slog.Logger) (*domain.Account, error) {
	if !isSet(a.defaultAccountID) {
		return nil, fmt.Errorf("%w: no default import account configured", apperrors.ErrMisconfigured)
	}
	account, err := a.accounts.FindAccountByID(ctx, a.userID, *a.defaultAccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: default import account %s does not exist", apperrors.ErrMisconfigured, *a.defaultAccountID)
		}
		return nil, err
	}
	logger.Debug("Using default import account", slog.String("account_id", account.AccountID))
	return account, nil
}

// create stores a new account named after the account number, the IBAN or the name,
// whichever comes first, unless one by that name already exists. Without any of them
// the shared cash account is used.
func (a *ImportAccount) create(ctx context.Context, logger *slog.Logger) (*domain.Account, error) {
	iban, number, name := valueOf(a.values.IBAN), valueOf(a.values.Number), valueOf(a.values.Name)
	title := firstNonEmpty(number, iban, name)
	if title == "" {
		return a.resolver.FindOrCreate(ctx, a.userID, domain.CashAccountName, domain.Cash)
	}
	// An ambiguous IBAN or name never matched, but an account created under this title earlier did.
	found, err := a.accounts.FindAccountsByName(ctx, a.userID, title, []domain.AccountType{a.expected})
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		logger.Debug("Reusing account created for import", slog.String("account_id", found[0].AccountID))
		return &found[0], nil
	}
	account := domain.Account{
		AccountID:     uuid.NewString(),
		UserID:        a.userID,
		Name:          title,
		AccountType:   a.expected,
		IsActive:      true,
		IBAN:          iban,
		AccountNumber: number,
		AuditFields:   domain.NewAuditFields(a.userID, a.now()),
	}
	if err := a.accounts.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create %s account: %w", strings.ToLower(string(a.expected)), err)
	}
	logger.Info("Created account for import", slog.String("account_id", account.AccountID), slog.String("name", title))
	return &account, nil
}

// ImportBudget resolves a budget by mapped id, id or name, creating it by name.
type ImportBudget struct {
	budgets  portsrepo.BudgetRepositoryFacade
	id, name *domain.ImportValue
	now      func() time.Time

	userID   string
	done     bool
	resolved *domain.Budget
}

// NewImportBudget creates a budget resolver for the budget-* roles of row.
func NewImportBudget(budgets portsrepo.BudgetRepositoryFacade, row domain.ImportRow, now func() time.Time) *ImportBudget {
	return &ImportBudget{budgets: budgets, id: row.Find(domain.RoleBudgetID), name: row.Find(domain.RoleBudgetName), now: now}
}

func (b *ImportBudget) SetUser(userID string) { b.userID = userID }

// Resolve returns the budget, or nil when the row names none.
func (b *ImportBudget) Resolve(ctx context.Context) (*domain.Budget, error) {
	if b.userID == "" {
		return nil, errNoUser
	}
	if b.done {
		return b.resolved, nil
	}
	budget, err := b.resolve(ctx)
	if err != nil {
		return nil, err
	}
	b.done, b.resolved = true, budget
	return budget, nil
}

func (b *ImportBudget) resolve(ctx context.Context) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("resolver", "budget"))
	for _, v := range []*domain.ImportValue{b.id, b.name} {
		if v == nil || !isSet(v.Mapped) {
			continue
		}
		budget, err := b.budgets.FindBudgetByID(ctx, b.userID, *v.Mapped)
		if err == nil {
			return budget, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		logger.Debug("Mapped budget does not exist", slog.String("mapped", *v.Mapped))
	}

	if id := valueOf(b.id); id != "" {
		budget, err := b.budgets.FindBudgetByID(ctx, b.userID, id)
		if err == nil {
			return budget, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}
	name := valueOf(b.name)
	if name == "" {
		return nil, nil
	}
	found, err := b.budgets.FindBudgetsByName(ctx, b.userID, name)
	if err != nil {
		return nil, err
	}
	if budget, ok := single(found); ok {
		return budget, nil
	}

	budget := domain.Budget{
		BudgetID:    uuid.NewString(),
		UserID:      b.userID,
		Name:        name,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(b.userID, b.now()),
	}
	if err := b.budgets.SaveBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	logger.Info("Created budget for import", slog.String("budget_id", budget.BudgetID), slog.String("name", name))
	return &budget, nil
}

// ImportCategory resolves a category by mapped id, id or name, creating it by name.
type ImportCategory struct {
	categories portsrepo.CategoryRepositoryFacade
	id, name   *domain.ImportValue
	now        func() time.Time

	userID   string
	done     bool
	resolved *domain.Category
}

// NewImportCategory creates a category resolver for the category-* roles of row.
func NewImportCategory(categories portsrepo.CategoryRepositoryFacade, row domain.ImportRow, now func() time.Time) *ImportCategory {
	return &ImportCategory{categories: categories, id: row.Find(domain.RoleCategoryID), name: row.Find(domain.RoleCategoryName), now: now}
}

func (c *ImportCategory) SetUser(userID string) { c.userID = userID }

// Resolve returns the category, or nil when the row names none.
func (c *ImportCategory) Resolve(ctx context.Context) (*domain.Category, error) {
	if c.userID == "" {
		return nil, errNoUser
	}
	if c.done {
		return c.resolved, nil
	}
	category, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	c.done, c.resolved = true, category
	return category, nil
}

func (c *ImportCategory) resolve(ctx context.Context) (*domain.Category, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("resolver", "category"))
	for _, v := range []*domain.ImportValue{c.id, c.name} {
		if v == nil || !isSet(v.Mapped) {
			continue
		}
		category, err := c.categories.FindCategoryByID(ctx, c.userID, *v.Mapped)
		if err == nil {
			return category, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		logger.Debug("Mapped category does not exist", slog.String("mapped", *v.Mapped))
	}

	if id := valueOf(c.id); id != "" {
		category, err := c.categories.FindCategoryByID(ctx, c.userID, id)
		if err == nil {
			return category, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}
	name := valueOf(c.name)
	if name == "" {
		return nil, nil
	}
	found, err := c.categories.FindCategoriesByName(ctx, c.userID, name)
	if err != nil {
		return nil, err
	}
	if category, ok := single(found); ok {
		return category, nil
	}

	category := domain.Category{
		CategoryID:  uuid.NewString(),
		UserID:      c.userID,
		Name:        name,
		AuditFields: domain.NewAuditFields(c.userID, c.now()),
	}
	if err := c.categories.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	logger.Info("Created category for import", slog.String("category_id", category.CategoryID), slog.String("name", name))
	return &category, nil
}

// ImportCurrency resolves a currency by mapped id, id, code, symbol or name.
// It creates one only when a code is known.
type ImportCurrency struct {
	currencies             portsrepo.CurrencyRepositoryFacade
	id, code, symbol, name *domain.ImportValue
	now                    func() time.Time

	userID   string
	done     bool
	resolved *domain.Currency
}

// NewImportCurrency creates a currency resolver for the currency-* roles of row.
func NewImportCurrency(currencies portsrepo.CurrencyRepositoryFacade, row domain.ImportRow, now func() time.Time) *ImportCurrency {
	return &ImportCurrency{
		currencies: currencies,
		id:         row.Find(domain.RoleCurrencyID),
		code:       row.Find(domain.RoleCurrencyCode),
		symbol:     row.Find(domain.RoleCurrencySymbol),
		name:       row.Find(domain.RoleCurrencyName),
		now:        now,
	}
}

// NewImportCurrencyCode creates a currency resolver for a bare code, such as the foreign currency of a row.
func NewImportCurrencyCode(currencies portsrepo.CurrencyRepositoryFacade, code *domain.ImportValue, now func() time.Time) *ImportCurrency {
	return &ImportCurrency{currencies: currencies, code: code, now: now}
}

func (c *ImportCurrency) SetUser(userID string) { c.userID = userID }

// Resolve returns the currency, or nil when none matches and no code is known.
func (c *ImportCurrency) Resolve(ctx context.Context) (*domain.Currency, error) {
	if c.userID == "" {
		return nil, errNoUser
	}
	if c.done {
		return c.resolved, nil
	}
	currency, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	c.done, c.resolved = true, currency
	return currency, nil
}

func (c *ImportCurrency) resolve(ctx context.Context) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("resolver", "currency"))
	for _, v := range []*domain.ImportValue{c.id, c.code, c.symbol, c.name} {
		if v == nil || !isSet(v.Mapped) {
			continue
		}
		currency, err := c.currencies.FindCurrencyByID(ctx, *v.Mapped)
		if err == nil {
			return currency, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		logger.Debug("Mapped currency does not exist", slog.String("mapped", *v.Mapped))
	}

	code := strings.ToUpper(valueOf(c.code))
	lookups := []struct {
		value string
		find  func(context.Context, string) ([]domain.Currency, error)
	}{
		{valueOf(c.id), c.one(c.currencies.FindCurrencyByID)},
		{code, c.one(c.currencies.FindCurrencyByCode)},
		{valueOf(c.symbol), c.currencies.FindCurrenciesBySymbol},
		{valueOf(c.name), c.currencies.FindCurrenciesByName},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		found, err := l.find(ctx, l.value)
		if err != nil {
			return nil, err
		}
		if currency, ok := single(found); ok {
			return currency, nil
		}
	}

	if code == "" {
		logger.Debug("No currency matches and no code to create one")
		return nil, nil
	}
	currency := domain.Currency{
		CurrencyID:    uuid.NewString(),
		Code:          code,
		Symbol:        firstNonEmpty(valueOf(c.symbol), code),
		Name:          firstNonEmpty(valueOf(c.name), code),
		DecimalPlaces: 2,
		AuditFields:   domain.NewAuditFields(c.userID, c.now()),
	}
	if err := c.currencies.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}
	logger.Info("Created currency for import", slog.String("code", code))
	return &currency, nil
}

// one adapts a single-result lookup to the list form, mapping not found to an empty list.
func (c *ImportCurrency) one(find func(context.Context, string) (*domain.Currency, error)) func(context.Context, string) ([]domain.Currency, error) {
	return func(ctx context.Context, value string) ([]domain.Currency, error) {
		currency, err := find(ctx, value)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []domain.Currency{*currency}, nil
	}
}

// single returns the only element of items.
func single[T any](items []T) (*T, bool) {
	if len(items) != 1 {
		return nil, false
	}
	return &items[0], true
}

func valueOf(v *domain.ImportValue) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(v.Value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
