package services_test

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
)

// memStore is an in-memory implementation of every repository port. WithinTx snapshots
// the whole store and restores it when fn fails, so rollbacks are observable in tests.
type memStore struct {
	accounts    map[string]domain.Account
	currencies  map[string]domain.Currency
	journals    map[string]domain.Journal
	legs        map[string]domain.Transaction
	budgets     map[string]domain.Budget
	limits      map[string]domain.BudgetLimit
	limitSeq    map[string]int
	available   map[string]domain.AvailableBudget
	categories  map[string]domain.Category
	piggies     map[string]domain.PiggyBank
	repetitions map[string]domain.PiggyBankRepetition
	events      []domain.PiggyBankEvent
	seq         int

	locks int
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		accounts:    map[string]domain.Account{},
		currencies:  map[string]domain.Currency{},
		journals:    map[string]domain.Journal{},
		legs:        map[string]domain.Transaction{},
		budgets:     map[string]domain.Budget{},
		limits:      map[string]domain.BudgetLimit{},
		limitSeq:    map[string]int{},
		available:   map[string]domain.AvailableBudget{},
		categories:  map[string]domain.Category{},
		piggies:     map[string]domain.PiggyBank{},
		repetitions: map[string]domain.PiggyBankRepetition{},
	}
}

func (m *memStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:    m,
		AccountRepo:  m,
		CurrencyRepo: m,
		JournalRepo:  m,
		BudgetRepo:   m,
		CategoryRepo: m,
		PiggyRepo:    m,
	}
}

var (
	_ portsrepo.TransactionManager        = (*memStore)(nil)
	_ portsrepo.AccountRepositoryFacade   = (*memStore)(nil)
	_ portsrepo.CurrencyRepositoryFacade  = (*memStore)(nil)
	_ portsrepo.JournalRepositoryFacade   = (*memStore)(nil)
	_ portsrepo.BudgetRepositoryFacade    = (*memStore)(nil)
	_ portsrepo.CategoryRepositoryFacade  = (*memStore)(nil)
	_ portsrepo.PiggyBankRepositoryFacade = (*memStore)(nil)
)

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	snapshot := m.clone()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		*m = *snapshot
		return err
	}
	return nil
}

func (m *memStore) clone() *memStore {
	c := *m
	c.accounts = maps.Clone(m.accounts)
	c.currencies = maps.Clone(m.currencies)
	c.journals = maps.Clone(m.journals)
	c.legs = maps.Clone(m.legs)
	c.budgets = maps.Clone(m.budgets)
	c.limits = maps.Clone(m.limits)
	c.limitSeq = maps.Clone(m.limitSeq)
	c.available = maps.Clone(m.available)
	c.categories = maps.Clone(m.categories)
	c.piggies = maps.Clone(m.piggies)
	c.repetitions = maps.Clone(m.repetitions)
	c.events = append([]domain.PiggyBankEvent(nil), m.events...)
	return &c
}

func notFound() error { return apperrors.NewNotFoundError("not found") }

func hasType(types []domain.AccountType, t domain.AccountType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// --- accounts ---

func (m *memStore) FindAccountByID(_ context.Context, userID, accountID string) (*domain.Account, error) {
	a, ok := m.accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, notFound()
	}
	return &a, nil
}

func (m *memStore) FindAccountsByIDs(_ context.Context, userID string, ids []string) (map[string]domain.Account, error) {
	out := map[string]domain.Account{}
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok && a.UserID == userID {
			out[id] = a
		}
	}
	return out, nil
}

func (m *memStore) findAccounts(userID string, types []domain.AccountType, match func(domain.Account) bool) []domain.Account {
	var out []domain.Account
	for _, a := range m.accounts {
		if a.UserID == userID && hasType(types, a.AccountType) && match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

func (m *memStore) FindAccountsByName(_ context.Context, userID, name string, types []domain.AccountType) ([]domain.Account, error) {
	return m.findAccounts(userID, types, func(a domain.Account) bool { return a.Name == name }), nil
}

func (m *memStore) FindAccountsByIBAN(_ context.Context, userID, iban string, types []domain.AccountType) ([]domain.Account, error) {
	return m.findAccounts(userID, types, func(a domain.Account) bool { return a.IBAN == iban }), nil
}

func (m *memStore) FindAccountsByNumber(_ context.Context, userID, number string, types []domain.AccountType) ([]domain.Account, error) {
	return m.findAccounts(userID, types, func(a domain.Account) bool { return a.AccountNumber == number }), nil
}

func (m *memStore) ListAccountsByType(_ context.Context, userID string, types []domain.AccountType) ([]domain.Account, error) {
	return m.findAccounts(userID, types, func(a domain.Account) bool { return a.IsActive }), nil
}

func (m *memStore) GetAccountBalance(_ context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, leg := range m.legs {
		j, ok := m.journals[leg.JournalID]
		if leg.AccountID != accountID || leg.DeletedAt != nil || !ok || j.DeletedAt != nil {
			continue
		}
		if !j.JournalDate.After(domain.DateOnly(date)) {
			total = total.Add(leg.Amount)
		}
	}
	return total, nil
}

func (m *memStore) SaveAccount(_ context.Context, a domain.Account) error {
	m.accounts[a.AccountID] = a
	return nil
}

// --- currencies ---

func (m *memStore) FindCurrencyByID(_ context.Context, id string) (*domain.Currency, error) {
	c, ok := m.currencies[id]
	if !ok {
		return nil, notFound()
	}
	return &c, nil
}

func (m *memStore) FindCurrencyByCode(_ context.Context, code string) (*domain.Currency, error) {
	for _, c := range m.currencies {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, notFound()
}

func (m *memStore) FindCurrenciesBySymbol(_ context.Context, symbol string) ([]domain.Currency, error) {
	var out []domain.Currency
	for _, c := range m.currencies {
		if c.Symbol == symbol {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) FindCurrenciesByName(_ context.Context, name string) ([]domain.Currency, error) {
	var out []domain.Currency
	for _, c := range m.currencies {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ListCurrencies(_ context.Context) ([]domain.Currency, error) {
	out := make([]domain.Currency, 0, len(m.currencies))
	for _, c := range m.currencies {
		out = append(out, c)
	}
	return out, nil
}

func (m *memStore) SaveCurrency(_ context.Context, c domain.Currency) error {
	m.currencies[c.CurrencyID] = c
	return nil
}

// --- journals and legs ---

func (m *memStore) liveLegs(journalID string) []domain.Transaction {
	var out []domain.Transaction
	for _, leg := range m.legs {
		if leg.JournalID == journalID && leg.DeletedAt == nil {
			out = append(out, leg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Identifier != out[j].Identifier {
			return out[i].Identifier < out[j].Identifier
		}
		return out[i].Amount.LessThan(out[j].Amount)
	})
	return out
}

func (m *memStore) FindJournalByID(_ context.Context, userID, journalID string) (*domain.Journal, error) {
	j, ok := m.journals[journalID]
	if !ok || j.UserID != userID || j.DeletedAt != nil {
		return nil, notFound()
	}
	j.Meta = maps.Clone(j.Meta)
	j.Tags = append([]string(nil), j.Tags...)
	j.Transactions = m.liveLegs(journalID)
	return &j, nil
}

func (m *memStore) ListJournals(_ context.Context, userID string, limit int, _ *string) ([]domain.Journal, *string, error) {
	var out []domain.Journal
	for _, j := range m.journals {
		if j.UserID == userID && j.DeletedAt == nil {
			j.Transactions = m.liveLegs(j.JournalID)
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].JournalDate.After(out[k].JournalDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

func (m *memStore) SaveJournal(_ context.Context, j domain.Journal) error {
	for _, leg := range j.Transactions {
		m.legs[leg.TransactionID] = leg
	}
	j.Transactions = nil
	m.journals[j.JournalID] = j
	return nil
}

func (m *memStore) UpdateJournal(_ context.Context, j domain.Journal) error {
	if _, ok := m.journals[j.JournalID]; !ok {
		return notFound()
	}
	j.Transactions = nil
	m.journals[j.JournalID] = j
	return nil
}

func (m *memStore) LockJournal(_ context.Context, journalID string) error {
	if _, ok := m.journals[journalID]; !ok {
		return notFound()
	}
	m.locks++
	return nil
}

func (m *memStore) DeleteJournal(_ context.Context, journalID, userID string, at time.Time) error {
	j, ok := m.journals[journalID]
	if !ok || j.UserID != userID {
		return notFound()
	}
	j.DeletedAt = &at
	m.journals[journalID] = j
	return m.SoftDeleteTransactions(context.Background(), journalID, at)
}

func (m *memStore) FindTransactionByID(_ context.Context, userID, id string) (*domain.Transaction, error) {
	leg, ok := m.legs[id]
	if !ok || leg.DeletedAt != nil {
		return nil, notFound()
	}
	if j, ok := m.journals[leg.JournalID]; !ok || j.UserID != userID {
		return nil, notFound()
	}
	return &leg, nil
}

func (m *memStore) FindTransactionsByJournalID(_ context.Context, journalID string) ([]domain.Transaction, error) {
	return m.liveLegs(journalID), nil
}

func (m *memStore) SumTransactions(_ context.Context, f portsrepo.TransactionSumFilter) (decimal.Decimal, error) {
	in := func(values []string, v *string) bool {
		if len(values) == 0 {
			return true
		}
		if v == nil {
			return false
		}
		for _, candidate := range values {
			if candidate == *v {
				return true
			}
		}
		return false
	}
	total := decimal.Zero
	for _, leg := range m.legs {
		j, ok := m.journals[leg.JournalID]
		if !ok || leg.DeletedAt != nil || j.DeletedAt != nil || j.UserID != f.UserID {
			continue
		}
		typeOK := len(f.JournalTypes) == 0
		for _, t := range f.JournalTypes {
			typeOK = typeOK || t == j.TransactionType
		}
		account := leg.AccountID
		budget := leg.BudgetID
		if budget == nil {
			budget = j.BudgetID
		}
		if !typeOK || !in(f.AccountIDs, &account) || !in(f.BudgetIDs, budget) {
			continue
		}
		if j.JournalDate.Before(f.Start) || j.JournalDate.After(f.End) {
			continue
		}
		if f.NegativeOnly && !leg.Amount.IsNegative() {
			continue
		}
		total = total.Add(leg.Amount)
	}
	return total, nil
}

func (m *memStore) SaveTransactions(_ context.Context, txns []domain.Transaction) error {
	for _, leg := range txns {
		m.legs[leg.TransactionID] = leg
	}
	return nil
}

func (m *memStore) UpdateTransaction(_ context.Context, txn domain.Transaction) error {
	if _, ok := m.legs[txn.TransactionID]; !ok {
		return notFound()
	}
	m.legs[txn.TransactionID] = txn
	return nil
}

func (m *memStore) SoftDeleteTransactions(_ context.Context, journalID string, at time.Time) error {
	for id, leg := range m.legs {
		if leg.JournalID == journalID && leg.DeletedAt == nil {
			leg.DeletedAt = &at
			m.legs[id] = leg
		}
	}
	return nil
}

func (m *memStore) SetReconciled(_ context.Context, ids []string, reconciled bool) error {
	for _, id := range ids {
		leg := m.legs[id]
		leg.Reconciled = reconciled
		m.legs[id] = leg
	}
	return nil
}

// --- budgets ---

func (m *memStore) FindBudgetByID(_ context.Context, userID, id string) (*domain.Budget, error) {
	b, ok := m.budgets[id]
	if !ok || b.UserID != userID {
		return nil, notFound()
	}
	return &b, nil
}

func (m *memStore) FindBudgetsByName(_ context.Context, userID, name string) ([]domain.Budget, error) {
	var out []domain.Budget
	for _, b := range m.budgets {
		if b.UserID == userID && b.Name == name {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListBudgets(_ context.Context, userID string) ([]domain.Budget, error) {
	var out []domain.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) SaveBudget(_ context.Context, b domain.Budget) error {
	for _, existing := range m.budgets {
		if existing.UserID == b.UserID && existing.Name == b.Name {
			return apperrors.ErrDuplicate
		}
	}
	m.budgets[b.BudgetID] = b
	return nil
}

func (m *memStore) newestFirst(match func(domain.BudgetLimit) bool) []domain.BudgetLimit {
	var out []domain.BudgetLimit
	for _, l := range m.limits {
		if match(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.limitSeq[out[i].BudgetLimitID] > m.limitSeq[out[j].BudgetLimitID] })
	return out
}

func (m *memStore) FindLimitsForPeriod(_ context.Context, budgetID string, start, end time.Time) ([]domain.BudgetLimit, error) {
	return m.newestFirst(func(l domain.BudgetLimit) bool { return l.BudgetID == budgetID && l.Matches(start, end) }), nil
}

func (m *memStore) ListLimitsByBudget(_ context.Context, budgetID string) ([]domain.BudgetLimit, error) {
	return m.newestFirst(func(l domain.BudgetLimit) bool { return l.BudgetID == budgetID }), nil
}

func (m *memStore) ListLimitsByUser(_ context.Context, userID string) ([]domain.BudgetLimit, error) {
	return m.newestFirst(func(l domain.BudgetLimit) bool { return m.budgets[l.BudgetID].UserID == userID }), nil
}

func (m *memStore) SaveLimit(_ context.Context, l domain.BudgetLimit) error {
	m.seq++
	m.limits[l.BudgetLimitID] = l
	m.limitSeq[l.BudgetLimitID] = m.seq
	return nil
}

func (m *memStore) UpdateLimit(_ context.Context, l domain.BudgetLimit) error {
	if _, ok := m.limits[l.BudgetLimitID]; !ok {
		return notFound()
	}
	m.limits[l.BudgetLimitID] = l
	return nil
}

func (m *memStore) DeleteLimits(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(m.limits, id)
		delete(m.limitSeq, id)
	}
	return nil
}

func availableKey(userID, currencyID string, start, end time.Time) string {
	return userID + "|" + currencyID + "|" + start.Format(time.DateOnly) + "|" + end.Format(time.DateOnly)
}

func (m *memStore) FindAvailableBudget(_ context.Context, userID, currencyID string, start, end time.Time) (*domain.AvailableBudget, error) {
	a, ok := m.available[availableKey(userID, currencyID, start, end)]
	if !ok {
		return nil, notFound()
	}
	return &a, nil
}

func (m *memStore) SaveAvailableBudget(_ context.Context, a domain.AvailableBudget) error {
	m.available[availableKey(a.UserID, a.CurrencyID, a.StartDate, a.EndDate)] = a
	return nil
}

// --- categories ---

func (m *memStore) FindCategoryByID(_ context.Context, userID, id string) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, notFound()
	}
	return &c, nil
}

func (m *memStore) FindCategoriesByName(_ context.Context, userID, name string) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range m.categories {
		if c.UserID == userID && c.Name == name {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) SaveCategory(_ context.Context, c domain.Category) error {
	m.categories[c.CategoryID] = c
	return nil
}

// --- piggy banks ---

func (m *memStore) FindPiggyBankByID(_ context.Context, userID, id string) (*domain.PiggyBank, error) {
	p, ok := m.piggies[id]
	if !ok || p.UserID != userID {
		return nil, notFound()
	}
	return &p, nil
}

func (m *memStore) ListPiggyBanks(_ context.Context, userID string) ([]domain.PiggyBank, error) {
	var out []domain.PiggyBank
	for _, p := range m.piggies {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *memStore) FindRepetition(_ context.Context, piggyBankID string, date time.Time) (*domain.PiggyBankRepetition, error) {
	for _, r := range m.repetitions {
		if r.PiggyBankID == piggyBankID && r.Covers(date) {
			return &r, nil
		}
	}
	return nil, notFound()
}

func (m *memStore) SumSavedOnAccount(_ context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range m.repetitions {
		if m.piggies[r.PiggyBankID].AccountID == accountID && r.Covers(date) {
			total = total.Add(r.CurrentAmount)
		}
	}
	return total, nil
}

func (m *memStore) ListEvents(_ context.Context, piggyBankID string) ([]domain.PiggyBankEvent, error) {
	var out []domain.PiggyBankEvent
	for _, e := range m.events {
		if e.PiggyBankID == piggyBankID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) SavePiggyBank(_ context.Context, p domain.PiggyBank, r domain.PiggyBankRepetition) error {
	m.piggies[p.PiggyBankID] = p
	m.repetitions[r.RepetitionID] = r
	return nil
}

func (m *memStore) UpdatePiggyBank(_ context.Context, p domain.PiggyBank) error {
	if _, ok := m.piggies[p.PiggyBankID]; !ok {
		return notFound()
	}
	m.piggies[p.PiggyBankID] = p
	return nil
}

func (m *memStore) UpdateRepetitionAmount(_ context.Context, id string, amount decimal.Decimal) error {
	r, ok := m.repetitions[id]
	if !ok {
		return notFound()
	}
	r.CurrentAmount = amount
	m.repetitions[id] = r
	return nil
}

func (m *memStore) SaveEvent(_ context.Context, e domain.PiggyBankEvent) error {
	m.events = append(m.events, e)
	return nil
}

// --- fixtures ---

func (m *memStore) addAccount(userID, name string, t domain.AccountType, currencyID string) domain.Account {
	a := domain.Account{
		AccountID:   "acc-" + name,
		UserID:      userID,
		Name:        name,
		AccountType: t,
		IsActive:    true,
		CurrencyID:  currencyID,
	}
	m.accounts[a.AccountID] = a
	return a
}

func (m *memStore) addCurrency(id, code, symbol string) domain.Currency {
	c := domain.Currency{CurrencyID: id, Code: code, Symbol: symbol, Name: code, DecimalPlaces: 2}
	m.currencies[id] = c
	return c
}

func (m *memStore) accountsOfType(userID string, t domain.AccountType) []domain.Account {
	return m.findAccounts(userID, []domain.AccountType{t}, func(domain.Account) bool { return true })
}
