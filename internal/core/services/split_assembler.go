package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/dto"
)

type splitAssembler struct {
	journals   portsrepo.JournalRepositoryFacade
	accounts   portsrepo.AccountRepositoryFacade
	budgets    portsrepo.BudgetRepositoryFacade
	categories portsrepo.CategoryRepositoryFacade
}

// NewSplitAssembler creates the service that builds editable split views.
func NewSplitAssembler(repos portsrepo.RepositoryProvider) portssvc.SplitSvc {
	return &splitAssembler{
		journals:   repos.JournalRepo,
		accounts:   repos.AccountRepo,
		budgets:    repos.BudgetRepo,
		categories: repos.CategoryRepo,
	}
}

var _ portssvc.SplitSvc = (*splitAssembler)(nil)

// BuildSplitEntries lists one entry per split of the journal and merges oldInput over it.
func (a *splitAssembler) BuildSplitEntries(ctx context.Context, userID string, journalID string, oldInput map[int]dto.SplitEntryInput) ([]dto.SplitEntry, error) {
	journal, err := a.journals.FindJournalByID(ctx, userID, journalID)
	if err != nil {
		return nil, err
	}

	legs := SplitLegs(journal)
	ids := make([]string, 0, 2*len(legs))
	for _, leg := range journal.Transactions {
		ids = append(ids, leg.AccountID)
	}
	accounts, err := a.accounts.FindAccountsByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	names := newNameLookup(userID, a.budgets, a.categories)
	entries := make([]dto.SplitEntry, 0, len(legs))
	for _, leg := range legs {
		opposing, _ := domain.OpposingLeg(leg, journal.Transactions)
		sourceID, destinationID := leg.AccountID, opposing.AccountID
		if journal.TransactionType == domain.Deposit {
			sourceID, destinationID = opposing.AccountID, leg.AccountID
		}

		entry := dto.SplitEntry{
			Identifier:        leg.Identifier,
			TransactionID:     leg.TransactionID,
			Description:       leg.Description,
			Amount:            leg.Amount.Abs(),
			CurrencyID:        leg.CurrencyID,
			ForeignCurrencyID: leg.ForeignCurrencyID,
			SourceID:          sourceID,
			SourceName:        accounts[sourceID].Name,
			DestinationID:     destinationID,
			DestinationName:   accounts[destinationID].Name,
			BudgetID:          firstSet(leg.BudgetID, journal.BudgetID),
			CategoryID:        firstSet(leg.CategoryID, journal.CategoryID),
		}
		if entry.Description == "" {
			entry.Description = journal.Description
		}
		if leg.ForeignAmount != nil {
			foreign := leg.ForeignAmount.Abs()
			entry.ForeignAmount = &foreign
		}
		if entry.BudgetName, err = names.budget(ctx, entry.BudgetID); err != nil {
			return nil, err
		}
		if entry.CategoryName, err = names.category(ctx, entry.CategoryID); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return MergeSplitInput(entries, oldInput), nil
}

// SplitLegs returns the legs that carry the journal's direction, ordered by identifier:
// the positive legs of a deposit, the negative legs of anything else.
func SplitLegs(journal *domain.Journal) []domain.Transaction {
	legs := make([]domain.Transaction, 0, len(journal.Transactions)/2)
	for _, leg := range journal.Transactions {
		if journal.TransactionType == domain.Deposit && leg.Amount.IsPositive() ||
			journal.TransactionType != domain.Deposit && leg.Amount.IsNegative() {
			legs = append(legs, leg)
		}
	}
	sort.SliceStable(legs, func(i, j int) bool { return legs[i].Identifier < legs[j].Identifier })
	return legs
}

// MergeSplitInput lays previously submitted rows over the loaded entries. A submitted field wins
// over the loaded one. A row index beyond the loaded entries becomes a new entry whose currency and
// foreign currency default to those of the first entry. The result is ordered by row index.
func MergeSplitInput(loaded []dto.SplitEntry, old map[int]dto.SplitEntryInput) []dto.SplitEntry {
	merged := make([]dto.SplitEntry, len(loaded))
	copy(merged, loaded)
	if len(old) == 0 {
		return merged
	}

	indexes := make([]int, 0, len(old))
	for index := range old {
		if index >= 0 {
			indexes = append(indexes, index)
		}
	}
	sort.Ints(indexes)

	byIndex := make(map[int]dto.SplitEntry, len(merged)+len(indexes))
	order := make([]int, 0, len(merged)+len(indexes))
	for i, entry := range merged {
		byIndex[i] = entry
		order = append(order, i)
	}
	for _, index := range indexes {
		entry, exists := byIndex[index]
		if !exists {
			entry = dto.SplitEntry{Identifier: index}
			if len(merged) > 0 {
				entry.CurrencyID = merged[0].CurrencyID
				entry.ForeignCurrencyID = merged[0].ForeignCurrencyID
			}
			order = append(order, index)
		}
		byIndex[index] = applySplitInput(entry, old[index])
	}

	sort.Ints(order)
	result := make([]dto.SplitEntry, 0, len(order))
	for _, index := range order {
		result = append(result, byIndex[index])
	}
	return result
}

func applySplitInput(entry dto.SplitEntry, in dto.SplitEntryInput) dto.SplitEntry {
	if in.Description != nil {
		entry.Description = *in.Description
	}
	if in.Amount != nil {
		entry.Amount = *in.Amount
	}
	if in.CurrencyID != nil {
		entry.CurrencyID = *in.CurrencyID
	}
	if in.ForeignAmount != nil {
		entry.ForeignAmount = in.ForeignAmount
	}
	if in.ForeignCurrencyID != nil {
		entry.ForeignCurrencyID = in.ForeignCurrencyID
	}
	if in.SourceID != nil {
		entry.SourceID = *in.SourceID
	}
	if in.SourceName != nil {
		entry.SourceName = *in.SourceName
	}
	if in.DestinationID != nil {
		entry.DestinationID = *in.DestinationID
	}
	if in.DestinationName != nil {
		entry.DestinationName = *in.DestinationName
	}
	if in.BudgetID != nil {
		entry.BudgetID = in.BudgetID
	}
	if in.CategoryID != nil {
		entry.CategoryID = in.CategoryID
	}
	return entry
}

func firstSet(values ...*string) *string {
	for _, v := range values {
		if isSet(v) {
			return v
		}
	}
	return nil
}

// nameLookup memoizes budget and category names for one request.
type nameLookup struct {
	userID     string
	budgets    portsrepo.BudgetReader
	categories portsrepo.CategoryRepositoryFacade
	seen       map[string]string
}

func newNameLookup(userID string, budgets portsrepo.BudgetReader, categories portsrepo.CategoryRepositoryFacade) *nameLookup {
	return &nameLookup{userID: userID, budgets: budgets, categories: categories, seen: map[string]string{}}
}

func (n *nameLookup) budget(ctx context.Context, id *string) (string, error) {
	if id == nil {
		return "", nil
	}
	if name, ok := n.seen["b:"+*id]; ok {
		return name, nil
	}
	budget, err := n.budgets.FindBudgetByID(ctx, n.userID, *id)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to load budget: %w", err)
	}
	name := ""
	if budget != nil {
		name = budget.Name
	}
	n.seen["b:"+*id] = name
	return name, nil
}

func (n *nameLookup) category(ctx context.Context, id *string) (string, error) {
	if id == nil {
		return "", nil
	}
	if name, ok := n.seen["c:"+*id]; ok {
		return name, nil
	}
	category, err := n.categories.FindCategoryByID(ctx, n.userID, *id)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to load category: %w", err)
	}
	name := ""
	if category != nil {
		name = category.Name
	}
	n.seen["c:"+*id] = name
	return name, nil
}
