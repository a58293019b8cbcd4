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

// AccountInput names the two sides of a split by id or by name.
type AccountInput struct {
	SourceID        *string
	SourceName      *string
	DestinationID   *string
	DestinationName *string
}

// ResolvedAccounts is the source and destination of a split. Either is nil when unresolved.
type ResolvedAccounts struct {
	Source      *domain.Account
	Destination *domain.Account
}

// AccountResolver turns account references of a split into accounts, creating
// expense, revenue and counter accounts on demand. It is shared by store, update,
// convert and import so all of them apply the same rules.
type AccountResolver struct {
	accounts portsrepo.AccountRepositoryFacade
	now      func() time.Time
}

// NewAccountResolver creates an AccountResolver.
func NewAccountResolver(accounts portsrepo.AccountRepositoryFacade, now func() time.Time) *AccountResolver {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &AccountResolver{accounts: accounts, now: now}
}

// Resolve finds or creates both accounts of a split for a journal of type jt.
// Business-rule failures are added to bag under field+"source_id" / field+"destination_id";
// only storage failures are returned as errors.
func (r *AccountResolver) Resolve(ctx context.Context, userID string, jt domain.JournalType, in AccountInput, bag apperrors.MessageBag, field string) (ResolvedAccounts, error) {
	var (
		res ResolvedAccounts
		err error
	)
	srcField, dstField := field+"source_id", field+"destination_id"

	switch jt {
	case domain.Withdrawal:
		if res.Source, err = r.ByID(ctx, userID, in.SourceID, jt, true, bag, srcField); err != nil {
			return res, err
		}
		if isSet(in.DestinationID) {
			res.Destination, err = r.ByID(ctx, userID, in.DestinationID, jt, false, bag, dstField)
		} else {
			res.Destination, err = r.ExpenseOrCash(ctx, userID, in.DestinationName)
		}
	case domain.Deposit:
		if isSet(in.SourceID) {
			res.Source, err = r.ByID(ctx, userID, in.SourceID, jt, true, bag, srcField)
		} else {
			res.Source, err = r.RevenueOrCash(ctx, userID, in.SourceName)
		}
		if err != nil {
			return res, err
		}
		res.Destination, err = r.ByID(ctx, userID, in.DestinationID, jt, false, bag, dstField)
	case domain.Transfer:
		if res.Source, err = r.ByID(ctx, userID, in.SourceID, jt, true, bag, srcField); err != nil {
			return res, err
		}
		res.Destination, err = r.ByID(ctx, userID, in.DestinationID, jt, false, bag, dstField)
	case domain.OpeningBalance:
		res, err = r.counterAccount(ctx, userID, jt, domain.InitialBalance, "initial balance", in, bag, field)
	case domain.ReconciliationJournal:
		res, err = r.counterAccount(ctx, userID, jt, domain.Reconciliation, "reconciliation", in, bag, field)
	default:
		bag.Add(field+"type", fmt.Sprintf("unknown journal type %q", jt))
	}
	if err != nil {
		return res, err
	}

	if res.Source != nil && res.Destination != nil && res.Source.AccountID == res.Destination.AccountID {
		bag.Add(dstField, "source and destination must be different accounts")
	}
	return res, nil
}

// counterAccount resolves the asset side by id and pairs it with a find-or-created counter
// account named after it. A destination id makes the asset the destination; otherwise the
// source id makes it the source.
func (r *AccountResolver) counterAccount(ctx context.Context, userID string, jt domain.JournalType, counterType domain.AccountType, suffix string, in AccountInput, bag apperrors.MessageBag, field string) (ResolvedAccounts, error) {
	var res ResolvedAccounts
	if isSet(in.DestinationID) {
		asset, err := r.ByID(ctx, userID, in.DestinationID, jt, false, bag, field+"destination_id")
		if err != nil || asset == nil {
			return res, err
		}
		res.Destination = asset
		res.Source, err = r.FindOrCreate(ctx, userID, asset.Name+" "+suffix, counterType)
		return res, err
	}
	asset, err := r.ByID(ctx, userID, in.SourceID, jt, true, bag, field+"source_id")
	if err != nil || asset == nil {
		return res, err
	}
	res.Source = asset
	res.Destination, err = r.FindOrCreate(ctx, userID, asset.Name+" "+suffix, counterType)
	return res, err
}

// ByID loads an account the user owns that may take the given role in a journal of type jt.
func (r *AccountResolver) ByID(ctx context.Context, userID string, id *string, jt domain.JournalType, asSource bool, bag apperrors.MessageBag, field string) (*domain.Account, error) {
	if !isSet(id) {
		bag.Add(field, "an account is required")
		return nil, nil
	}
	account, err := r.accounts.FindAccountByID(ctx, userID, *id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Debug("Account not found", slog.String("account_id", *id))
			bag.Add(field, "account does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account %s: %w", *id, err)
	}
	allowed := account.CanBeDestination(jt)
	if asSource {
		allowed = account.CanBeSource(jt)
	}
	if !allowed {
		role := "destination"
		if asSource {
			role = "source"
		}
		bag.Add(field, fmt.Sprintf("a %s account cannot be the %s of a %s", strings.ToLower(string(account.AccountType)), role, strings.ToLower(string(jt))))
		return nil, nil
	}
	return account, nil
}

// ExpenseOrCash finds or creates the expense account called name, or the shared cash account when name is empty.
func (r *AccountResolver) ExpenseOrCash(ctx context.Context, userID string, name *string) (*domain.Account, error) {
	if !isSet(name) {
		return r.FindOrCreate(ctx, userID, domain.CashAccountName, domain.Cash)
	}
	return r.FindOrCreate(ctx, userID, strings.TrimSpace(*name), domain.Expense)
}

// RevenueOrCash finds or creates the revenue account called name, or the shared cash account when name is empty.
func (r *AccountResolver) RevenueOrCash(ctx context.Context, userID string, name *string) (*domain.Account, error) {
	if !isSet(name) {
		return r.FindOrCreate(ctx, userID, domain.CashAccountName, domain.Cash)
	}
	return r.FindOrCreate(ctx, userID, strings.TrimSpace(*name), domain.Revenue)
}

// FindOrCreate returns the user's account of accountType called name, creating it when absent.
func (r *AccountResolver) FindOrCreate(ctx context.Context, userID string, name string, accountType domain.AccountType) (*domain.Account, error) {
	found, err := r.accounts.FindAccountsByName(ctx, userID, name, []domain.AccountType{accountType})
	if err != nil {
		return nil, fmt.Errorf("failed to find %s account %q: %w", accountType, name, err)
	}
	if len(found) > 0 {
		return &found[0], nil
	}

	account := domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      userID,
		Name:        name,
		AccountType: accountType,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, r.now()),
	}
	if err := r.accounts.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create %s account %q: %w", accountType, name, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Created account",
		slog.String("account_id", account.AccountID),
		slog.String("account_type", string(accountType)))
	return &account, nil
}

func isSet(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
