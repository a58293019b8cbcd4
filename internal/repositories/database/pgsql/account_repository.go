package pgsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, user_id, name, account_type, is_active, iban, bic, account_number,
	virtual_balance, currency_id, role, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	var currencyID sql.NullString
	err := row.Scan(
		&a.AccountID,
		&a.UserID,
		&a.Name,
		&a.AccountType,
		&a.IsActive,
		&a.IBAN,
		&a.BIC,
		&a.AccountNumber,
		&a.VirtualBalance,
		&currencyID,
		&a.Role,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if currencyID.Valid {
		a.CurrencyID = currencyID.String
	}
	return a, err
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "accounts")
	}
	defer rows.Close()

	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Account, error) {
		return scanAccount(row)
	})
	if err != nil {
		return nil, mapError(err, "accounts")
	}
	return accounts, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	// Accounts without a native currency keep the column NULL.
	var currencyID sql.NullString
	if account.CurrencyID != "" {
		currencyID = sql.NullString{String: account.CurrencyID, Valid: true}
	}

	_, err := r.DB(ctx).Exec(ctx, query,
		account.AccountID,
		account.UserID,
		account.Name,
		account.AccountType,
		account.IsActive,
		account.IBAN,
		account.BIC,
		account.AccountNumber,
		account.VirtualBalance,
		currencyID,
		account.Role,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, fmt.Sprintf("account %s", account.AccountID))
	}
	return nil
}

// FindAccountByID retrieves an account of the user by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 AND user_id = $2;`
	account, err := scanAccount(r.DB(ctx).QueryRow(ctx, query, accountID, userID))
	if err != nil {
		return nil, mapError(err, "account "+accountID)
	}
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids are simply absent from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, userID string, accountIDs []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) AND user_id = $2;`
	accounts, err := r.queryAccounts(ctx, query, accountIDs, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.AccountID] = a
	}
	return result, nil
}

func (r *PgxAccountRepository) FindAccountsByName(ctx context.Context, userID string, name string, types []domain.AccountType) ([]domain.Account, error) {
	return r.findBy(ctx, "name", userID, name, types)
}

func (r *PgxAccountRepository) FindAccountsByIBAN(ctx context.Context, userID string, iban string, types []domain.AccountType) ([]domain.Account, error) {
	return r.findBy(ctx, "iban", userID, iban, types)
}

func (r *PgxAccountRepository) FindAccountsByNumber(ctx context.Context, userID string, number string, types []domain.AccountType) ([]domain.Account, error) {
	return r.findBy(ctx, "account_number", userID, number, types)
}

// findBy matches one column exactly. column is never user input.
func (r *PgxAccountRepository) findBy(ctx context.Context, column, userID, value string, types []domain.AccountType) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE user_id = $1 AND ` + column + ` = $2 AND account_type = ANY($3)
		ORDER BY created_at, account_id;`
	return r.queryAccounts(ctx, query, userID, value, accountTypeStrings(types))
}

// ListAccountsByType lists the user's active accounts of the given types.
func (r *PgxAccountRepository) ListAccountsByType(ctx context.Context, userID string, types []domain.AccountType) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE user_id = $1 AND is_active AND account_type = ANY($2)
		ORDER BY name;`
	return r.queryAccounts(ctx, query, userID, accountTypeStrings(types))
}

// GetAccountBalance sums the account's live legs dated on or before date.
func (r *PgxAccountRepository) GetAccountBalance(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN journals j ON j.journal_id = t.journal_id
		WHERE t.account_id = $1
		  AND t.deleted_at IS NULL
		  AND j.deleted_at IS NULL
		  AND j.journal_date <= $2;
	`
	var balance decimal.Decimal
	if err := r.DB(ctx).QueryRow(ctx, query, accountID, domain.DateOnly(date)).Scan(&balance); err != nil {
		return decimal.Zero, mapError(err, "balance of account "+accountID)
	}
	return balance, nil
}

func accountTypeStrings(types []domain.AccountType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
