package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

const currencyColumns = `currency_id, code, symbol, name, decimal_places, created_at, created_by, last_updated_at, last_updated_by`

func scanCurrency(row pgx.Row) (domain.Currency, error) {
	var c domain.Currency
	err := row.Scan(
		&c.CurrencyID,
		&c.Code,
		&c.Symbol,
		&c.Name,
		&c.DecimalPlaces,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	return c, err
}

// SaveCurrency inserts a currency. Codes are unique; rows referenced by legs are never rewritten.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		INSERT INTO currencies (` + currencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		currency.CurrencyID,
		currency.Code,
		currency.Symbol,
		currency.Name,
		currency.DecimalPlaces,
		currency.CreatedAt,
		currency.CreatedBy,
		currency.LastUpdatedAt,
		currency.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, fmt.Sprintf("currency %s", currency.Code))
	}
	return nil
}

func (r *PgxCurrencyRepository) FindCurrencyByID(ctx context.Context, currencyID string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE currency_id = $1;`
	c, err := scanCurrency(r.DB(ctx).QueryRow(ctx, query, currencyID))
	if err != nil {
		return nil, mapError(err, "currency "+currencyID)
	}
	return &c, nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE code = $1;`
	c, err := scanCurrency(r.DB(ctx).QueryRow(ctx, query, currencyCode))
	if err != nil {
		return nil, mapError(err, "currency "+currencyCode)
	}
	return &c, nil
}

func (r *PgxCurrencyRepository) FindCurrenciesBySymbol(ctx context.Context, symbol string) ([]domain.Currency, error) {
	return r.list(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE symbol = $1 ORDER BY code;`, symbol)
}

func (r *PgxCurrencyRepository) FindCurrenciesByName(ctx context.Context, name string) ([]domain.Currency, error) {
	return r.list(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE name = $1 ORDER BY code;`, name)
}

// ListCurrencies retrieves all currencies.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return r.list(ctx, `SELECT `+currencyColumns+` FROM currencies ORDER BY code;`)
}

func (r *PgxCurrencyRepository) list(ctx context.Context, query string, args ...any) ([]domain.Currency, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "currencies")
	}
	defer rows.Close()

	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Currency, error) {
		return scanCurrency(row)
	})
	if err != nil {
		return nil, mapError(err, "currencies")
	}
	return currencies, nil
}
