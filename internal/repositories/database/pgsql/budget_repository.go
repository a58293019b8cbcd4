package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

const budgetColumns = `budget_id, user_id, name, is_active, created_at, created_by, last_updated_at, last_updated_by`

// Limits are ordered newest first; ties on created_at fall back to the id.
const limitColumns = `budget_limit_id, budget_id, start_date, end_date, amount, created_at, updated_at`

func scanBudget(row pgx.Row) (domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(&b.BudgetID, &b.UserID, &b.Name, &b.IsActive, &b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy)
	return b, err
}

func scanLimit(row pgx.Row) (domain.BudgetLimit, error) {
	var l domain.BudgetLimit
	err := row.Scan(&l.BudgetLimitID, &l.BudgetID, &l.StartDate, &l.EndDate, &l.Amount, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, userID string, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1 AND user_id = $2;`
	b, err := scanBudget(r.DB(ctx).QueryRow(ctx, query, budgetID, userID))
	if err != nil {
		return nil, mapError(err, "budget "+budgetID)
	}
	return &b, nil
}

func (r *PgxBudgetRepository) FindBudgetsByName(ctx context.Context, userID string, name string) ([]domain.Budget, error) {
	return r.budgets(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND name = $2 ORDER BY created_at;`, userID, name)
}

func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	return r.budgets(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY name;`, userID)
}

func (r *PgxBudgetRepository) budgets(ctx context.Context, query string, args ...any) ([]domain.Budget, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "budgets")
	}
	defer rows.Close()
	budgets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Budget, error) {
		return scanBudget(row)
	})
	if err != nil {
		return nil, mapError(err, "budgets")
	}
	return budgets, nil
}

// SaveBudget inserts a budget; a second budget with the same name is ErrDuplicate.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, b domain.Budget) error {
	_, err := r.DB(ctx).Exec(ctx, `INSERT INTO budgets (`+budgetColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		b.BudgetID, b.UserID, b.Name, b.IsActive, b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy)
	return mapError(err, "budget "+b.Name)
}

func (r *PgxBudgetRepository) FindLimitsForPeriod(ctx context.Context, budgetID string, start, end time.Time) ([]domain.BudgetLimit, error) {
	return r.limits(ctx, `SELECT `+limitColumns+` FROM budget_limits
		WHERE budget_id = $1 AND start_date = $2 AND end_date = $3
		ORDER BY created_at DESC, budget_limit_id DESC;`, budgetID, domain.DateOnly(start), domain.DateOnly(end))
}

func (r *PgxBudgetRepository) ListLimitsByBudget(ctx context.Context, budgetID string) ([]domain.BudgetLimit, error) {
	return r.limits(ctx, `SELECT `+limitColumns+` FROM budget_limits
		WHERE budget_id = $1
		ORDER BY created_at DESC, budget_limit_id DESC;`, budgetID)
}

func (r *PgxBudgetRepository) ListLimitsByUser(ctx context.Context, userID string) ([]domain.BudgetLimit, error) {
	return r.limits(ctx, `SELECT l.budget_limit_id, l.budget_id, l.start_date, l.end_date, l.amount, l.created_at, l.updated_at
		FROM budget_limits l
		JOIN budgets b ON b.budget_id = l.budget_id
		WHERE b.user_id = $1
		ORDER BY l.created_at DESC, l.budget_limit_id DESC;`, userID)
}

func (r *PgxBudgetRepository) limits(ctx context.Context, query string, args ...any) ([]domain.BudgetLimit, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "budget limits")
	}
	defer rows.Close()
	limits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BudgetLimit, error) {
		return scanLimit(row)
	})
	if err != nil {
		return nil, mapError(err, "budget limits")
	}
	return limits, nil
}

func (r *PgxBudgetRepository) SaveLimit(ctx context.Context, l domain.BudgetLimit) error {
	_, err := r.DB(ctx).Exec(ctx, `INSERT INTO budget_limits (`+limitColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		l.BudgetLimitID, l.BudgetID, domain.DateOnly(l.StartDate), domain.DateOnly(l.EndDate), l.Amount, l.CreatedAt, l.UpdatedAt)
	return mapError(err, "budget limit "+l.BudgetLimitID)
}

func (r *PgxBudgetRepository) UpdateLimit(ctx context.Context, l domain.BudgetLimit) error {
	tag, err := r.DB(ctx).Exec(ctx, `UPDATE budget_limits SET amount = $2, updated_at = $3 WHERE budget_limit_id = $1;`,
		l.BudgetLimitID, l.Amount, l.UpdatedAt)
	if err != nil {
		return mapError(err, "budget limit "+l.BudgetLimitID)
	}
	return notFoundIfNone(tag, "budget limit "+l.BudgetLimitID)
}

func (r *PgxBudgetRepository) DeleteLimits(ctx context.Context, limitIDs []string) error {
	if len(limitIDs) == 0 {
		return nil
	}
	_, err := r.DB(ctx).Exec(ctx, `DELETE FROM budget_limits WHERE budget_limit_id = ANY($1);`, limitIDs)
	return mapError(err, "budget limits")
}

func (r *PgxBudgetRepository) FindAvailableBudget(ctx context.Context, userID, currencyID string, start, end time.Time) (*domain.AvailableBudget, error) {
	query := `
		SELECT available_budget_id, user_id, currency_id, start_date, end_date, amount,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM available_budgets
		WHERE user_id = $1 AND currency_id = $2 AND start_date = $3 AND end_date = $4;
	`
	var a domain.AvailableBudget
	err := r.DB(ctx).QueryRow(ctx, query, userID, currencyID, domain.DateOnly(start), domain.DateOnly(end)).Scan(
		&a.AvailableBudgetID, &a.UserID, &a.CurrencyID, &a.StartDate, &a.EndDate, &a.Amount,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapError(err, "available budget")
	}
	return &a, nil
}

// SaveAvailableBudget inserts or replaces the amount for (user, currency, start, end).
func (r *PgxBudgetRepository) SaveAvailableBudget(ctx context.Context, a domain.AvailableBudget) error {
	query := `
		INSERT INTO available_budgets (available_budget_id, user_id, currency_id, start_date, end_date, amount,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, currency_id, start_date, end_date) DO UPDATE SET
			amount = EXCLUDED.amount,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		a.AvailableBudgetID, a.UserID, a.CurrencyID, domain.DateOnly(a.StartDate), domain.DateOnly(a.EndDate), a.Amount,
		a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy,
	)
	return mapError(err, "available budget")
}
