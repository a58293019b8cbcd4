package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxPiggyBankRepository struct {
	BaseRepository
	tx *PgxTxManager
}

func newPgxPiggyBankRepository(pool *pgxpool.Pool, tx *PgxTxManager) portsrepo.PiggyBankRepositoryFacade {
	return &PgxPiggyBankRepository{BaseRepository: BaseRepository{Pool: pool}, tx: tx}
}

var _ portsrepo.PiggyBankRepositoryFacade = (*PgxPiggyBankRepository)(nil)

const piggyColumns = `piggy_bank_id, user_id, account_id, name, target_amount, start_date, target_date, piggy_order,
	created_at, created_by, last_updated_at, last_updated_by`

// A repetition covers date when each of its ends is open or on the right side of date.
const repetitionCovers = `(r.start_date IS NULL OR r.start_date <= $2) AND (r.target_date IS NULL OR r.target_date >= $2)`

func scanPiggy(row pgx.Row) (domain.PiggyBank, error) {
	var p domain.PiggyBank
	err := row.Scan(&p.PiggyBankID, &p.UserID, &p.AccountID, &p.Name, &p.TargetAmount, &p.StartDate, &p.TargetDate, &p.Order,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy)
	return p, err
}

func (r *PgxPiggyBankRepository) FindPiggyBankByID(ctx context.Context, userID string, piggyBankID string) (*domain.PiggyBank, error) {
	query := `SELECT ` + piggyColumns + ` FROM piggy_banks WHERE piggy_bank_id = $1 AND user_id = $2;`
	p, err := scanPiggy(r.DB(ctx).QueryRow(ctx, query, piggyBankID, userID))
	if err != nil {
		return nil, mapError(err, "piggy bank "+piggyBankID)
	}
	return &p, nil
}

func (r *PgxPiggyBankRepository) ListPiggyBanks(ctx context.Context, userID string) ([]domain.PiggyBank, error) {
	rows, err := r.DB(ctx).Query(ctx, `SELECT `+piggyColumns+` FROM piggy_banks WHERE user_id = $1 ORDER BY piggy_order, name;`, userID)
	if err != nil {
		return nil, mapError(err, "piggy banks")
	}
	defer rows.Close()
	piggies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PiggyBank, error) {
		return scanPiggy(row)
	})
	if err != nil {
		return nil, mapError(err, "piggy banks")
	}
	return piggies, nil
}

func (r *PgxPiggyBankRepository) FindRepetition(ctx context.Context, piggyBankID string, date time.Time) (*domain.PiggyBankRepetition, error) {
	query := `
		SELECT r.repetition_id, r.piggy_bank_id, r.start_date, r.target_date, r.current_amount
		FROM piggy_bank_repetitions r
		WHERE r.piggy_bank_id = $1 AND ` + repetitionCovers + `
		ORDER BY r.start_date DESC NULLS LAST
		LIMIT 1;
	`
	var rep domain.PiggyBankRepetition
	err := r.DB(ctx).QueryRow(ctx, query, piggyBankID, domain.DateOnly(date)).Scan(
		&rep.RepetitionID, &rep.PiggyBankID, &rep.StartDate, &rep.TargetDate, &rep.CurrentAmount)
	if err != nil {
		return nil, mapError(err, "repetition of piggy bank "+piggyBankID)
	}
	return &rep, nil
}

func (r *PgxPiggyBankRepository) SumSavedOnAccount(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(r.current_amount), 0)
		FROM piggy_bank_repetitions r
		JOIN piggy_banks p ON p.piggy_bank_id = r.piggy_bank_id
		WHERE p.account_id = $1 AND ` + repetitionCovers + `;
	`
	var sum decimal.Decimal
	if err := r.DB(ctx).QueryRow(ctx, query, accountID, domain.DateOnly(date)).Scan(&sum); err != nil {
		return decimal.Zero, mapError(err, "saved amount of account "+accountID)
	}
	return sum, nil
}

func (r *PgxPiggyBankRepository) ListEvents(ctx context.Context, piggyBankID string) ([]domain.PiggyBankEvent, error) {
	rows, err := r.DB(ctx).Query(ctx, `
		SELECT event_id, piggy_bank_id, journal_id, event_date, amount, created_at
		FROM piggy_bank_events
		WHERE piggy_bank_id = $1
		ORDER BY event_date, created_at;`, piggyBankID)
	if err != nil {
		return nil, mapError(err, "piggy bank events")
	}
	defer rows.Close()
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PiggyBankEvent, error) {
		var e domain.PiggyBankEvent
		err := row.Scan(&e.EventID, &e.PiggyBankID, &e.JournalID, &e.Date, &e.Amount, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, mapError(err, "piggy bank events")
	}
	return events, nil
}

// SavePiggyBank persists a piggy bank with its first repetition.
func (r *PgxPiggyBankRepository) SavePiggyBank(ctx context.Context, p domain.PiggyBank, rep domain.PiggyBankRepetition) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := r.DB(ctx).Exec(ctx, `INSERT INTO piggy_banks (`+piggyColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
			p.PiggyBankID, p.UserID, p.AccountID, p.Name, p.TargetAmount, p.StartDate, p.TargetDate, p.Order,
			p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy)
		if err != nil {
			return mapError(err, "piggy bank "+p.Name)
		}
		_, err = r.DB(ctx).Exec(ctx, `INSERT INTO piggy_bank_repetitions (repetition_id, piggy_bank_id, start_date, target_date, current_amount)
			VALUES ($1, $2, $3, $4, $5);`,
			rep.RepetitionID, rep.PiggyBankID, rep.StartDate, rep.TargetDate, rep.CurrentAmount)
		return mapError(err, "repetition of piggy bank "+p.Name)
	})
}

func (r *PgxPiggyBankRepository) UpdatePiggyBank(ctx context.Context, p domain.PiggyBank) error {
	tag, err := r.DB(ctx).Exec(ctx, `
		UPDATE piggy_banks
		SET name = $2, target_amount = $3, start_date = $4, target_date = $5, piggy_order = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE piggy_bank_id = $1;`,
		p.PiggyBankID, p.Name, p.TargetAmount, p.StartDate, p.TargetDate, p.Order, p.LastUpdatedAt, p.LastUpdatedBy)
	if err != nil {
		return mapError(err, "piggy bank "+p.PiggyBankID)
	}
	return notFoundIfNone(tag, "piggy bank "+p.PiggyBankID)
}

func (r *PgxPiggyBankRepository) UpdateRepetitionAmount(ctx context.Context, repetitionID string, amount decimal.Decimal) error {
	tag, err := r.DB(ctx).Exec(ctx, `UPDATE piggy_bank_repetitions SET current_amount = $2 WHERE repetition_id = $1;`, repetitionID, amount)
	if err != nil {
		return mapError(err, "repetition "+repetitionID)
	}
	return notFoundIfNone(tag, "repetition "+repetitionID)
}

func (r *PgxPiggyBankRepository) SaveEvent(ctx context.Context, e domain.PiggyBankEvent) error {
	_, err := r.DB(ctx).Exec(ctx, `
		INSERT INTO piggy_bank_events (event_id, piggy_bank_id, journal_id, event_date, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		e.EventID, e.PiggyBankID, e.JournalID, domain.DateOnly(e.Date), e.Amount, e.CreatedAt)
	return mapError(err, "piggy bank event")
}
