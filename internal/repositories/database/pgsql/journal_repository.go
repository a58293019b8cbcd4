package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	"github.com/SscSPs/fireledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxJournalRepository struct {
	BaseRepository
	tx *PgxTxManager
}

// newPgxJournalRepository creates a new repository for journal and transaction data.
func newPgxJournalRepository(pool *pgxpool.Pool, tx *PgxTxManager) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		tx:             tx,
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalColumns = `journal_id, user_id, transaction_type, description, journal_date, journal_order,
	notes, budget_id, category_id, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

const transactionColumns = `t.transaction_id, t.journal_id, t.account_id, t.description, t.amount, t.currency_id,
	t.foreign_amount, t.foreign_currency_id, t.identifier, t.reconciled, t.budget_id, t.category_id,
	t.deleted_at, t.created_at, t.created_by, t.last_updated_at, t.last_updated_by`

func scanJournal(row pgx.Row) (domain.Journal, error) {
	var j domain.Journal
	err := row.Scan(
		&j.JournalID,
		&j.UserID,
		&j.TransactionType,
		&j.Description,
		&j.JournalDate,
		&j.Order,
		&j.Notes,
		&j.BudgetID,
		&j.CategoryID,
		&j.DeletedAt,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	return j, err
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.JournalID,
		&t.AccountID,
		&t.Description,
		&t.Amount,
		&t.CurrencyID,
		&t.ForeignAmount,
		&t.ForeignCurrencyID,
		&t.Identifier,
		&t.Reconciled,
		&t.BudgetID,
		&t.CategoryID,
		&t.DeletedAt,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	return t, err
}

// SaveJournal inserts the journal, its legs, meta rows and tags.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO journals (` + journalColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
		`
		_, err := r.DB(ctx).Exec(ctx, query,
			journal.JournalID,
			journal.UserID,
			journal.TransactionType,
			journal.Description,
			domain.DateOnly(journal.JournalDate),
			journal.Order,
			journal.Notes,
			journal.BudgetID,
			journal.CategoryID,
			journal.DeletedAt,
			journal.CreatedAt,
			journal.CreatedBy,
			journal.LastUpdatedAt,
			journal.LastUpdatedBy,
		)
		if err != nil {
			return mapError(err, "journal "+journal.JournalID)
		}
		if err := r.SaveTransactions(ctx, journal.Transactions); err != nil {
			return err
		}
		return r.writeMetaAndTags(ctx, journal)
	})
}

// UpdateJournal rewrites the journal header, meta, notes and tags.
func (r *PgxJournalRepository) UpdateJournal(ctx context.Context, journal domain.Journal) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE journals
			SET transaction_type = $2,
			    description = $3,
			    journal_date = $4,
			    notes = $5,
			    budget_id = $6,
			    category_id = $7,
			    last_updated_at = $8,
			    last_updated_by = $9
			WHERE journal_id = $1 AND deleted_at IS NULL;
		`
		tag, err := r.DB(ctx).Exec(ctx, query,
			journal.JournalID,
			journal.TransactionType,
			journal.Description,
			domain.DateOnly(journal.JournalDate),
			journal.Notes,
			journal.BudgetID,
			journal.CategoryID,
			journal.LastUpdatedAt,
			journal.LastUpdatedBy,
		)
		if err != nil {
			return mapError(err, "journal "+journal.JournalID)
		}
		if err := notFoundIfNone(tag, "journal "+journal.JournalID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM journal_meta WHERE journal_id = $1;`, journal.JournalID)
		batch.Queue(`DELETE FROM journal_tags WHERE journal_id = $1;`, journal.JournalID)
		if err := r.DB(ctx).SendBatch(ctx, batch).Close(); err != nil {
			return mapError(err, "journal meta "+journal.JournalID)
		}
		return r.writeMetaAndTags(ctx, journal)
	})
}

func (r *PgxJournalRepository) writeMetaAndTags(ctx context.Context, journal domain.Journal) error {
	if len(journal.Meta) == 0 && len(journal.Tags) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for name, value := range journal.Meta {
		batch.Queue(`INSERT INTO journal_meta (journal_id, name, value) VALUES ($1, $2, $3);`, journal.JournalID, name, value)
	}
	for _, tag := range journal.Tags {
		batch.Queue(`INSERT INTO journal_tags (journal_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING;`, journal.JournalID, tag)
	}
	if err := r.DB(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "journal meta "+journal.JournalID)
	}
	return nil
}

// LockJournal takes a row lock on the journal for the rest of the current transaction.
func (r *PgxJournalRepository) LockJournal(ctx context.Context, journalID string) error {
	var id string
	err := r.DB(ctx).QueryRow(ctx, `SELECT journal_id FROM journals WHERE journal_id = $1 FOR UPDATE;`, journalID).Scan(&id)
	if err != nil {
		return mapError(err, "journal "+journalID)
	}
	return nil
}

// DeleteJournal soft-deletes the journal and its legs and drops meta, notes, tags and piggy bank links.
func (r *PgxJournalRepository) DeleteJournal(ctx context.Context, journalID string, userID string, at time.Time) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE journals
			SET deleted_at = $3, notes = NULL, last_updated_at = $3, last_updated_by = $2
			WHERE journal_id = $1 AND user_id = $2 AND deleted_at IS NULL;
		`
		tag, err := r.DB(ctx).Exec(ctx, query, journalID, userID, at)
		if err != nil {
			return mapError(err, "journal "+journalID)
		}
		if err := notFoundIfNone(tag, "journal "+journalID); err != nil {
			return err
		}
		if err := r.SoftDeleteTransactions(ctx, journalID, at); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM journal_meta WHERE journal_id = $1;`, journalID)
		batch.Queue(`DELETE FROM journal_tags WHERE journal_id = $1;`, journalID)
		batch.Queue(`UPDATE piggy_bank_events SET journal_id = NULL WHERE journal_id = $1;`, journalID)
		if err := r.DB(ctx).SendBatch(ctx, batch).Close(); err != nil {
			return mapError(err, "journal links "+journalID)
		}
		return nil
	})
}

// FindJournalByID retrieves a live journal with its legs, meta, notes and tags.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, userID string, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1 AND user_id = $2 AND deleted_at IS NULL;`
	journal, err := scanJournal(r.DB(ctx).QueryRow(ctx, query, journalID, userID))
	if err != nil {
		return nil, mapError(err, "journal "+journalID)
	}
	journals := []domain.Journal{journal}
	if err := r.loadDetails(ctx, journals); err != nil {
		return nil, err
	}
	return &journals[0], nil
}

// ListJournals retrieves a paginated list of the user's journals using token-based pagination.
// It returns the list of journals, a token for the next page (if any), and an error.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	args := []any{userID}
	query := `SELECT ` + journalColumns + ` FROM journals WHERE user_id = $1 AND deleted_at IS NULL`
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		// Tuple comparison is concise and efficient in Postgres
		query += ` AND (journal_date, created_at, journal_id) < ($2, $3, $4)`
		args = append(args, cursor.Date, cursor.CreatedAt, cursor.ID)
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY journal_date DESC, created_at DESC, journal_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapError(err, "journals")
	}
	defer rows.Close()
	journals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Journal, error) {
		return scanJournal(row)
	})
	if err != nil {
		return nil, nil, mapError(err, "journals")
	}

	var nextTokenVal *string
	if len(journals) > limit {
		// The token points to the last item included in this page.
		last := journals[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.JournalDate, CreatedAt: last.CreatedAt, ID: last.JournalID})
		nextTokenVal = &token
		journals = journals[:limit]
	}

	if err := r.loadDetails(ctx, journals); err != nil {
		return nil, nil, err
	}
	return journals, nextTokenVal, nil
}

// loadDetails fills legs, meta and tags of journals in place.
func (r *PgxJournalRepository) loadDetails(ctx context.Context, journals []domain.Journal) error {
	if len(journals) == 0 {
		return nil
	}
	ids := make([]string, len(journals))
	index := make(map[string]int, len(journals))
	for i, j := range journals {
		ids[i] = j.JournalID
		index[j.JournalID] = i
		journals[i].Transactions = []domain.Transaction{}
	}

	legs, err := r.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions t
		WHERE t.journal_id = ANY($1) AND t.deleted_at IS NULL
		ORDER BY t.journal_id, t.identifier, t.amount;`, ids)
	if err != nil {
		return err
	}
	for _, leg := range legs {
		i := index[leg.JournalID]
		journals[i].Transactions = append(journals[i].Transactions, leg)
	}

	rows, err := r.DB(ctx).Query(ctx, `SELECT journal_id, name, value FROM journal_meta WHERE journal_id = ANY($1);`, ids)
	if err != nil {
		return mapError(err, "journal meta")
	}
	defer rows.Close()
	for rows.Next() {
		var journalID, name, value string
		if err := rows.Scan(&journalID, &name, &value); err != nil {
			return mapError(err, "journal meta")
		}
		j := &journals[index[journalID]]
		if j.Meta == nil {
			j.Meta = map[string]string{}
		}
		j.Meta[name] = value
	}
	if err := rows.Err(); err != nil {
		return mapError(err, "journal meta")
	}

	tagRows, err := r.DB(ctx).Query(ctx, `SELECT journal_id, tag FROM journal_tags WHERE journal_id = ANY($1) ORDER BY tag;`, ids)
	if err != nil {
		return mapError(err, "journal tags")
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var journalID, tag string
		if err := tagRows.Scan(&journalID, &tag); err != nil {
			return mapError(err, "journal tags")
		}
		j := &journals[index[journalID]]
		j.Tags = append(j.Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return mapError(err, "journal tags")
	}
	return nil
}

func (r *PgxJournalRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "transactions")
	}
	defer rows.Close()
	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, mapError(err, "transactions")
	}
	return txns, nil
}

// FindTransactionByID retrieves a live leg of the user's journals.
func (r *PgxJournalRepository) FindTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t
		JOIN journals j ON j.journal_id = t.journal_id
		WHERE t.transaction_id = $1 AND j.user_id = $2 AND t.deleted_at IS NULL;`
	txn, err := scanTransaction(r.DB(ctx).QueryRow(ctx, query, transactionID, userID))
	if err != nil {
		return nil, mapError(err, "transaction "+transactionID)
	}
	return &txn, nil
}

// FindTransactionsByJournalID retrieves all live legs of a journal, ordered by identifier.
func (r *PgxJournalRepository) FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error) {
	return r.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions t
		WHERE t.journal_id = $1 AND t.deleted_at IS NULL
		ORDER BY t.identifier, t.amount;`, journalID)
}

// SumTransactions adds up the legs matching filter. Zero dates leave that end of the range open.
func (r *PgxJournalRepository) SumTransactions(ctx context.Context, filter portsrepo.TransactionSumFilter) (decimal.Decimal, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT COALESCE(SUM(t.amount), 0) FROM transactions t
		JOIN journals j ON j.journal_id = t.journal_id
		WHERE j.user_id = $1 AND t.deleted_at IS NULL AND j.deleted_at IS NULL`)
	args := []any{filter.UserID}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !filter.Start.IsZero() {
		sb.WriteString(` AND j.journal_date >= ` + next(domain.DateOnly(filter.Start)))
	}
	if !filter.End.IsZero() {
		sb.WriteString(` AND j.journal_date <= ` + next(domain.DateOnly(filter.End)))
	}
	if len(filter.JournalTypes) > 0 {
		types := make([]string, len(filter.JournalTypes))
		for i, t := range filter.JournalTypes {
			types[i] = string(t)
		}
		sb.WriteString(` AND j.transaction_type = ANY(` + next(types) + `)`)
	}
	if len(filter.AccountIDs) > 0 {
		sb.WriteString(` AND t.account_id = ANY(` + next(filter.AccountIDs) + `)`)
	}
	if len(filter.BudgetIDs) > 0 {
		sb.WriteString(` AND COALESCE(t.budget_id, j.budget_id) = ANY(` + next(filter.BudgetIDs) + `)`)
	}
	if filter.NegativeOnly {
		sb.WriteString(` AND t.amount < 0`)
	}

	var sum decimal.Decimal
	if err := r.DB(ctx).QueryRow(ctx, sb.String(), args...).Scan(&sum); err != nil {
		return decimal.Zero, mapError(err, "transaction sum")
	}
	return sum, nil
}

// SaveTransactions inserts legs for an existing journal.
func (r *PgxJournalRepository) SaveTransactions(ctx context.Context, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	query := `
		INSERT INTO transactions (transaction_id, journal_id, account_id, description, amount, currency_id,
			foreign_amount, foreign_currency_id, identifier, reconciled, budget_id, category_id,
			deleted_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	batch := &pgx.Batch{}
	for _, t := range txns {
		batch.Queue(query,
			t.TransactionID,
			t.JournalID,
			t.AccountID,
			t.Description,
			t.Amount,
			t.CurrencyID,
			t.ForeignAmount,
			t.ForeignCurrencyID,
			t.Identifier,
			t.Reconciled,
			t.BudgetID,
			t.CategoryID,
			t.DeletedAt,
			t.CreatedAt,
			t.CreatedBy,
			t.LastUpdatedAt,
			t.LastUpdatedBy,
		)
	}
	// Close reports the first failing insert of the batch.
	if err := r.DB(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "transactions of journal "+txns[0].JournalID)
	}
	return nil
}

// UpdateTransaction rewrites one leg's account, amounts, currencies, budget and category.
func (r *PgxJournalRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $2,
		    description = $3,
		    amount = $4,
		    currency_id = $5,
		    foreign_amount = $6,
		    foreign_currency_id = $7,
		    budget_id = $8,
		    category_id = $9,
		    last_updated_at = $10,
		    last_updated_by = $11
		WHERE transaction_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.DB(ctx).Exec(ctx, query,
		txn.TransactionID,
		txn.AccountID,
		txn.Description,
		txn.Amount,
		txn.CurrencyID,
		txn.ForeignAmount,
		txn.ForeignCurrencyID,
		txn.BudgetID,
		txn.CategoryID,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "transaction "+txn.TransactionID)
	}
	return notFoundIfNone(tag, "transaction "+txn.TransactionID)
}

// SoftDeleteTransactions marks all live legs of a journal as deleted.
func (r *PgxJournalRepository) SoftDeleteTransactions(ctx context.Context, journalID string, at time.Time) error {
	_, err := r.DB(ctx).Exec(ctx,
		`UPDATE transactions SET deleted_at = $2, last_updated_at = $2 WHERE journal_id = $1 AND deleted_at IS NULL;`,
		journalID, at)
	if err != nil {
		return mapError(err, "transactions of journal "+journalID)
	}
	return nil
}

// SetReconciled sets the reconciled flag on the given legs.
func (r *PgxJournalRepository) SetReconciled(ctx context.Context, transactionIDs []string, reconciled bool) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	_, err := r.DB(ctx).Exec(ctx,
		`UPDATE transactions SET reconciled = $2 WHERE transaction_id = ANY($1);`,
		transactionIDs, reconciled)
	if err != nil {
		return mapError(err, "reconciled flag")
	}
	return nil
}
