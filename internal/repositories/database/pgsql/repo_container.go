package pgsql

import (
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	txManager := newPgxTxManager(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:    txManager,
		AccountRepo:  newPgxAccountRepository(dbPool),
		CurrencyRepo: newPgxCurrencyRepository(dbPool),
		JournalRepo:  newPgxJournalRepository(dbPool, txManager),
		BudgetRepo:   newPgxBudgetRepository(dbPool),
		CategoryRepo: newPgxCategoryRepository(dbPool),
		PiggyRepo:    newPgxPiggyBankRepository(dbPool, txManager),
	}
}
