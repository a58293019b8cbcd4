package domain

// Event is something that happened to the ledger after a successful commit.
type Event interface {
	EventName() string
}

// StoredTransactionJournal is emitted after a journal is created.
type StoredTransactionJournal struct {
	Journal     Journal
	PiggyBankID *string
}

func (StoredTransactionJournal) EventName() string { return "stored_transaction_journal" }

// UpdatedTransactionJournal is emitted after a journal is updated.
type UpdatedTransactionJournal struct {
	Journal     Journal
	PiggyBankID *string
}

func (UpdatedTransactionJournal) EventName() string { return "updated_transaction_journal" }
