package services

import (
	"context"

	"github.com/SscSPs/fireledger/internal/core/domain"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
)

// PiggyBankLinker moves money into or out of the piggy bank named on a stored or updated journal.
type PiggyBankLinker struct {
	piggies portssvc.PiggyBankWriterSvc
}

// NewPiggyBankLinker creates the listener.
func NewPiggyBankLinker(piggies portssvc.PiggyBankWriterSvc) *PiggyBankLinker {
	return &PiggyBankLinker{piggies: piggies}
}

// Subscribe registers the linker for journal events on d.
func (l *PiggyBankLinker) Subscribe(d *EventDispatcher) {
	d.Subscribe(domain.StoredTransactionJournal{}.EventName(), l)
	d.Subscribe(domain.UpdatedTransactionJournal{}.EventName(), l)
}

func (l *PiggyBankLinker) Handle(ctx context.Context, event domain.Event) error {
	var (
		journal     domain.Journal
		piggyBankID *string
	)
	switch e := event.(type) {
	case domain.StoredTransactionJournal:
		journal, piggyBankID = e.Journal, e.PiggyBankID
	case domain.UpdatedTransactionJournal:
		journal, piggyBankID = e.Journal, e.PiggyBankID
	default:
		return nil
	}
	if !isSet(piggyBankID) {
		return nil
	}
	return l.piggies.LinkJournal(ctx, journal.UserID, *piggyBankID, &journal)
}
