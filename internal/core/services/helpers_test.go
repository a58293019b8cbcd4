package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/fireledger/internal/core/amount"
	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/SscSPs/fireledger/internal/core/services"
)

const testUser = "user-1"

var testNow = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func clockOpt() services.ServiceOption { return services.WithClock(fixedClock) }

func dec(s string) decimal.Decimal { return amount.MustParse(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// eventRecorder collects every event dispatched to it.
type eventRecorder struct {
	events []domain.Event
}

func (r *eventRecorder) Handle(_ context.Context, event domain.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) subscribe(d *services.EventDispatcher) {
	d.Subscribe(domain.StoredTransactionJournal{}.EventName(), r)
	d.Subscribe(domain.UpdatedTransactionJournal{}.EventName(), r)
}
