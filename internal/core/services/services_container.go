package services

import (
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/platform/cache"
	"github.com/SscSPs/fireledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// A nil cache disables caching; a nil dispatcher gets a fresh one.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, c *cache.Cache, events *EventDispatcher) *portssvc.ServiceContainer {
	if events == nil {
		events = NewEventDispatcher()
	}
	opts := []ServiceOption{WithCache(c)}

	container := &portssvc.ServiceContainer{}
	container.Journal = NewJournalService(repos, events, opts...)
	container.Split = NewSplitAssembler(repos)
	container.Budget = NewBudgetService(repos, opts...)
	container.PiggyBank = NewPiggyBankService(repos, opts...)
	container.Import = NewImportService(repos, container.Journal, ImportSettings{
		DefaultAccountID:    cfg.ImportDefaultAccountID,
		DefaultCurrencyCode: cfg.DefaultCurrencyCode,
	}, opts...)

	// Piggy bank links follow stored and updated journals.
	NewPiggyBankLinker(container.PiggyBank).Subscribe(events)

	return container
}
