package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/core/services"
	"github.com/SscSPs/fireledger/internal/dto"
)

type PiggyBankServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memStore
	service  portssvc.PiggyBankSvcFacade
	journals portssvc.JournalSvcFacade
	checking domain.Account
}

func (s *PiggyBankServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.store.addCurrency("cur-eur", "EUR", "€")
	s.checking = s.store.addAccount(testUser, "Checking", domain.Asset, "cur-eur")

	events := services.NewEventDispatcher()
	s.service = services.NewPiggyBankService(s.store.provider(), clockOpt())
	s.journals = services.NewJournalService(s.store.provider(), events, clockOpt())
	services.NewPiggyBankLinker(s.service).Subscribe(events)
}

func TestPiggyBankServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PiggyBankServiceTestSuite))
}

func (s *PiggyBankServiceTestSuite) deposit(amt string, piggyBankID *string) {
	_, err := s.journals.Store(s.ctx, testUser, dto.StoreJournalRequest{
		Type: domain.Deposit, Description: "Salary", Date: date(2024, 1, 10), PiggyBankID: piggyBankID,
		Transactions: []dto.SplitRequest{{
			Amount: dec(amt), CurrencyID: "cur-eur", SourceName: strPtr("Employer"), DestinationID: strPtr(s.checking.AccountID),
		}},
	})
	s.Require().NoError(err)
}

func (s *PiggyBankServiceTestSuite) withdraw(amt string, piggyBankID *string) {
	_, err := s.journals.Store(s.ctx, testUser, dto.StoreJournalRequest{
		Type: domain.Withdrawal, Description: "Bike", Date: date(2024, 1, 12), PiggyBankID: piggyBankID,
		Transactions: []dto.SplitRequest{{
			Amount: dec(amt), CurrencyID: "cur-eur", SourceID: strPtr(s.checking.AccountID), DestinationName: strPtr("Bike shop"),
		}},
	})
	s.Require().NoError(err)
}

func (s *PiggyBankServiceTestSuite) createPiggy(target string) *domain.PiggyBank {
	start := date(2024, 1, 1)
	piggy, err := s.service.CreatePiggyBank(s.ctx, testUser, dto.CreatePiggyBankRequest{
		AccountID: s.checking.AccountID, Name: "New bike", TargetAmount: dec(target), StartDate: &start,
	})
	s.Require().NoError(err)
	return piggy
}

func (s *PiggyBankServiceTestSuite) saved(piggy *domain.PiggyBank) string {
	r, err := s.store.FindRepetition(s.ctx, piggy.PiggyBankID, testNow)
	s.Require().NoError(err)
	return r.CurrentAmount.StringFixed(2)
}

func (s *PiggyBankServiceTestSuite) TestCreatePiggyBank() {
	s.createPiggy("100")
	second := s.createPiggy("50")
	s.Equal(2, second.Order)
	s.Len(s.store.repetitions, 2)
	s.Equal("0.00", s.saved(second))
}

func (s *PiggyBankServiceTestSuite) TestCreatePiggyBank_Rejections() {
	expense := s.store.addAccount(testUser, "Groceries", domain.Expense, "cur-eur")

	_, err := s.service.CreatePiggyBank(s.ctx, testUser, dto.CreatePiggyBankRequest{AccountID: expense.AccountID, Name: "x", TargetAmount: dec("10")})
	bag, ok := apperrors.MessagesOf(err)
	s.Require().True(ok)
	s.True(bag.Has("accountID"))

	_, err = s.service.CreatePiggyBank(s.ctx, testUser, dto.CreatePiggyBankRequest{AccountID: s.checking.AccountID, Name: " ", TargetAmount: dec("0")})
	bag, ok = apperrors.MessagesOf(err)
	s.Require().True(ok)
	s.True(bag.Has("name"))
	s.True(bag.Has("targetAmount"))
	s.Empty(s.store.piggies)
}

func (s *PiggyBankServiceTestSuite) TestCanAddAmount_RespectsTarget() {
	s.deposit("1000.00", nil)
	piggy := s.createPiggy("100.00")
	s.Require().NoError(s.service.AddAmount(s.ctx, testUser, piggy.PiggyBankID, dec("80.00")))

	ok, err := s.service.CanAddAmount(s.ctx, piggy, dec("30.00"))
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.service.CanAddAmount(s.ctx, piggy, dec("20.00"))
	s.Require().NoError(err)
	s.True(ok)
}

func (s *PiggyBankServiceTestSuite) TestCanAddAmount_RespectsAccountBalance() {
	s.deposit("50.00", nil)
	piggy := s.createPiggy("100.00")
	other := s.createPiggy("40.00")
	s.Require().NoError(s.service.AddAmount(s.ctx, testUser, other.PiggyBankID, dec("30.00")))

	// 50 on the account, 30 already set aside elsewhere.
	ok, err := s.service.CanAddAmount(s.ctx, piggy, dec("20.01"))
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.service.CanAddAmount(s.ctx, piggy, dec("20.00"))
	s.Require().NoError(err)
	s.True(ok)
}

func (s *PiggyBankServiceTestSuite) TestAddAndRemoveAmount() {
	s.deposit("500.00", nil)
	piggy := s.createPiggy("100.00")

	s.Require().NoError(s.service.AddAmount(s.ctx, testUser, piggy.PiggyBankID, dec("60.00")))
	err := s.service.AddAmount(s.ctx, testUser, piggy.PiggyBankID, dec("60.00"))
	bag, ok := apperrors.MessagesOf(err)
	s.Require().True(ok)
	s.True(bag.Has("amount"))
	s.Equal("60.00", s.saved(piggy))

	err = s.service.RemoveAmount(s.ctx, testUser, piggy.PiggyBankID, dec("60.01"))
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Require().NoError(s.service.RemoveAmount(s.ctx, testUser, piggy.PiggyBankID, dec("25.00")))
	s.Equal("35.00", s.saved(piggy))

	events, err := s.service.ListEvents(s.ctx, testUser, piggy.PiggyBankID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.True(dec("60").Equal(events[0].Amount))
	s.True(dec("-25").Equal(events[1].Amount))

	s.ErrorIs(s.service.AddAmount(s.ctx, testUser, piggy.PiggyBankID, dec("-1")), apperrors.ErrValidation)
}

func (s *PiggyBankServiceTestSuite) TestCanAddAndRemove_WithoutRepetition() {
	s.deposit("500.00", nil)
	start := date(2024, 3, 1)
	piggy, err := s.service.CreatePiggyBank(s.ctx, testUser, dto.CreatePiggyBankRequest{
		AccountID: s.checking.AccountID, Name: "Later", TargetAmount: dec("100"), StartDate: &start,
	})
	s.Require().NoError(err)

	ok, err := s.service.CanAddAmount(s.ctx, piggy, dec("1"))
	s.NoError(err)
	s.False(ok)
	ok, err = s.service.CanRemoveAmount(s.ctx, piggy, dec("0"))
	s.NoError(err)
	s.False(ok)
}

func (s *PiggyBankServiceTestSuite) TestUpdatePiggyBank_LowerTargetRecordsCorrection() {
	s.deposit("500.00", nil)
	piggy := s.createPiggy("100.00")
	s.Require().NoError(s.service.AddAmount(s.ctx, testUser, piggy.PiggyBankID, dec("80.00")))

	updated, err := s.service.UpdatePiggyBank(s.ctx, testUser, piggy.PiggyBankID, dto.UpdatePiggyBankRequest{TargetAmount: decPtr("50.00")})
	s.Require().NoError(err)
	s.True(dec("50").Equal(updated.TargetAmount))
	s.Equal("50.00", s.saved(piggy))

	last := s.store.events[len(s.store.events)-1]
	s.True(dec("-30").Equal(last.Amount))
	s.Nil(last.JournalID)
}

func (s *PiggyBankServiceTestSuite) TestGetPiggyBanksWithAmount() {
	s.deposit("500.00", nil)
	piggy := s.createPiggy("100.00")
	s.Require().NoError(s.service.AddAmount(s.ctx, testUser, piggy.PiggyBankID, dec("40.00")))

	list, err := s.service.GetPiggyBanksWithAmount(s.ctx, testUser)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.True(dec("40").Equal(list[0].SavedSoFar))
	s.True(dec("60").Equal(list[0].LeftToSave))
}

func (s *PiggyBankServiceTestSuite) TestListEvents_OtherUser() {
	piggy := s.createPiggy("100.00")
	_, err := s.service.ListEvents(s.ctx, "someone-else", piggy.PiggyBankID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PiggyBankServiceTestSuite) TestStoredJournalLinksPiggyBank() {
	piggy := s.createPiggy("100.00")

	s.deposit("30.00", &piggy.PiggyBankID)
	s.Equal("30.00", s.saved(piggy))

	// Deposits beyond the target are clamped to the room left.
	s.deposit("500.00", &piggy.PiggyBankID)
	s.Equal("100.00", s.saved(piggy))

	// Withdrawals are clamped to what is saved.
	s.withdraw("250.00", &piggy.PiggyBankID)
	s.Equal("0.00", s.saved(piggy))

	events, err := s.service.ListEvents(s.ctx, testUser, piggy.PiggyBankID)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	for _, e := range events {
		s.NotNil(e.JournalID)
	}
	s.True(dec("70").Equal(events[1].Amount))
	s.True(dec("-100").Equal(events[2].Amount))
}

func (s *PiggyBankServiceTestSuite) TestUpdatedJournalDoesNotLinkTwice() {
	piggy := s.createPiggy("100.00")
	journal, err := s.journals.Store(s.ctx, testUser, dto.StoreJournalRequest{
		Type: domain.Deposit, Description: "Salary", Date: date(2024, 1, 10), PiggyBankID: &piggy.PiggyBankID,
		Transactions: []dto.SplitRequest{{
			Amount: dec("30.00"), CurrencyID: "cur-eur", SourceName: strPtr("Employer"), DestinationID: strPtr(s.checking.AccountID),
		}},
	})
	s.Require().NoError(err)
	s.Equal("30.00", s.saved(piggy))

	_, err = s.journals.Update(s.ctx, testUser, journal.JournalID, dto.UpdateJournalRequest{
		Description: strPtr("Salary January"), PiggyBankID: &piggy.PiggyBankID,
	})
	s.Require().NoError(err)
	s.Equal("30.00", s.saved(piggy))

	events, err := s.service.ListEvents(s.ctx, testUser, piggy.PiggyBankID)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PiggyBankServiceTestSuite) TestUpdatedJournalLinksOnlyTheDifference() {
	piggy := s.createPiggy("100.00")
	journal, err := s.journals.Store(s.ctx, testUser, dto.StoreJournalRequest{
		Type: domain.Deposit, Description: "Salary", Date: date(2024, 1, 10), PiggyBankID: &piggy.PiggyBankID,
		Transactions: []dto.SplitRequest{{
			Amount: dec("30.00"), CurrencyID: "cur-eur", SourceName: strPtr("Employer"), DestinationID: strPtr(s.checking.AccountID),
		}},
	})
	s.Require().NoError(err)

	_, err = s.journals.Update(s.ctx, testUser, journal.JournalID, dto.UpdateJournalRequest{
		PiggyBankID: &piggy.PiggyBankID,
		Transactions: []dto.SplitRequest{{
			Amount: dec("45.00"), CurrencyID: "cur-eur",
		}},
	})
	s.Require().NoError(err)
	s.Equal("45.00", s.saved(piggy))

	events, err := s.service.ListEvents(s.ctx, testUser, piggy.PiggyBankID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	total := dec("0")
	for _, e := range events {
		total = total.Add(e.Amount)
	}
	s.True(dec("45").Equal(total))
}

func (s *PiggyBankServiceTestSuite) TestLinkJournal_UnknownPiggyBankIsIgnored() {
	s.deposit("30.00", strPtr("no-such-piggy"))
	s.Empty(s.store.events)
}

func TestExactPiggyAmount(t *testing.T) {
	piggy := &domain.PiggyBank{PiggyBankID: "p", AccountID: "acc-Checking", TargetAmount: dec("100")}
	rep := &domain.PiggyBankRepetition{PiggyBankID: "p", CurrentAmount: dec("80")}
	journal := func(legs ...domain.Transaction) *domain.Journal {
		return &domain.Journal{Transactions: legs}
	}

	tests := []struct {
		name     string
		journal  *domain.Journal
		expected string
	}{
		{
			name: "deposit within room",
			journal: journal(
				domain.Transaction{AccountID: "acc-Employer", Amount: dec("-15")},
				domain.Transaction{AccountID: "acc-Checking", Amount: dec("15")},
			),
			expected: "15",
		},
		{
			name: "deposit clamped to room",
			journal: journal(
				domain.Transaction{AccountID: "acc-Employer", Amount: dec("-50")},
				domain.Transaction{AccountID: "acc-Checking", Amount: dec("50")},
			),
			expected: "20",
		},
		{
			name: "withdrawal clamped to saved amount",
			journal: journal(
				domain.Transaction{AccountID: "acc-Checking", Amount: dec("-500")},
				domain.Transaction{AccountID: "acc-Shop", Amount: dec("500")},
			),
			expected: "-80",
		},
		{
			name: "unrelated accounts move nothing",
			journal: journal(
				domain.Transaction{AccountID: "acc-Savings", Amount: dec("-10")},
				domain.Transaction{AccountID: "acc-Shop", Amount: dec("10")},
			),
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.ExactPiggyAmount(piggy, rep, tt.journal)
			assert.True(t, dec(tt.expected).Equal(got), "got %s", got)
		})
	}
}
