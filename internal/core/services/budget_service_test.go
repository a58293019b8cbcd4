package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	portsrepo "github.com/SscSPs/fireledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/core/services"
	"github.com/SscSPs/fireledger/internal/dto"
)

type BudgetServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memStore
	service  portssvc.BudgetSvcFacade
	journals portssvc.JournalSvcFacade
	checking domain.Account
	budget   *domain.Budget
}

func (s *BudgetServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.store.addCurrency("cur-eur", "EUR", "€")
	s.checking = s.store.addAccount(testUser, "Checking", domain.Asset, "cur-eur")
	s.service = services.NewBudgetService(s.store.provider(), clockOpt())
	s.journals = services.NewJournalService(s.store.provider(), services.NewEventDispatcher(), clockOpt())

	var err error
	s.budget, err = s.service.CreateBudget(s.ctx, testUser, "Food")
	s.Require().NoError(err)
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}

func (s *BudgetServiceTestSuite) limitsFor(start, end time.Time) []domain.BudgetLimit {
	limits, err := s.store.FindLimitsForPeriod(s.ctx, s.budget.BudgetID, start, end)
	s.Require().NoError(err)
	return limits
}

func (s *BudgetServiceTestSuite) TestCreateBudget_DuplicateName() {
	_, err := s.service.CreateBudget(s.ctx, testUser, "Food")
	bag, ok := apperrors.MessagesOf(err)
	s.Require().True(ok)
	s.True(bag.Has("name"))
}

func (s *BudgetServiceTestSuite) TestUpdateLimitAmount_KeepsOneLimitPerPeriod() {
	start, end := date(2024, 1, 1), date(2024, 1, 31)

	_, err := s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, start, end, dec("200.00"))
	s.Require().NoError(err)
	limit, err := s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, start, end, dec("150.00"))
	s.Require().NoError(err)

	limits := s.limitsFor(start, end)
	s.Require().Len(limits, 1)
	s.True(dec("150.00").Equal(limits[0].Amount))
	s.Equal(limits[0].BudgetLimitID, limit.BudgetLimitID)
}

func (s *BudgetServiceTestSuite) TestUpdateLimitAmount_CollapsesExistingDuplicates() {
	start, end := date(2024, 2, 1), date(2024, 2, 29)
	for i, id := range []string{"old", "older", "newest"} {
		s.Require().NoError(s.store.SaveLimit(s.ctx, domain.BudgetLimit{
			BudgetLimitID: id, BudgetID: s.budget.BudgetID, StartDate: start, EndDate: end,
			Amount: decimal.NewFromInt(int64(10 * (i + 1))),
		}))
	}

	limit, err := s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, start, end, dec("99"))
	s.Require().NoError(err)

	limits := s.limitsFor(start, end)
	s.Require().Len(limits, 1)
	s.Equal("newest", limits[0].BudgetLimitID)
	s.Equal("newest", limit.BudgetLimitID)
	s.True(dec("99").Equal(limits[0].Amount))
}

func (s *BudgetServiceTestSuite) TestUpdateLimitAmount_NonPositiveDeletes() {
	start, end := date(2024, 1, 1), date(2024, 1, 31)
	_, err := s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, start, end, dec("200"))
	s.Require().NoError(err)

	limit, err := s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, start, end, dec("0"))
	s.Require().NoError(err)
	s.Nil(limit)
	s.Empty(s.limitsFor(start, end))

	limit, err = s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, start, end, dec("-5"))
	s.Require().NoError(err)
	s.Nil(limit)
	s.Empty(s.limitsFor(start, end))
}

func (s *BudgetServiceTestSuite) TestUpdateLimitAmount_UnknownBudget() {
	_, err := s.service.UpdateLimitAmount(s.ctx, testUser, "missing", date(2024, 1, 1), date(2024, 1, 31), dec("1"))
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.service.UpdateLimitAmount(s.ctx, "someone-else", s.budget.BudgetID, date(2024, 1, 1), date(2024, 1, 31), dec("1"))
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *BudgetServiceTestSuite) TestSpentInPeriod() {
	store := func(jt domain.JournalType, day int, amt string, budgetID *string) {
		split := dto.SplitRequest{Amount: dec(amt), CurrencyID: "cur-eur", BudgetID: budgetID}
		if jt == domain.Withdrawal {
			split.SourceID, split.DestinationName = strPtr(s.checking.AccountID), strPtr("Shop")
		} else {
			split.SourceName, split.DestinationID = strPtr("Employer"), strPtr(s.checking.AccountID)
		}
		_, err := s.journals.Store(s.ctx, testUser, dto.StoreJournalRequest{
			Type: jt, Description: "x", Date: date(2024, 1, day), Transactions: []dto.SplitRequest{split},
		})
		s.Require().NoError(err)
	}
	store(domain.Withdrawal, 5, "20.00", &s.budget.BudgetID)
	store(domain.Withdrawal, 31, "5.50", &s.budget.BudgetID)
	store(domain.Withdrawal, 6, "100.00", nil)
	store(domain.Deposit, 7, "1000.00", nil)

	spent, err := s.service.SpentInPeriod(s.ctx, testUser, []string{s.budget.BudgetID}, nil, date(2024, 1, 1), date(2024, 1, 31))
	s.Require().NoError(err)
	s.True(dec("-25.50").Equal(spent), "got %s", spent)

	spent, err = s.service.SpentInPeriod(s.ctx, testUser, []string{s.budget.BudgetID}, nil, date(2024, 1, 6), date(2024, 1, 30))
	s.Require().NoError(err)
	s.True(spent.IsZero())
}

func (s *BudgetServiceTestSuite) TestBudgetedPerDay() {
	s.Require().NoError(s.store.SaveLimit(s.ctx, domain.BudgetLimit{
		BudgetLimitID: "a", BudgetID: s.budget.BudgetID, StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 11), Amount: dec("100"),
	}))
	s.Require().NoError(s.store.SaveLimit(s.ctx, domain.BudgetLimit{
		BudgetLimitID: "b", BudgetID: s.budget.BudgetID, StartDate: date(2024, 2, 1), EndDate: date(2024, 2, 1), Amount: dec("30"),
	}))

	perDay, err := s.service.BudgetedPerDay(s.ctx, testUser, s.budget.BudgetID)
	s.Require().NoError(err)
	// (100/10 + 30/1) / 2
	s.True(dec("20").Equal(perDay), "got %s", perDay)
}

func (s *BudgetServiceTestSuite) TestCollectBudgetInformation() {
	start, end := date(2024, 1, 1), date(2024, 1, 31)
	current, err := s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, start, end, dec("300"))
	s.Require().NoError(err)
	_, err = s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, date(2023, 12, 15), date(2024, 1, 14), dec("50"))
	s.Require().NoError(err)
	_, err = s.service.UpdateLimitAmount(s.ctx, testUser, s.budget.BudgetID, date(2024, 3, 1), date(2024, 3, 31), dec("70"))
	s.Require().NoError(err)

	info, err := s.service.CollectBudgetInformation(s.ctx, testUser, start, end)
	s.Require().NoError(err)

	s.Require().Len(info, 1)
	s.Require().NotNil(info[0].Current)
	s.Equal(current.BudgetLimitID, info[0].Current.BudgetLimitID)
	s.Require().Len(info[0].Other, 1)
	s.True(dec("50").Equal(info[0].Other[0].Amount))
	s.True(info[0].Spent.IsZero())
}

func (s *BudgetServiceTestSuite) TestCleanupBudgets() {
	start, end := date(2024, 1, 1), date(2024, 1, 31)
	for _, l := range []domain.BudgetLimit{
		{BudgetLimitID: "zero", Amount: dec("0"), StartDate: date(2024, 2, 1), EndDate: date(2024, 2, 29)},
		{BudgetLimitID: "first", Amount: dec("10"), StartDate: start, EndDate: end},
		{BudgetLimitID: "second", Amount: dec("20"), StartDate: start, EndDate: end},
	} {
		l.BudgetID = s.budget.BudgetID
		s.Require().NoError(s.store.SaveLimit(s.ctx, l))
	}

	deleted, err := s.service.CleanupBudgets(s.ctx, testUser)
	s.Require().NoError(err)
	s.Equal(2, deleted)

	s.Require().Len(s.store.limits, 1)
	_, kept := s.store.limits["second"]
	s.True(kept, "the newest limit of a period survives")

	deleted, err = s.service.CleanupBudgets(s.ctx, testUser)
	s.Require().NoError(err)
	s.Zero(deleted)
}

func (s *BudgetServiceTestSuite) TestAvailableBudget() {
	start, end := date(2024, 1, 1), date(2024, 1, 31)
	first, err := s.service.SetAvailableBudget(s.ctx, testUser, "cur-eur", start, end, dec("1000"))
	s.Require().NoError(err)
	second, err := s.service.SetAvailableBudget(s.ctx, testUser, "cur-eur", start, end, dec("1200"))
	s.Require().NoError(err)
	s.Equal(first.AvailableBudgetID, second.AvailableBudgetID)

	got, err := s.service.GetAvailableBudget(s.ctx, testUser, "cur-eur", start, end)
	s.Require().NoError(err)
	s.True(dec("1200").Equal(got.Amount))

	_, err = s.service.SetAvailableBudget(s.ctx, testUser, "cur-eur", start, end, dec("-1"))
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestPerDay(t *testing.T) {
	perDay, err := services.PerDay(nil)
	require.NoError(t, err)
	assert.True(t, perDay.IsZero())

	perDay, err = services.PerDay([]domain.BudgetLimit{{StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 1), Amount: dec("7")}})
	require.NoError(t, err)
	assert.True(t, dec("7").Equal(perDay), "a zero-day limit counts as one day")
}

func TestDuplicateOrEmptyLimits(t *testing.T) {
	jan := func(id, amt string) domain.BudgetLimit {
		return domain.BudgetLimit{BudgetLimitID: id, BudgetID: "b", StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 31), Amount: dec(amt)}
	}
	ids := services.DuplicateOrEmptyLimits([]domain.BudgetLimit{jan("n3", "0"), jan("n2", "5"), jan("n1", "6")})
	assert.Equal(t, []string{"n3", "n1"}, ids)
}

// --- Mock BudgetRepository ---
type MockBudgetRepository struct {
	mock.Mock
}

var _ portsrepo.BudgetRepositoryFacade = (*MockBudgetRepository)(nil)

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, userID string, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, userID, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindBudgetsByName(ctx context.Context, userID string, name string) ([]domain.Budget, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	return m.Called(ctx, budget).Error(0)
}

func (m *MockBudgetRepository) FindLimitsForPeriod(ctx context.Context, budgetID string, start, end time.Time) ([]domain.BudgetLimit, error) {
	args := m.Called(ctx, budgetID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetLimit), args.Error(1)
}

func (m *MockBudgetRepository) ListLimitsByBudget(ctx context.Context, budgetID string) ([]domain.BudgetLimit, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetLimit), args.Error(1)
}

func (m *MockBudgetRepository) ListLimitsByUser(ctx context.Context, userID string) ([]domain.BudgetLimit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetLimit), args.Error(1)
}

func (m *MockBudgetRepository) SaveLimit(ctx context.Context, limit domain.BudgetLimit) error {
	return m.Called(ctx, limit).Error(0)
}

func (m *MockBudgetRepository) UpdateLimit(ctx context.Context, limit domain.BudgetLimit) error {
	return m.Called(ctx, limit).Error(0)
}

func (m *MockBudgetRepository) DeleteLimits(ctx context.Context, limitIDs []string) error {
	return m.Called(ctx, limitIDs).Error(0)
}

func (m *MockBudgetRepository) FindAvailableBudget(ctx context.Context, userID, currencyID string, start, end time.Time) (*domain.AvailableBudget, error) {
	args := m.Called(ctx, userID, currencyID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailableBudget), args.Error(1)
}

func (m *MockBudgetRepository) SaveAvailableBudget(ctx context.Context, available domain.AvailableBudget) error {
	return m.Called(ctx, available).Error(0)
}

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestUpdateLimitAmount_StorageFailure(t *testing.T) {
	repo := new(MockBudgetRepository)
	service := services.NewBudgetService(portsrepo.RepositoryProvider{TxManager: passthroughTx{}, BudgetRepo: repo}, clockOpt())
	ctx := context.Background()
	start, end := date(2024, 1, 1), date(2024, 1, 31)
	dbErr := errors.New("connection reset")

	repo.On("FindBudgetByID", ctx, testUser, "budget-1").Return(&domain.Budget{BudgetID: "budget-1", UserID: testUser}, nil)
	repo.On("FindLimitsForPeriod", ctx, "budget-1", start, end).Return(nil, dbErr)

	limit, err := service.UpdateLimitAmount(ctx, testUser, "budget-1", start, end, dec("10"))

	assert.Nil(t, limit)
	assert.ErrorIs(t, err, dbErr)
	repo.AssertNotCalled(t, "SaveLimit", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestCleanupBudgets_DeletesInOneCall(t *testing.T) {
	repo := new(MockBudgetRepository)
	service := services.NewBudgetService(portsrepo.RepositoryProvider{TxManager: passthroughTx{}, BudgetRepo: repo}, clockOpt())
	ctx := context.Background()

	repo.On("ListLimitsByUser", ctx, testUser).Return([]domain.BudgetLimit{
		{BudgetLimitID: "keep", BudgetID: "b", StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 31), Amount: dec("5")},
		{BudgetLimitID: "dup", BudgetID: "b", StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 31), Amount: dec("9")},
	}, nil)
	repo.On("DeleteLimits", ctx, []string{"dup"}).Return(nil)

	deleted, err := service.CleanupBudgets(ctx, testUser)

	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	repo.AssertExpectations(t)
}
