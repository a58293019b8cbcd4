package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func stringPtr(s string) *string { return &s }

func leg(id string, identifier int, amount string) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		JournalID:     "journal_1",
		Identifier:    identifier,
		Amount:        decimal.RequireFromString(amount),
	}
}

func TestTransaction_IsMultiCurrency(t *testing.T) {
	tests := []struct {
		name        string
		transaction domain.Transaction
		want        bool
	}{
		{
			name:        "single currency",
			transaction: domain.Transaction{CurrencyID: "eur"},
			want:        false,
		},
		{
			name: "foreign pair present",
			transaction: domain.Transaction{
				CurrencyID:        "eur",
				ForeignAmount:     decimalPtr(decimal.NewFromInt(10)),
				ForeignCurrencyID: stringPtr("usd"),
			},
			want: true,
		},
		{
			name: "foreign currency equals primary",
			transaction: domain.Transaction{
				CurrencyID:        "eur",
				ForeignAmount:     decimalPtr(decimal.NewFromInt(10)),
				ForeignCurrencyID: stringPtr("eur"),
			},
			want: false,
		},
		{
			name: "missing foreign amount",
			transaction: domain.Transaction{
				CurrencyID:        "eur",
				ForeignCurrencyID: stringPtr("usd"),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.transaction.IsMultiCurrency())
		})
	}
}

func TestValidateBalance(t *testing.T) {
	tests := []struct {
		name    string
		legs    []domain.Transaction
		wantErr bool
	}{
		{
			name: "simple pair",
			legs: []domain.Transaction{leg("a", 0, "-50.00"), leg("b", 0, "50.00")},
		},
		{
			name: "split with high precision",
			legs: []domain.Transaction{
				leg("a", 0, "-10.000000000001"), leg("b", 0, "10.000000000001"),
				leg("c", 1, "-0.1"), leg("d", 1, "0.1"),
				leg("e", 2, "-0.2"), leg("f", 2, "0.2"),
			},
		},
		{
			name:    "single leg",
			legs:    []domain.Transaction{leg("a", 0, "-1")},
			wantErr: true,
		},
		{
			name:    "unbalanced",
			legs:    []domain.Transaction{leg("a", 0, "-50.00"), leg("b", 0, "49.99")},
			wantErr: true,
		},
		{
			name:    "both negative",
			legs:    []domain.Transaction{leg("a", 0, "-5"), leg("b", 0, "-5")},
			wantErr: true,
		},
		{
			name:    "zero leg",
			legs:    []domain.Transaction{leg("a", 0, "0"), leg("b", 0, "0")},
			wantErr: true,
		},
		{
			name:    "unsplit pair with different identifiers",
			legs:    []domain.Transaction{leg("a", 0, "-5"), leg("b", 1, "5")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateBalance(tt.legs)
			if tt.wantErr {
				var balanceErr *domain.BalanceError
				assert.ErrorAs(t, err, &balanceErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOpposingLeg(t *testing.T) {
	legs := []domain.Transaction{leg("a", 0, "-5"), leg("b", 0, "5"), leg("c", 1, "-7"), leg("d", 1, "7")}

	got, ok := domain.OpposingLeg(legs[2], legs)
	require.True(t, ok)
	assert.Equal(t, "d", got.TransactionID)

	_, ok = domain.OpposingLeg(leg("x", 3, "-1"), legs)
	assert.False(t, ok)
}

func TestJournal_TotalAndMeta(t *testing.T) {
	j := domain.Journal{Transactions: []domain.Transaction{
		leg("a", 0, "-30"), leg("b", 0, "30"), leg("c", 1, "-20.50"), leg("d", 1, "20.50"),
	}}
	assert.True(t, j.IsSplit())
	assert.Equal(t, "50.5", j.Total().String())

	date := time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC)
	j.SetMetaDate(domain.MetaBookDate, &date)
	got, ok := j.MetaDate(domain.MetaBookDate)
	require.True(t, ok)
	assert.Equal(t, domain.DateOnly(date), got)

	j.SetMetaDate(domain.MetaBookDate, nil)
	_, ok = j.MetaDate(domain.MetaBookDate)
	assert.False(t, ok)
}

func TestAccount_Roles(t *testing.T) {
	asset := domain.Account{AccountType: domain.Asset}
	expense := domain.Account{AccountType: domain.Expense}

	assert.True(t, asset.CanBeSource(domain.Withdrawal))
	assert.False(t, asset.CanBeDestination(domain.Withdrawal))
	assert.True(t, asset.CanBeDestination(domain.Transfer))
	assert.True(t, expense.CanBeDestination(domain.Withdrawal))
	assert.False(t, expense.CanBeSource(domain.Withdrawal))
	assert.False(t, expense.CanBeDestination(domain.Transfer))
}
