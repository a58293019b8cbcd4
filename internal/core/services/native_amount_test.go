package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/SscSPs/fireledger/internal/core/services"
	"github.com/SscSPs/fireledger/internal/dto"
)

func TestVerifyNativeAmount(t *testing.T) {
	tests := []struct {
		name            string
		in              services.NativeAmountInput
		expectAmount    string
		expectCurrency  string
		expectForeign   string // empty means no foreign pair
		expectForeignID string
		expectBagField  string
	}{
		{
			name: "native currency is kept",
			in: services.NativeAmountInput{
				Type: domain.Withdrawal, Amount: dec("10"), CurrencyID: "eur", SourceCurrencyID: "eur",
			},
			expectAmount: "10", expectCurrency: "eur",
		},
		{
			name: "deposit decides by the destination",
			in: services.NativeAmountInput{
				Type: domain.Deposit, Amount: dec("100"), CurrencyID: "eur", NativeAmount: decPtr("108.50"),
				SourceCurrencyID: "eur", DestinationCurrencyID: "usd",
			},
			expectAmount: "108.50", expectCurrency: "usd", expectForeign: "100", expectForeignID: "eur",
		},
		{
			name: "missing native amount is reported",
			in: services.NativeAmountInput{
				Type: domain.Withdrawal, Amount: dec("10"), CurrencyID: "usd", SourceCurrencyID: "eur",
			},
			expectAmount: "10", expectCurrency: "usd", expectBagField: "0.native_amount",
		},
		{
			name: "cross-currency transfer stores source and destination amounts",
			in: services.NativeAmountInput{
				Type: domain.Transfer, Amount: dec("1"), CurrencyID: "eur",
				SourceAmount: decPtr("50"), DestinationAmount: decPtr("54.10"),
				SourceCurrencyID: "eur", DestinationCurrencyID: "usd",
			},
			expectAmount: "50", expectCurrency: "eur", expectForeign: "54.10", expectForeignID: "usd",
		},
		{
			name: "cross-currency transfer without destination amount",
			in: services.NativeAmountInput{
				Type: domain.Transfer, Amount: dec("50"), CurrencyID: "eur", SourceAmount: decPtr("50"),
				SourceCurrencyID: "eur", DestinationCurrencyID: "usd",
			},
			expectAmount: "50", expectCurrency: "eur", expectBagField: "0.destination_amount",
		},
		{
			name: "foreign pair in the primary currency is dropped",
			in: services.NativeAmountInput{
				Type: domain.Withdrawal, Amount: dec("10"), CurrencyID: "eur",
				ForeignAmount: decPtr("10"), ForeignCurrencyID: strPtr("eur"), SourceCurrencyID: "eur",
			},
			expectAmount: "10", expectCurrency: "eur",
		},
		{
			name: "half a foreign pair is dropped",
			in: services.NativeAmountInput{
				Type: domain.Withdrawal, Amount: dec("10"), CurrencyID: "eur", ForeignAmount: decPtr("11"),
			},
			expectAmount: "10", expectCurrency: "eur",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, bag := services.VerifyNativeAmount(tt.in, "0.")

			if tt.expectBagField != "" {
				assert.True(t, bag.Has(tt.expectBagField), "bag: %v", bag)
			} else {
				assert.True(t, bag.IsEmpty(), "bag: %v", bag)
			}
			assert.True(t, dec(tt.expectAmount).Equal(out.Amount), "amount %s", out.Amount)
			assert.Equal(t, tt.expectCurrency, out.CurrencyID)
			if tt.expectForeign == "" {
				assert.Nil(t, out.ForeignAmount)
				assert.Nil(t, out.ForeignCurrencyID)
				return
			}
			require.NotNil(t, out.ForeignAmount)
			require.NotNil(t, out.ForeignCurrencyID)
			assert.True(t, dec(tt.expectForeign).Equal(*out.ForeignAmount))
			assert.Equal(t, tt.expectForeignID, *out.ForeignCurrencyID)
		})
	}
}

func TestStore_DepositInForeignCurrency(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addCurrency("cur-eur", "EUR", "€")
	store.addCurrency("cur-usd", "USD", "$")
	dollars := store.addAccount(testUser, "Dollar account", domain.Asset, "cur-usd")
	service := services.NewJournalService(store.provider(), services.NewEventDispatcher(), clockOpt())

	journal, err := service.Store(ctx, testUser, dto.StoreJournalRequest{
		Type: domain.Deposit, Description: "Refund", Date: date(2024, 1, 10),
		Transactions: []dto.SplitRequest{{
			Amount: dec("100.00"), CurrencyID: "cur-eur", NativeAmount: decPtr("108.50"),
			SourceName: strPtr("Webshop"), DestinationID: strPtr(dollars.AccountID),
		}},
	})
	require.NoError(t, err)

	require.Len(t, journal.Transactions, 2)
	for _, leg := range journal.Transactions {
		assert.Equal(t, "cur-usd", leg.CurrencyID)
		assert.True(t, dec("108.50").Equal(leg.Amount.Abs()))
		require.NotNil(t, leg.ForeignCurrencyID)
		assert.Equal(t, "cur-eur", *leg.ForeignCurrencyID)
		assert.True(t, dec("100").Equal(leg.ForeignAmount.Abs()))
	}

	balance, err := store.GetAccountBalance(ctx, dollars.AccountID, date(2024, 1, 31))
	require.NoError(t, err)
	assert.True(t, dec("108.50").Equal(balance))
}
