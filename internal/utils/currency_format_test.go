package utils

import (
	"testing"

	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	eur := domain.Currency{Code: "EUR", Symbol: "€", DecimalPlaces: 2}
	jpy := domain.Currency{Code: "JPY", Symbol: "¥", DecimalPlaces: 0}
	german := FormatSettings{DecimalSeparator: ",", ThousandSeparator: ".", SymbolSpace: true}
	english := FormatSettings{DecimalSeparator: ".", ThousandSeparator: ",", SymbolFirst: true}

	tests := []struct {
		name     string
		currency domain.Currency
		amount   string
		settings FormatSettings
		want     string
	}{
		{"symbol first", eur, "1234.5", english, "€1,234.50"},
		{"symbol after with space", eur, "1234.5", german, "1.234,50 €"},
		{"rounds to currency places", eur, "0.125", english, "€0.13"},
		{"small amount", eur, "0.05", english, "€0.05"},
		{"negative leading sign", eur, "-12", english, "-€12.00"},
		{"negative after symbol", eur, "-12", FormatSettings{DecimalSeparator: ".", ThousandSeparator: ",", SymbolFirst: true, Sign: SignAfterSymbol}, "€-12.00"},
		{"negative in parentheses", eur, "-12", FormatSettings{DecimalSeparator: ".", ThousandSeparator: ",", SymbolFirst: true, Sign: SignParentheses}, "(€12.00)"},
		{"negative rounding to zero is not negative", eur, "-0.001", english, "€0.00"},
		{"no decimals", jpy, "1234567", english, "¥1,234,567"},
		{"code when no symbol", domain.Currency{Code: "XTS", DecimalPlaces: 2}, "3", german, "3,00 XTS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatAmount(tc.currency, decimal.RequireFromString(tc.amount), tc.settings)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDefaultFormatSettings(t *testing.T) {
	usd := DefaultFormatSettings("usd")
	assert.Equal(t, ".", usd.DecimalSeparator)
	assert.Equal(t, ",", usd.ThousandSeparator)
	assert.True(t, usd.SymbolFirst)

	unknown := DefaultFormatSettings("NOPE")
	assert.Equal(t, FormatSettings{DecimalSeparator: ".", ThousandSeparator: ",", SymbolFirst: true}, unknown)
}

func TestCurrencyFromCode(t *testing.T) {
	usd, ok := CurrencyFromCode("USD")
	require.True(t, ok)
	assert.Equal(t, "$", usd.Symbol)
	assert.Equal(t, 2, usd.DecimalPlaces)
	assert.Equal(t, "$1,234.50", FormatAmount(usd, decimal.RequireFromString("1234.5"), DefaultFormatSettings("USD")))

	_, ok = CurrencyFromCode("NOPE")
	assert.False(t, ok)
}
