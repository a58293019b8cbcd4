package utils

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignPosition says where the minus of a negative amount goes.
type SignPosition int

const (
	SignLeading     SignPosition = iota // -€1.00
	SignAfterSymbol                     // €-1.00
	SignParentheses                     // (€1.00)
)

// FormatSettings are the monetary conventions of a locale.
type FormatSettings struct {
	DecimalSeparator  string
	ThousandSeparator string
	SymbolFirst       bool
	SymbolSpace       bool // space between symbol and number
	Sign              SignPosition
}

// DefaultFormatSettings returns the conventions go-money records for the currency code,
// or US-style conventions for codes it does not know.
func DefaultFormatSettings(code string) FormatSettings {
	settings := FormatSettings{DecimalSeparator: ".", ThousandSeparator: ",", SymbolFirst: true}
	if c := money.GetCurrency(strings.ToUpper(code)); c != nil {
		settings.DecimalSeparator = c.Decimal
		settings.ThousandSeparator = c.Thousand
		settings.SymbolFirst = strings.HasPrefix(c.Template, "$")
		settings.SymbolSpace = strings.Contains(c.Template, " ")
	}
	return settings
}

// CurrencyFromCode describes an ISO currency from the go-money registry.
func CurrencyFromCode(code string) (domain.Currency, bool) {
	c := money.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return domain.Currency{}, false
	}
	return domain.Currency{Code: c.Code, Symbol: c.Grapheme, Name: c.Code, DecimalPlaces: c.Fraction}, true
}

// FormatAmount renders amount in currency, rounded to the currency's decimal places.
// Amounts beyond the int64 range of minor units are not supported.
func FormatAmount(currency domain.Currency, amount decimal.Decimal, settings FormatSettings) string {
	places := currency.DecimalPlaces
	if places < 0 {
		places = 0
	}
	symbol := currency.Symbol
	if symbol == "" {
		symbol = currency.Code
	}

	space := ""
	if settings.SymbolSpace {
		space = " "
	}
	number := "1"
	rounded := amount.Round(int32(places))
	negative := rounded.IsNegative()
	if negative && settings.Sign == SignAfterSymbol {
		number = "-1"
	}
	template := number + space + "$"
	if settings.SymbolFirst {
		template = "$" + space + number
	}

	minor := rounded.Abs().Shift(int32(places)).IntPart()
	formatted := money.NewFormatter(places, settings.DecimalSeparator, settings.ThousandSeparator, symbol, template).Format(minor)

	if !negative {
		return formatted
	}
	switch settings.Sign {
	case SignAfterSymbol:
		return formatted
	case SignParentheses:
		return "(" + formatted + ")"
	default:
		return "-" + formatted
	}
}
