package domain

// Currency represents a transaction currency. Rows referenced by legs are never edited.
type Currency struct {
	CurrencyID    string `json:"currencyID"`
	Code          string `json:"code"`   // ISO code, e.g. "EUR"
	Symbol        string `json:"symbol"` // e.g. "€"
	Name          string `json:"name"`
	DecimalPlaces int    `json:"decimalPlaces"`
	AuditFields
}
