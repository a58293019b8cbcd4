package services

import (
	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NativeAmountInput is one submitted split with the native currencies of its accounts.
// An empty account currency means the account has none configured.
type NativeAmountInput struct {
	Type              domain.JournalType
	Amount            decimal.Decimal
	CurrencyID        string
	ForeignAmount     *decimal.Decimal
	ForeignCurrencyID *string
	NativeAmount      *decimal.Decimal
	SourceAmount      *decimal.Decimal
	DestinationAmount *decimal.Decimal

	SourceCurrencyID      string
	DestinationCurrencyID string
}

// NativeAmount is the primary and foreign pair a split is stored with.
type NativeAmount struct {
	Amount            decimal.Decimal
	CurrencyID        string
	ForeignAmount     *decimal.Decimal
	ForeignCurrencyID *string
}

// VerifyNativeAmount decides which submitted amount is stored in the account's native currency.
// The deciding account is the source for withdrawals and transfers and the destination for deposits.
// When the submitted currency is not native, the submitted pair becomes the foreign pair and the
// supplied native amount becomes primary. Transfers between accounts of different currencies store
// the source amount as primary and the destination amount as foreign.
// Missing amounts are reported in the returned bag under field.
func VerifyNativeAmount(in NativeAmountInput, field string) (NativeAmount, apperrors.MessageBag) {
	bag := apperrors.NewMessageBag()
	out := NativeAmount{
		Amount:            in.Amount,
		CurrencyID:        in.CurrencyID,
		ForeignAmount:     in.ForeignAmount,
		ForeignCurrencyID: in.ForeignCurrencyID,
	}

	crossCurrencyTransfer := in.Type == domain.Transfer &&
		in.SourceCurrencyID != "" && in.DestinationCurrencyID != "" &&
		in.SourceCurrencyID != in.DestinationCurrencyID

	if crossCurrencyTransfer {
		if in.SourceAmount == nil || !in.SourceAmount.IsPositive() {
			bag.Add(field+"source_amount", "transfers between currencies need the amount that left the source")
		}
		if in.DestinationAmount == nil || !in.DestinationAmount.IsPositive() {
			bag.Add(field+"destination_amount", "transfers between currencies need the amount that arrived")
		}
		if bag.IsEmpty() {
			destinationAmount, destinationCurrency := *in.DestinationAmount, in.DestinationCurrencyID
			out.Amount = *in.SourceAmount
			out.CurrencyID = in.SourceCurrencyID
			out.ForeignAmount = &destinationAmount
			out.ForeignCurrencyID = &destinationCurrency
		}
		return out, bag
	}

	nativeCurrencyID := in.SourceCurrencyID
	if in.Type == domain.Deposit {
		nativeCurrencyID = in.DestinationCurrencyID
	}

	if nativeCurrencyID != "" && in.CurrencyID != "" && in.CurrencyID != nativeCurrencyID {
		if in.NativeAmount == nil || !in.NativeAmount.IsPositive() {
			bag.Add(field+"native_amount", "an amount in the account's own currency is required")
			return out, bag
		}
		submitted, submittedCurrency := in.Amount, in.CurrencyID
		out.ForeignAmount = &submitted
		out.ForeignCurrencyID = &submittedCurrency
		out.Amount = *in.NativeAmount
		out.CurrencyID = nativeCurrencyID
	}

	if out.ForeignCurrencyID != nil && *out.ForeignCurrencyID == out.CurrencyID {
		out.ForeignAmount, out.ForeignCurrencyID = nil, nil
	}
	if (out.ForeignAmount == nil) != (out.ForeignCurrencyID == nil) {
		out.ForeignAmount, out.ForeignCurrencyID = nil, nil
	}
	return out, bag
}
