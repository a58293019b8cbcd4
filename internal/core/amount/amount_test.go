package amount_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/fireledger/internal/apperrors"
	"github.com/SscSPs/fireledger/internal/core/amount"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "50.00", want: "50"},
		{name: "negative", in: "-12.345", want: "-12.345"},
		{name: "padded", in: "  7.1 ", want: "7.1"},
		{name: "empty is zero", in: "", want: "0"},
		{name: "garbage", in: "12,50", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amount.Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrArithmetic)
				return
			}
			require.NoError(t, err)
			assert.True(t, amount.MustParse(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestNoFloatingPointDrift(t *testing.T) {
	total := decimal.Zero
	for i := 0; i < 10; i++ {
		total = amount.Add(total, amount.MustParse("0.1"))
	}
	assert.Equal(t, 0, amount.Cmp(total, amount.MustParse("1")))
}

func TestDiv(t *testing.T) {
	got, err := amount.Div(amount.MustParse("100"), amount.MustParse("3"))
	require.NoError(t, err)
	assert.Equal(t, "33.333333333333", got.String())

	_, err = amount.Div(amount.MustParse("1"), amount.MustParse("0.0000000000001"))
	var divErr *amount.DivisionByZeroError
	require.True(t, errors.As(err, &divErr))
	assert.ErrorIs(t, err, apperrors.ErrArithmetic)
}

func TestSignHelpers(t *testing.T) {
	assert.Equal(t, "5", amount.Positive(amount.MustParse("-5")).String())
	assert.Equal(t, "-5", amount.Negative(amount.MustParse("5")).String())
	assert.Equal(t, "-5", amount.Negative(amount.MustParse("-5")).String())
	assert.Equal(t, "2", amount.Min(amount.MustParse("2"), amount.MustParse("3")).String())
	assert.Equal(t, "6", amount.Sum(amount.MustParse("1"), amount.MustParse("2"), amount.MustParse("3")).String())
	assert.Equal(t, -1, amount.Cmp(amount.MustParse("1.5"), amount.MustParse("1.50001")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "50.00", amount.Format(amount.MustParse("50"), 2))
	assert.Equal(t, "13", amount.Format(amount.MustParse("12.5"), 0))
	assert.Equal(t, "-0.125", amount.Format(amount.MustParse("-0.125"), 3))
}
