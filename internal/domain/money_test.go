package domain_test

import (
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		want      string
		wantError bool
	}{
		{name: "plain price: ok", price: "R$ 89,90", want: "89.90"},
		{name: "thousands separator: ok", price: "R$ 1.234,50", want: "1234.50"},
		{name: "millions: ok", price: "R$ 1.234.567,89", want: "1234567.89"},
		{name: "non-breaking space: ok", price: "R$\u00a010,00", want: "10"},
		{name: "no symbol: ok", price: " 5,5 ", want: "5.5"},
		{name: "integer: ok", price: "R$ 20", want: "20"},
		{name: "empty: error", price: "", wantError: true},
		{name: "garbage: error", price: "R$ abc", wantError: true},
		{name: "negative: error", price: "R$ -5,00", wantError: true},
		{name: "explicit sign: error", price: "+5,00", wantError: true},
		{name: "exponent: error", price: "R$ 1e3", wantError: true},
		{name: "two commas: error", price: "1,2,3", wantError: true},
		{name: "symbol only: error", price: "R$", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParsePrice(tt.price)
			if tt.wantError {
				require.ErrorIs(t, err, domain.ErrInvalidPrice)
				return
			}
			require.NoError(t, err)

			want := decimal.RequireFromString(tt.want)
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name  string
		money domain.Money
		want  string
	}{
		{name: "cents", money: brl("0.5"), want: "R$ 0,50"},
		{name: "hundreds", money: brl("89.9"), want: "R$ 89,90"},
		{name: "thousands", money: brl("1234.5"), want: "R$ 1.234,50"},
		{name: "millions", money: brl("1234567.891"), want: "R$ 1.234.567,89"},
		{name: "negative", money: brl("-1"), want: "-R$ 1,00"},
		{name: "unknown symbol", money: domain.Money{Amount: decimal.NewFromInt(3), Currency: currency.JPY}, want: "JPY 3,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.FormatMoney(tt.money))
		})
	}
}

func TestFormatParseAgree(t *testing.T) {
	for _, s := range []string{"R$ 0,01", "R$ 10,00", "R$ 999,99", "R$ 1.000,00", "R$ 45.678,12"} {
		amount, err := domain.ParsePrice(s)
		require.NoError(t, err)
		assert.Equal(t, s, domain.FormatMoney(domain.NewMoney(amount)))
	}
}

func brl(amount string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(amount))
}
