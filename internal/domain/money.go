package domain

import (
	"fmt"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"strings"
)

// DefaultCurrency is the currency every catalog price is quoted in.
var DefaultCurrency = currency.BRL

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(qty))), Currency: m.Currency}
}

func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

func (m Money) String() string {
	return FormatMoney(m)
}

// ParsePrice converts a display price such as "R$ 1.234,50" into a non-negative decimal amount.
// Signs and exponent notation are rejected.
func ParsePrice(price string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(price, "R$", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	s = strings.TrimSpace(s)

	if strings.IndexFunc(s, notPriceRune) >= 0 {
		return decimal.Zero, fmt.Errorf("price[%s]: %w", price, ErrInvalidPrice)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price[%s]: %w", price, ErrInvalidPrice)
	}

	return amount, nil
}

func notPriceRune(r rune) bool {
	return r != '.' && (r < '0' || r > '9')
}

var symbols = map[currency.Unit]string{
	currency.BRL: "R$",
	currency.USD: "$",
	currency.EUR: "€",
}

// FormatMoney renders m in Brazilian display form: "R$ 1.234,50".
func FormatMoney(m Money) string {
	symbol, ok := symbols[m.Currency]
	if !ok {
		symbol = m.Currency.String()
	}

	amount := m.Amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	whole, frac, _ := strings.Cut(amount.StringFixed(2), ".")

	return fmt.Sprintf("%s%s %s,%s", sign, symbol, groupThousands(whole), frac)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
