package printing

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// nbsp separates the currency symbol from the amount, as pt-BR locale data does
const nbsp = "\u00a0"

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// dateLayouts are tried in order when a date arrives as a string
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// FormatCurrency formats amount with pt-BR grouping and two decimals, prefixed
// by the currency symbol: 1234.5 BRL -> "R$ 1.234,50". An empty currency means
// BRL. Non-finite or non-numeric input fails with INVALID_AMOUNT.
func FormatCurrency(amount any, currency valueobject.Currency) (string, error) {
	d, err := toDecimal(amount)
	if err != nil {
		return "", err
	}
	if m, ok := amount.(valueobject.Money); ok && currency == "" {
		currency = m.Currency()
	}

	sign := ""
	d = d.Round(2)
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + currency.OrDefault().Symbol() + nbsp + FormatDecimalBR(d), nil
}

// FormatDecimalBR renders d with two fraction digits, "." as thousands
// separator and "," as decimal separator
func FormatDecimalBR(d decimal.Decimal) string {
	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	intPart := strings.TrimPrefix(parts[0], "-")
	frac := "00"
	if len(parts) == 2 {
		frac = parts[1]
	}

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatDate formats a time.Time or a date string as DD/MM/YYYY.
// Date-only strings are taken as calendar dates without timezone shifting.
func FormatDate(v any) (string, error) {
	t, err := toTime(v)
	if err != nil {
		return "", err
	}
	return t.Format("02/01/2006"), nil
}

// FormatDateTime formats as DD/MM/YYYY HH:MM
func FormatDateTime(v any) (string, error) {
	t, err := toTime(v)
	if err != nil {
		return "", err
	}
	return t.Format("02/01/2006 15:04"), nil
}

// FormatDateLong formats as "15 de março de 2024"
func FormatDateLong(v any) (string, error) {
	t, err := toTime(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[t.Month()-1], t.Year()), nil
}

// FormatTaxID masks an 11 digit CPF or 14 digit CNPJ; anything else is
// returned unchanged
func FormatTaxID(value string) string {
	return valueobject.NewTaxID(value).Formatted()
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case *decimal.Decimal:
		if val != nil {
			return *val, nil
		}
	case valueobject.Money:
		return val.Amount(), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int32:
		return decimal.NewFromInt32(val), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case float32:
		return floatToDecimal(float64(val))
	case float64:
		return floatToDecimal(val)
	case json.Number:
		return stringToDecimal(val.String())
	case string:
		return stringToDecimal(val)
	}
	return decimal.Decimal{}, receipt.ErrInvalidAmount.WithDetails(fmt.Sprintf("unsupported amount %v (%T)", v, v))
}

func floatToDecimal(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, receipt.ErrInvalidAmount.WithDetails(fmt.Sprintf("%v", f))
	}
	return decimal.NewFromFloat(f), nil
}

func stringToDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, receipt.ErrInvalidAmount.WithDetails(fmt.Sprintf("%q", s))
	}
	return d, nil
}

func toTime(v any) (time.Time, error) {
	var t time.Time
	switch val := v.(type) {
	case time.Time:
		t = val
	case *time.Time:
		if val != nil {
			t = *val
		}
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t = parsed
				break
			}
		}
		if t.IsZero() {
			return time.Time{}, receipt.ErrInvalidDate.WithDetails(fmt.Sprintf("%q", val))
		}
	default:
		return time.Time{}, receipt.ErrInvalidDate.WithDetails(fmt.Sprintf("unsupported date %v (%T)", v, v))
	}
	if t.IsZero() {
		return time.Time{}, receipt.ErrInvalidDate.WithDetails("zero time")
	}
	return t, nil
}
