package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "02/01/2006"

// FCFA renders a whole amount with space separated thousands, e.g.
// "20 000 FCFA". Fractions are rounded since the currency has no minor unit.
func FCFA(amount decimal.Decimal) string {
	return groupThousands(amount.Round(0).String()) + " FCFA"
}

// Weight renders a weight in kilograms without trailing zeros.
func Weight(kg decimal.Decimal) string {
	return strings.Replace(kg.Round(3).String(), ".", ",", 1) + " kg"
}

// Date renders a calendar date the way receipts show it.
func Date(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.Format(dateLayout)
}

func groupThousands(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
