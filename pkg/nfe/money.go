package nfe

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL formatea un monto en reales con separadores pt-BR: R$ 1.234,56.
// Solo para mensajes; los cálculos siguen en decimal.
func FormatBRL(v decimal.Decimal) string {
	r := v.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
	}
	intPart, frac, _ := strings.Cut(r.Abs().StringFixed(2), ".")
	return "R$ " + sign + groupThousands(intPart) + "," + frac
}

// groupThousands agrupa la parte entera con el separador de miles pt-BR.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return brPrinter.Sprintf("%d", n)
	}
	// fuera de int64
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String()
}
