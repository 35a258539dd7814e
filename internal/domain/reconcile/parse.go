package reconcile

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// QuantityScale decimales admitidos en cantidades (kg, litros).
const QuantityScale = 3

var numericPrefixRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// ParseAmount interpreta el texto de un campo numérico mientras se edita. Nunca
// falla: lo que no se puede leer vale 0. Acepta coma decimal ("10,50"),
// separador de miles pt-BR ("1.234,56") y en-US ("1,234.56"); toma el prefijo
// numérico más largo ("12kg" -> 12).
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	m := numericPrefixRe.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	if strings.HasSuffix(m, ".") {
		m = strings.TrimSuffix(m, ".")
	}
	v, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// parseNonNegative como ParseAmount pero sin negativos (cantidad y precio unitario).
func parseNonNegative(raw string) decimal.Decimal {
	v := ParseAmount(raw)
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// ParseQuantity cantidad no negativa con 3 decimales.
func ParseQuantity(raw string) decimal.Decimal {
	return parseNonNegative(raw).Round(QuantityScale)
}
