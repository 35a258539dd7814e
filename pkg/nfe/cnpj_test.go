package nfe_test

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/notascan-api/pkg/nfe"
)

// referenceCNPJCheckDigit implementación de referencia: pesos 2..9 cíclicos desde la derecha.
func referenceCNPJCheckDigit(base string) byte {
	sum, w := 0, 2
	for i := len(base) - 1; i >= 0; i-- {
		sum += int(base[i]-'0') * w
		w++
		if w > 9 {
			w = 2
		}
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

func referenceValid(d string) bool {
	if len(d) != 14 || strings.Count(d, d[:1]) == 14 {
		return false
	}
	return d[12] == referenceCNPJCheckDigit(d[:12]) && d[13] == referenceCNPJCheckDigit(d[:13])
}

// ── IsValidCNPJ ───────────────────────────────────────────────────────────────

func TestIsValidCNPJ_Conocidos(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"11.222.333/0001-81", true},
		{"11222333000181", true},
		{"11.444.777/0001-61", true},
		{"11.222.333/0001-82", false},
		{"11.222.333/0001-8", false},
		{"", false},
		{"abc", false},
		{"11.222.333/0001-811", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, nfe.IsValidCNPJ(tc.in), "IsValidCNPJ(%q)", tc.in)
	}
}

// Dígitos repetidos pasan el módulo 11 ingenuo pero no son CNPJ válidos.
func TestIsValidCNPJ_DigitosRepetidos(t *testing.T) {
	assert.False(t, nfe.IsValidCNPJ("11.111.111/1111-11"))
	for d := '0'; d <= '9'; d++ {
		assert.False(t, nfe.IsValidCNPJ(strings.Repeat(string(d), 14)))
	}
}

func TestIsValidCNPJ_CoincideConReferencia(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		var b strings.Builder
		for j := 0; j < 14; j++ {
			b.WriteString(strconv.Itoa(rng.Intn(10)))
		}
		s := b.String()
		assert.Equal(t, referenceValid(s), nfe.IsValidCNPJ(s), "cnpj %s", s)

		// Base aleatoria con verificadores correctos.
		base := s[:12]
		dv1 := referenceCNPJCheckDigit(base)
		full := base + string(dv1) + string(referenceCNPJCheckDigit(base+string(dv1)))
		assert.Equal(t, referenceValid(full), nfe.IsValidCNPJ(full), "cnpj %s", full)
	}
}

// ── FormatCNPJ ────────────────────────────────────────────────────────────────

func TestFormatCNPJ_Progresivo(t *testing.T) {
	digits := "11222333000181"
	want := []string{
		"", "1", "11", "11.2", "11.22", "11.222", "11.222.3", "11.222.33", "11.222.333",
		"11.222.333/0", "11.222.333/00", "11.222.333/000", "11.222.333/0001",
		"11.222.333/0001-8", "11.222.333/0001-81",
	}
	for n := 0; n <= 14; n++ {
		assert.Equal(t, want[n], nfe.FormatCNPJ(digits[:n]), "prefijo de %d dígitos", n)
	}
}

func TestFormatCNPJ_TruncaYLimpia(t *testing.T) {
	assert.Equal(t, "11.222.333/0001-81", nfe.FormatCNPJ("11a222b333 0001-81999"))
	assert.Equal(t, "", nfe.FormatCNPJ("abc./-"))
}

func TestFormatCNPJ_Idempotente(t *testing.T) {
	inputs := []string{"", "1", "11.2", "112223", "11.222.333/0001-81", "x9y8z7", "123456789012345678", "٣٤٥"}
	for _, in := range inputs {
		once := nfe.FormatCNPJ(in)
		assert.Equal(t, once, nfe.FormatCNPJ(once), "FormatCNPJ(%q)", in)
	}
}

// ── Mensajes ──────────────────────────────────────────────────────────────────

func TestCNPJErrorMessage(t *testing.T) {
	assert.Empty(t, nfe.CNPJErrorMessage(""), "vacío no es error")
	assert.Empty(t, nfe.CNPJErrorMessage("11.222.333/0"), "incompleto no es error mientras se edita")
	assert.Empty(t, nfe.CNPJErrorMessage("11.222.333/0001-81"))
	assert.Equal(t, nfe.MsgCNPJInvalid, nfe.CNPJErrorMessage("11.222.333/0001-80"))
	assert.Equal(t, nfe.MsgCNPJInvalid, nfe.CNPJErrorMessage("11.111.111/1111-11"))
	assert.Equal(t, nfe.MsgCNPJLength, nfe.CNPJErrorMessage("112223330001811"))
}

func TestCNPJSubmitErrorMessage(t *testing.T) {
	assert.Empty(t, nfe.CNPJSubmitErrorMessage(""))
	assert.Equal(t, nfe.MsgCNPJLength, nfe.CNPJSubmitErrorMessage("11.222.333/0"))
	assert.Equal(t, nfe.MsgCNPJInvalid, nfe.CNPJSubmitErrorMessage("11.222.333/0001-80"))
	assert.Empty(t, nfe.CNPJSubmitErrorMessage("11.222.333/0001-81"))
}

// ── Chave de acesso y montos ──────────────────────────────────────────────────

func TestAccessKeyHint(t *testing.T) {
	assert.Empty(t, nfe.AccessKeyHint(""))
	assert.Empty(t, nfe.AccessKeyHint(strings.Repeat("1", 44)))
	assert.Equal(t, "10/44 dígitos", nfe.AccessKeyHint("1234 5678 90"))
	assert.Equal(t, "45/44 dígitos", nfe.AccessKeyHint(strings.Repeat("9", 45)))
}

func TestFormatAccessKey(t *testing.T) {
	assert.Equal(t, "1234 5678 90", nfe.FormatAccessKey("1234567890"))
	assert.Equal(t, "", nfe.FormatAccessKey(""))
	assert.Len(t, strings.Fields(nfe.FormatAccessKey(strings.Repeat("3", 44))), 11)
}

func TestFormatBRL(t *testing.T) {
	assert.Contains(t, nfe.FormatBRL(decimal.NewFromInt(10)), "10,00")
	assert.True(t, strings.HasPrefix(nfe.FormatBRL(decimal.NewFromFloat(1.5)), "R$ "))

	cases := map[string]string{
		"0":                     "R$ 0,00",
		"1234.5":                "R$ 1.234,50",
		"-0.5":                  "R$ -0,50",
		"9007199254740993.01":   "R$ 9.007.199.254.740.993,01",
		"123456789012345678901": "R$ 123.456.789.012.345.678.901,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, nfe.FormatBRL(decimal.RequireFromString(in)), in)
	}
}
