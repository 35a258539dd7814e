// Package nfe contiene utilidades para documentos fiscales brasileños (NF-e / NFC-e):
// validación y formato de CNPJ, chave de acesso y montos en reales.
package nfe

import (
	"strings"
)

// cnpjLength cantidad de dígitos de un CNPJ completo.
const cnpjLength = 14

// Mensajes mostrados junto al campo CNPJ.
const (
	MsgCNPJInvalid = "CNPJ inválido. Verifique os dígitos informados."
	MsgCNPJLength  = "CNPJ deve ter 14 dígitos."
)

// pesos del módulo 11 de la Receita Federal para los dos dígitos verificadores.
// El primero se aplica a los 12 dígitos base, el segundo a los 13 (base + DV1).
var (
	cnpjWeightsDV1 = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsDV2 = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// CNPJDigits devuelve solo los dígitos ASCII de s.
func CNPJDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCNPJ aplica la máscara NN.NNN.NNN/NNNN-NN de forma progresiva, de modo que
// funciona en cada pulsación de tecla: "1122" -> "11.22", "112223330" -> "11.222.333/0".
// Descarta lo que no sea dígito y trunca a 14 dígitos.
func FormatCNPJ(raw string) string {
	d := CNPJDigits(raw)
	if len(d) > cnpjLength {
		d = d[:cnpjLength]
	}
	n := len(d)
	switch {
	case n <= 2:
		return d
	case n <= 5:
		return d[:2] + "." + d[2:]
	case n <= 8:
		return d[:2] + "." + d[2:5] + "." + d[5:]
	case n <= 12:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:]
	default:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
	}
}

// IsValidCNPJ valida los dos dígitos verificadores del CNPJ (con o sin puntuación).
// Rechaza cadenas con cantidad distinta de 14 dígitos y las de dígitos repetidos
// (00.000.000/0000-00, 11.111.111/1111-11, ...), que pasan el módulo 11 ingenuo.
func IsValidCNPJ(s string) bool {
	d := CNPJDigits(s)
	if len(d) != cnpjLength || allSameDigit(d) {
		return false
	}
	dv1 := checkDigit(d[:12], cnpjWeightsDV1[:])
	dv2 := checkDigit(d[:13], cnpjWeightsDV2[:])
	return d[12] == dv1 && d[13] == dv2
}

// CNPJErrorMessage mensaje para el campo mientras se edita. Vacío o incompleto no es
// error: solo hay mensaje si sobran dígitos o si, con 14 dígitos, falla el verificador.
func CNPJErrorMessage(s string) string {
	d := CNPJDigits(s)
	switch {
	case len(d) < cnpjLength:
		return ""
	case len(d) > cnpjLength:
		return MsgCNPJLength
	case !IsValidCNPJ(d):
		return MsgCNPJInvalid
	}
	return ""
}

// CNPJSubmitErrorMessage regla usada al confirmar: el campo se considera terminado,
// así que un CNPJ no vacío con cantidad de dígitos distinta de 14 también es error.
// Un CNPJ vacío se permite (el emisor puede completarse en el backend).
func CNPJSubmitErrorMessage(s string) string {
	d := CNPJDigits(s)
	switch {
	case len(d) == 0:
		return ""
	case len(d) != cnpjLength:
		return MsgCNPJLength
	case !IsValidCNPJ(d):
		return MsgCNPJInvalid
	}
	return ""
}

// IsCompleteCNPJ indica si el valor ya tiene los 14 dígitos.
func IsCompleteCNPJ(s string) bool {
	return len(CNPJDigits(s)) == cnpjLength
}

func checkDigit(base string, weights []int) byte {
	var sum int
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + (11 - r))
}

func allSameDigit(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
