package nfe

import (
	"fmt"
	"strings"
)

// AccessKeyLength dígitos de la chave de acesso de NF-e/NFC-e.
const AccessKeyLength = 44

// AccessKeyDigits devuelve solo los dígitos de la chave de acesso.
func AccessKeyDigits(s string) string {
	return CNPJDigits(s)
}

// AccessKeyHint pista de conteo para el campo chave de acesso. Es solo informativa:
// devuelve "" si el campo está vacío o tiene exactamente 44 dígitos.
func AccessKeyHint(s string) string {
	n := len(AccessKeyDigits(s))
	if n == 0 || n == AccessKeyLength {
		return ""
	}
	return fmt.Sprintf("%d/%d dígitos", n, AccessKeyLength)
}

// FormatAccessKey agrupa los dígitos de 4 en 4, como se imprime en el DANFE.
func FormatAccessKey(s string) string {
	d := AccessKeyDigits(s)
	var groups []string
	for len(d) > 4 {
		groups = append(groups, d[:4])
		d = d[4:]
	}
	if d != "" {
		groups = append(groups, d)
	}
	return strings.Join(groups, " ")
}
