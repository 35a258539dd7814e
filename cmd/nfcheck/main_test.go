package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/notascan-api/pkg/nfe"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const draftYAML = `
issuer_name: Mercado Bom Preço
issuer_cnpj: "11222333000181"
number: "123"
series: "1"
issue_date: "2026-10-10"
access_key: "3526"
total_value: 12.00
items:
  - description: ARROZ TP1 5KG
    normalized_description: Arroz branco 5kg
    quantity: 2
    unit_price: 5.00
    total_price: 10.00
`

// ── cnpj ──

func TestCNPJCmd(t *testing.T) {
	out, err := run(t, "cnpj", "11222333000181", "")
	require.NoError(t, err)
	assert.Contains(t, out, "11.222.333/0001-81")
	assert.Contains(t, out, "válido")
	assert.Contains(t, out, "vazio")

	out, err = run(t, "cnpj", "11222333000182", "1122")
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, nfe.MsgCNPJInvalid)
	assert.Contains(t, out, nfe.MsgCNPJLength)
}

// ── draft ──

func TestDraftCmd_AvisosNoBloquean(t *testing.T) {
	path := writeFile(t, "nota.yaml", draftYAML)

	out, err := run(t, "draft", path, "--today", "2026-10-18")
	require.NoError(t, err)
	assert.Contains(t, out, "11.222.333/0001-81")
	assert.Contains(t, out, "Chave de acesso: 4/44 dígitos")
	assert.Contains(t, out, "Arroz branco 5kg", "mostra a descrição normalizada")
	assert.Contains(t, out, "12,00")
	assert.Contains(t, out, "pronto para envio")
}

func TestDraftCmd_FechaFuturaBloquea(t *testing.T) {
	path := writeFile(t, "nota.yaml", draftYAML)

	out, err := run(t, "draft", path, "--today", "2026-10-09")
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "bloqueado")
	assert.Contains(t, out, "futura")
}

func TestDraftCmd_PayloadJSON(t *testing.T) {
	path := writeFile(t, "nota.json", `{
  "issuer_name": " Loja ",
  "issuer_cnpj": "11.222.333/0001-81",
  "issue_date": "2026-10-01",
  "total_value": "99",
  "items": [{"description": "Feijão", "quantity": "1.5", "unit_price": "8", "total_price": "12"}]
}`)

	out, err := run(t, "draft", path, "--today", "2026-10-18", "--use-items-sum", "--payload")
	require.NoError(t, err)

	start := bytes.IndexByte([]byte(out), '{')
	require.GreaterOrEqual(t, start, 0)
	var p map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &p))
	assert.Equal(t, "Loja", p["issuer_name"])
	assert.Equal(t, "11222333000181", p["issuer_cnpj"])
	assert.Equal(t, "12", p["total_value"])
}

func TestDraftCmd_ArchivoInexistente(t *testing.T) {
	_, err := run(t, "draft", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errCheckFailed)
}
