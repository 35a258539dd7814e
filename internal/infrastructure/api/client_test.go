package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/internal/domain/entity"
	"github.com/jhoicas/notascan-api/internal/infrastructure/api"
	"github.com/jhoicas/notascan-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type recorded struct {
	method string
	path   string
	auth   string
	body   []byte
}

// newServer levanta un backend falso que responde status/body y guarda la última petición.
func newServer(t *testing.T, status int, body string) (*api.Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL+"/", 5*time.Second, logger.Nop()), rec
}

func samplePayload() dto.InvoicePayload {
	return dto.InvoicePayload{
		IssuerName: "Loja",
		IssuerCNPJ: "11222333000181",
		TotalValue: decimal.RequireFromString("10.00"),
		Items: []dto.InvoiceItemDTO{
			{Description: "Arroz", Quantity: decimal.NewFromInt(2), Unit: "UN",
				UnitPrice: decimal.RequireFromString("5"), TotalPrice: decimal.RequireFromString("10")},
		},
	}
}

func submitError(t *testing.T, err error) *domain.SubmitError {
	t.Helper()
	var se *domain.SubmitError
	require.ErrorAs(t, err, &se)
	return se
}

// ── Lecturas ──

func TestGetExtractionStatus(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{
		"status": "extracted",
		"extracted_data": {
			"issuer_name": "Loja",
			"issuer_cnpj": "11222333000181",
			"total_value": "10.00",
			"confidence": 0.87,
			"image_count": 1,
			"items": [{"description": "Arroz", "quantity": 2, "unit_price": 5, "total_price": 10}]
		}
	}`)
	ctx := api.WithBearerToken(context.Background(), "tok-123")

	st, err := c.GetExtractionStatus(ctx, "proc 1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/invoices/processing/proc 1/status", rec.path)
	assert.Equal(t, "Bearer tok-123", rec.auth)

	assert.Equal(t, entity.ExtractionExtracted, st.Status)
	require.NotNil(t, st.ExtractedData)
	assert.Equal(t, "Loja", st.ExtractedData.IssuerName)
	assert.InDelta(t, 0.87, st.ExtractedData.Confidence, 1e-9)
	require.Len(t, st.ExtractedData.Items, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(st.ExtractedData.Items[0].TotalPrice))
}

func TestGetInvoice_NoEncontrada(t *testing.T) {
	c, _ := newServer(t, http.StatusNotFound, `{"detail": "Not found"}`)
	_, err := c.GetInvoice(context.Background(), "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetInvoice_ErrorDelServidor(t *testing.T) {
	c, _ := newServer(t, http.StatusInternalServerError, `{"detail": "db down"}`)
	_, err := c.GetInvoice(context.Background(), "inv-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

// ── Envío ──

func TestConfirmExtraction_Exito(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"id": "inv-1"}`)

	require.NoError(t, c.ConfirmExtraction(context.Background(), "proc-1", samplePayload()))
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/invoices/processing/proc-1/confirm", rec.path)
	assert.Empty(t, rec.auth)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	assert.Equal(t, "11222333000181", sent["issuer_cnpj"])
	assert.Equal(t, "10", sent["total_value"])
}

func TestUpdateInvoice_UsaPUT(t *testing.T) {
	c, rec := newServer(t, http.StatusNoContent, ``)
	require.NoError(t, c.UpdateInvoice(context.Background(), "inv-7", samplePayload()))
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/invoices/inv-7", rec.path)
}

func TestSubmit_Duplicado(t *testing.T) {
	c, _ := newServer(t, http.StatusConflict, `{"detail": {
		"message": "Nota já cadastrada",
		"existing_invoice_id": "inv-9",
		"existing_invoice_number": 123,
		"existing_invoice_date": "2026-10-01",
		"existing_invoice_total": 45.9
	}}`)

	se := submitError(t, c.UpdateInvoice(context.Background(), "inv-1", samplePayload()))
	assert.Equal(t, domain.SubmitErrorDuplicate, se.Kind)
	assert.Equal(t, http.StatusConflict, se.Status)
	assert.Equal(t, "Nota já cadastrada", se.Message)
	require.NotNil(t, se.Existing)
	assert.Equal(t, "inv-9", se.Existing.ID)
	assert.Equal(t, "123", se.Existing.Number)
	assert.True(t, decimal.RequireFromString("45.9").Equal(se.Existing.Total))
}

func TestSubmit_Clasificacion(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    domain.SubmitErrorKind
		message string
		hint    string
	}{
		{"cnpj inválido", 400, `{"detail": {"error": "invalid_cnpj", "message": "CNPJ inválido", "hint": "Confira os dígitos"}}`,
			domain.SubmitErrorInvalidTaxID, "CNPJ inválido", "Confira os dígitos"},
		{"409 sin datos de la nota existente", 409, `{"detail": "duplicada"}`, domain.SubmitErrorDuplicate, "duplicada", ""},
		{"400 con otro código", 400, `{"detail": {"error": "invalid_date", "message": "Data inválida"}}`,
			domain.SubmitErrorUnclassified, "Data inválida", ""},
		{"detail string", 422, `{"detail": "Campo obrigatório"}`, domain.SubmitErrorUnclassified, "Campo obrigatório", ""},
		{"detail lista de validación", 422, `{"detail": [{"loc": ["body", "items"], "msg": "field required"}]}`,
			domain.SubmitErrorUnclassified, "field required", ""},
		{"message en la raíz", 500, `{"message": "Erro interno"}`, domain.SubmitErrorUnclassified, "Erro interno", ""},
		{"cuerpo no JSON", 502, `<html>Bad Gateway</html>`, domain.SubmitErrorUnclassified, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newServer(t, tt.status, tt.body)
			se := submitError(t, c.ConfirmExtraction(context.Background(), "p", samplePayload()))
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, tt.status, se.Status)
			assert.Equal(t, tt.message, se.Message)
			assert.Equal(t, tt.hint, se.Hint)
		})
	}
}

func TestSubmit_FalloDeTransporte(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := api.NewClient(srv.URL, time.Second, logger.Nop())

	se := submitError(t, c.ConfirmExtraction(context.Background(), "p", samplePayload()))
	assert.Equal(t, domain.SubmitErrorUnclassified, se.Kind)
	assert.Zero(t, se.Status)
	assert.Error(t, se.Err)
}

// ── Consulta de CNPJ ──

func TestLookupCNPJ(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"suggested_name": "LOJA LTDA", "data": {"source": "receitaws", "razao_social": "LOJA LTDA"}}`)

	res, err := c.LookupCNPJ(context.Background(), "11222333000181")
	require.NoError(t, err)
	assert.Equal(t, "/cnpj/11222333000181", rec.path)
	assert.Equal(t, "LOJA LTDA", res.SuggestedName)
	assert.Equal(t, "receitaws", res.Data.Source)
}

func TestLookupCNPJ_Error(t *testing.T) {
	c, _ := newServer(t, http.StatusNotFound, `{"detail": {"message": "CNPJ não encontrado", "hint": "Verifique o número"}}`)

	_, err := c.LookupCNPJ(context.Background(), "11222333000181")
	var le *domain.LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusNotFound, le.Status)
	assert.Equal(t, "Verifique o número", le.Hint)
	assert.Equal(t, "CNPJ não encontrado", le.Message)
}
