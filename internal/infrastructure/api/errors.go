package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/internal/domain/entity"
)

const errCodeInvalidCNPJ = "invalid_cnpj"

// errorDetail forma única a la que se reducen los cuerpos de error del backend.
// detail llega como string, como objeto o como lista de validación según el endpoint.
type errorDetail struct {
	Code                  string           `json:"error"`
	Message               string           `json:"message"`
	Hint                  string           `json:"hint"`
	ExistingInvoiceID     flexString       `json:"existing_invoice_id"`
	ExistingInvoiceNumber flexString       `json:"existing_invoice_number"`
	ExistingInvoiceDate   flexString       `json:"existing_invoice_date"`
	ExistingInvoiceTotal  *decimal.Decimal `json:"existing_invoice_total"`
}

type errorEnvelope struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// flexString acepta string o número (algunos endpoints mandan el número de nota como int).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// parseErrorBody reduce el cuerpo a errorDetail. Un cuerpo ilegible da el valor cero.
func parseErrorBody(body []byte) errorDetail {
	var env errorEnvelope
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &env) != nil {
		return errorDetail{}
	}
	var d errorDetail
	raw := bytes.TrimSpace(env.Detail)
	switch {
	case len(raw) == 0 || string(raw) == "null":
	case raw[0] == '"':
		_ = json.Unmarshal(raw, &d.Message)
	case raw[0] == '{':
		_ = json.Unmarshal(raw, &d)
	case raw[0] == '[':
		var list []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
			d.Message = list[0].Msg
		}
	}
	if d.Message == "" {
		d.Message = env.Message
	}
	if d.Code == "" {
		d.Code = env.Error
	}
	d.Message = strings.TrimSpace(d.Message)
	return d
}

// normalizeSubmitError clasifica la respuesta de confirmar/actualizar.
// status 0 significa que no hubo respuesta (cause trae el error de transporte).
func normalizeSubmitError(status int, body []byte, cause error) *domain.SubmitError {
	if status == 0 {
		return &domain.SubmitError{Kind: domain.SubmitErrorUnclassified, Err: cause}
	}
	d := parseErrorBody(body)
	se := &domain.SubmitError{
		Kind:    domain.SubmitErrorUnclassified,
		Status:  status,
		Message: d.Message,
		Hint:    d.Hint,
		Err:     cause,
	}
	switch {
	case status == http.StatusConflict:
		se.Kind = domain.SubmitErrorDuplicate
		if d.ExistingInvoiceID != "" || d.ExistingInvoiceNumber != "" {
			ex := &entity.ExistingInvoice{
				ID:     string(d.ExistingInvoiceID),
				Number: string(d.ExistingInvoiceNumber),
				Date:   string(d.ExistingInvoiceDate),
			}
			if d.ExistingInvoiceTotal != nil {
				ex.Total = *d.ExistingInvoiceTotal
			}
			se.Existing = ex
		}
	case status == http.StatusBadRequest && d.Code == errCodeInvalidCNPJ:
		se.Kind = domain.SubmitErrorInvalidTaxID
	}
	return se
}

// normalizeLookupError error de la consulta de CNPJ.
func normalizeLookupError(status int, body []byte, cause error) *domain.LookupError {
	d := parseErrorBody(body)
	return &domain.LookupError{Status: status, Message: d.Message, Hint: d.Hint, Err: cause}
}
