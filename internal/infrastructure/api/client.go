// Package api adaptador REST hacia el backend de notas fiscales: estado de la
// extracción, lectura/actualización de notas, confirmación y consulta de CNPJ.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/internal/application/ports"
	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa los puertos.
var (
	_ ports.InvoiceGateway = (*Client)(nil)
	_ ports.TaxIDLookup    = (*Client)(nil)
)

const maxBodyBytes = 1 << 20

// Client cliente HTTP del backend. Usa net/http; el token del usuario viaja en el contexto.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el adaptador. timeout <= 0 usa 30 s.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithComponent("api"),
	}
}

type tokenKey struct{}

// WithBearerToken adjunta al contexto el token que se reenvía al backend.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func bearerToken(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// response resultado crudo de una llamada; err solo para fallos de transporte.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

func (c *Client) do(ctx context.Context, method, path string, in any) (response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return response{}, fmt.Errorf("api: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return response{}, fmt.Errorf("api: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := bearerToken(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return response{}, fmt.Errorf("api: timeout o cancelación: %w", ctx.Err())
		}
		return response{}, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{}, fmt.Errorf("api: leer respuesta: %w", err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend")
	return response{status: resp.StatusCode, body: raw}, nil
}

// readError error de un endpoint de lectura: 404 es domain.ErrNotFound.
func readError(method, path string, r response) error {
	if r.status == http.StatusNotFound {
		return fmt.Errorf("api: %s %s: %w", method, path, domain.ErrNotFound)
	}
	msg := parseErrorBody(r.body).Message
	if msg == "" {
		msg = http.StatusText(r.status)
	}
	return fmt.Errorf("api: %s %s HTTP %d: %s", method, path, r.status, msg)
}

func decode(r response, out any) error {
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("api: deserializar respuesta: %w", err)
	}
	return nil
}

// GetExtractionStatus GET /invoices/processing/{id}/status.
func (c *Client) GetExtractionStatus(ctx context.Context, processingID string) (*dto.ExtractionStatusDTO, error) {
	path := "/invoices/processing/" + url.PathEscape(processingID) + "/status"
	r, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !r.ok() {
		return nil, readError(http.MethodGet, path, r)
	}
	var out dto.ExtractionStatusDTO
	if err := decode(r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInvoice GET /invoices/{id}.
func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*dto.StoredInvoiceDTO, error) {
	path := "/invoices/" + url.PathEscape(invoiceID)
	r, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !r.ok() {
		return nil, readError(http.MethodGet, path, r)
	}
	var out dto.StoredInvoiceDTO
	if err := decode(r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmExtraction POST /invoices/processing/{id}/confirm.
func (c *Client) ConfirmExtraction(ctx context.Context, processingID string, payload dto.InvoicePayload) error {
	path := "/invoices/processing/" + url.PathEscape(processingID) + "/confirm"
	return c.submit(ctx, http.MethodPost, path, payload)
}

// UpdateInvoice PUT /invoices/{id}.
func (c *Client) UpdateInvoice(ctx context.Context, invoiceID string, payload dto.InvoicePayload) error {
	path := "/invoices/" + url.PathEscape(invoiceID)
	return c.submit(ctx, http.MethodPut, path, payload)
}

func (c *Client) submit(ctx context.Context, method, path string, payload dto.InvoicePayload) error {
	r, err := c.do(ctx, method, path, payload)
	if err != nil {
		return normalizeSubmitError(0, nil, err)
	}
	if r.ok() {
		return nil
	}
	return normalizeSubmitError(r.status, r.body, nil)
}

// LookupCNPJ GET /cnpj/{digits}.
func (c *Client) LookupCNPJ(ctx context.Context, cnpjDigits string) (*dto.EnrichmentDTO, error) {
	path := "/cnpj/" + url.PathEscape(cnpjDigits)
	r, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, normalizeLookupError(0, nil, err)
	}
	if !r.ok() {
		return nil, normalizeLookupError(r.status, r.body, nil)
	}
	var out dto.EnrichmentDTO
	if err := decode(r, &out); err != nil {
		return nil, normalizeLookupError(r.status, nil, err)
	}
	return &out, nil
}
