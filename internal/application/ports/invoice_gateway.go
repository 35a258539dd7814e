package ports

import (
	"context"

	"github.com/jhoicas/notascan-api/internal/application/dto"
)

// InvoiceGateway puerto de salida hacia el backend que procesa y guarda las notas.
// Los errores de ConfirmExtraction y UpdateInvoice llegan ya normalizados como
// *domain.SubmitError; los de lectura pueden ser domain.ErrNotFound.
type InvoiceGateway interface {
	// GetExtractionStatus estado de la extracción IA (pending|processing|extracted|error).
	GetExtractionStatus(ctx context.Context, processingID string) (*dto.ExtractionStatusDTO, error)
	// GetInvoice nota ya guardada, para la pantalla de edición.
	GetInvoice(ctx context.Context, invoiceID string) (*dto.StoredInvoiceDTO, error)
	// ConfirmExtraction guarda por primera vez una nota recién extraída.
	ConfirmExtraction(ctx context.Context, processingID string, payload dto.InvoicePayload) error
	// UpdateInvoice actualiza una nota existente.
	UpdateInvoice(ctx context.Context, invoiceID string, payload dto.InvoicePayload) error
}

// TaxIDLookup consulta pública de CNPJ (BrasilAPI / ReceitaWS vía backend).
// Los fallos llegan como *domain.LookupError.
type TaxIDLookup interface {
	LookupCNPJ(ctx context.Context, cnpjDigits string) (*dto.EnrichmentDTO, error)
}
