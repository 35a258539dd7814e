package dto

import "github.com/shopspring/decimal"

// InvoiceItemDTO línea de nota tal como viaja hacia/desde el backend.
type InvoiceItemDTO struct {
	Code                  string          `json:"code,omitempty" yaml:"code"`
	Description           string          `json:"description" yaml:"description"`
	NormalizedDescription *string         `json:"normalized_description,omitempty" yaml:"normalized_description"`
	Quantity              decimal.Decimal `json:"quantity" yaml:"quantity" swaggertype:"string"`
	Unit                  string          `json:"unit" yaml:"unit"`
	UnitPrice             decimal.Decimal `json:"unit_price" yaml:"unit_price" swaggertype:"string"`
	TotalPrice            decimal.Decimal `json:"total_price" yaml:"total_price" swaggertype:"string"`
	Category              string          `json:"category,omitempty" yaml:"category"`
	Subcategory           string          `json:"subcategory,omitempty" yaml:"subcategory"`
}

// InvoiceDataDTO cabecera + líneas. Es la forma común de los datos extraídos,
// de la nota guardada y del payload de confirmación.
type InvoiceDataDTO struct {
	IssuerName string           `json:"issuer_name" yaml:"issuer_name"`
	IssuerCNPJ string           `json:"issuer_cnpj" yaml:"issuer_cnpj"`
	Number     string           `json:"number" yaml:"number"`
	Series     string           `json:"series" yaml:"series"`
	IssueDate  string           `json:"issue_date,omitempty" yaml:"issue_date"` // YYYY-MM-DD
	AccessKey  string           `json:"access_key" yaml:"access_key"`
	TotalValue decimal.Decimal  `json:"total_value" yaml:"total_value" swaggertype:"string"`
	Items      []InvoiceItemDTO `json:"items" yaml:"items"`
}

// InvoicePayload cuerpo normalizado de confirmar/actualizar: CNPJ y chave solo
// dígitos, montos redondeados a centavos.
type InvoicePayload = InvoiceDataDTO

// PotentialDuplicateDTO posible duplicado informado por la extracción.
type PotentialDuplicateDTO struct {
	Number     string           `json:"number,omitempty"`
	IssueDate  string           `json:"issue_date,omitempty"`
	TotalValue *decimal.Decimal `json:"total_value,omitempty" swaggertype:"string"`
	IssuerName string           `json:"issuer_name,omitempty"`
}

// ExtractedDataDTO datos extraídos por la IA más metadatos de la extracción.
type ExtractedDataDTO struct {
	InvoiceDataDTO
	Confidence          float64                 `json:"confidence"`
	ImageCount          int                     `json:"image_count"`
	PotentialDuplicates []PotentialDuplicateDTO `json:"potential_duplicates,omitempty"`
}

// ExtractionStatusDTO respuesta de GET /invoices/processing/:id/status.
type ExtractionStatusDTO struct {
	Status        string            `json:"status"` // pending|processing|extracted|error
	ExtractedData *ExtractedDataDTO `json:"extracted_data,omitempty"`
	Errors        []string          `json:"errors,omitempty"`
}

// StoredInvoiceDTO nota ya guardada (GET /invoices/:id).
type StoredInvoiceDTO struct {
	ID string `json:"id"`
	InvoiceDataDTO
}

// EnrichmentDTO respuesta de la consulta de CNPJ.
type EnrichmentDTO struct {
	SuggestedName string            `json:"suggested_name"`
	Data          EnrichmentDataDTO `json:"data"`
}

// EnrichmentDataDTO datos públicos del CNPJ. Source: "brasilapi" | "receitaws".
type EnrichmentDataDTO struct {
	Source    string `json:"source"`
	LegalName string `json:"razao_social,omitempty"`
	TradeName string `json:"nome_fantasia,omitempty"`
	Status    string `json:"situacao,omitempty"`
}
