package dto

import "github.com/shopspring/decimal"

// ReviewSessionDTO estado de una sesión de revisión/edición para el frontend.
type ReviewSessionDTO struct {
	ID               string             `json:"id"`
	State            string             `json:"state"`  // loading|editing|submitting|success
	Source           string             `json:"source"` // extraction|invoice|offline
	SourceID         string             `json:"source_id,omitempty"`
	ProcessingStatus string             `json:"processing_status,omitempty"`
	LoadErrors       []string           `json:"load_errors,omitempty"`
	Draft            *DraftDTO          `json:"draft,omitempty"`
	Errors           ValidationSlotsDTO `json:"errors"`
	Advisories       AdvisoriesDTO      `json:"advisories"`
	Extraction       *ExtractionMetaDTO `json:"extraction,omitempty"`
	CanSubmit        bool               `json:"can_submit"`
	EnrichmentNote   string             `json:"enrichment_note,omitempty"`
	Alert            string             `json:"alert,omitempty"` // se entrega una sola vez
}

// DraftDTO borrador en formato de pantalla (CNPJ con máscara).
type DraftDTO struct {
	InvoiceDataDTO
	ItemsSum decimal.Decimal `json:"items_sum" swaggertype:"string"`
}

// ValidationSlotsDTO errores por concepto; cada uno con a lo sumo un mensaje.
type ValidationSlotsDTO struct {
	TaxID             string                `json:"tax_id,omitempty"`
	Date              string                `json:"date,omitempty"`
	General           string                `json:"general,omitempty"`
	DuplicateConflict *DuplicateConflictDTO `json:"duplicate_conflict,omitempty"`
}

// DuplicateConflictDTO nota ya registrada que choca con la que se intenta guardar.
type DuplicateConflictDTO struct {
	Message        string          `json:"message"`
	ExistingID     string          `json:"existing_invoice_id,omitempty"`
	ExistingNumber string          `json:"existing_invoice_number,omitempty"`
	ExistingDate   string          `json:"existing_invoice_date,omitempty"`
	ExistingTotal  decimal.Decimal `json:"existing_invoice_total" swaggertype:"string"`
}

// AdvisoriesDTO avisos que no bloquean el envío.
type AdvisoriesDTO struct {
	TotalMismatch   bool            `json:"total_mismatch"`
	Difference      decimal.Decimal `json:"difference" swaggertype:"string"`
	MismatchMessage string          `json:"mismatch_message,omitempty"`
	AccessKeyHint   string          `json:"access_key_hint,omitempty"`
	EmptyFields     []string        `json:"empty_fields,omitempty"`
}

// ExtractionMetaDTO metadatos de la extracción IA.
type ExtractionMetaDTO struct {
	Confidence          float64                 `json:"confidence"`
	ImageCount          int                     `json:"image_count"`
	PotentialDuplicates []PotentialDuplicateDTO `json:"potential_duplicates,omitempty"`
}

// FieldEditRequest body de PATCH header / items.
type FieldEditRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// CNPJCheckResponse respuesta de GET /api/cnpj/:value.
type CNPJCheckResponse struct {
	Formatted string `json:"formatted"`
	Digits    string `json:"digits"`
	Complete  bool   `json:"complete"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
}
