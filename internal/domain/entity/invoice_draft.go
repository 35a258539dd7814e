package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del procesamiento (extracción IA) informados por el backend.
const (
	ExtractionPending    = "pending"
	ExtractionProcessing = "processing"
	ExtractionExtracted  = "extracted"
	ExtractionError      = "error"
)

// DefaultUnit unidad de una línea nueva.
const DefaultUnit = "UN"

// InvoiceDraft nota fiscal en edición (cabecera + líneas). No se persiste: solo
// se convierte en payload al confirmar.
type InvoiceDraft struct {
	IssuerName     string
	IssuerTaxID    string // CNPJ tal como se muestra (puede estar incompleto mientras se edita)
	DocumentNumber string
	Series         string
	IssueDate      *time.Time
	AccessKey      string // chave de acesso; 44 dígitos es solo orientativo
	DeclaredTotal  decimal.Decimal
	Items          []LineItem
}

// LineItem línea de la nota. LineTotal se deriva de Quantity × UnitPrice salvo que
// el usuario lo edite directamente.
type LineItem struct {
	Code                  string
	Description           string
	NormalizedDescription *string // nombre canónico sugerido por la IA; nil si no hay
	Quantity              decimal.Decimal
	Unit                  string
	UnitPrice             decimal.Decimal
	LineTotal             decimal.Decimal
	Category              string
	Subcategory           string
}

// DisplayDescription descripción que se muestra (la normalizada si existe).
func (li LineItem) DisplayDescription() string {
	if li.NormalizedDescription != nil {
		return *li.NormalizedDescription
	}
	return li.Description
}

// Clone copia profunda del borrador (las transformaciones nunca comparten slices).
func (d InvoiceDraft) Clone() InvoiceDraft {
	out := d
	if d.IssueDate != nil {
		t := *d.IssueDate
		out.IssueDate = &t
	}
	out.Items = make([]LineItem, len(d.Items))
	for i, it := range d.Items {
		if it.NormalizedDescription != nil {
			s := *it.NormalizedDescription
			it.NormalizedDescription = &s
		}
		out.Items[i] = it
	}
	return out
}

// ExistingInvoice resumen de la nota ya registrada que provocó un conflicto de duplicado.
type ExistingInvoice struct {
	ID     string
	Number string
	Date   string
	Total  decimal.Decimal
}

// PotentialDuplicate posible duplicado detectado durante la extracción (aviso previo a confirmar).
type PotentialDuplicate struct {
	Number     string
	IssueDate  string
	TotalValue *decimal.Decimal
	IssuerName string
}
