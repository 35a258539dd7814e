package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/internal/domain/entity"
	"github.com/jhoicas/notascan-api/internal/domain/reconcile"
	"github.com/jhoicas/notascan-api/pkg/nfe"
)

const dateLayout = "2006-01-02"

// localDateLayouts formatos sin zona que manda el backend; se leen en la zona de la sesión.
// Las fracciones de segundo se aceptan aunque el layout no las tenga.
var localDateLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"02/01/2006",
}

// DraftFromDTO convierte los datos del backend en borrador editable. El CNPJ se
// muestra con máscara. La fecha de emisión nunca se descarta: si no se puede
// leer devuelve ErrInvalidInput.
func DraftFromDTO(in dto.InvoiceDataDTO, loc *time.Location) (entity.InvoiceDraft, error) {
	d := entity.InvoiceDraft{
		IssuerName:     in.IssuerName,
		IssuerTaxID:    nfe.FormatCNPJ(in.IssuerCNPJ),
		DocumentNumber: in.Number,
		Series:         in.Series,
		AccessKey:      in.AccessKey,
		DeclaredTotal:  in.TotalValue,
		Items:          make([]entity.LineItem, 0, len(in.Items)),
	}
	t, err := parseIssueDate(in.IssueDate, loc)
	if err != nil {
		return entity.InvoiceDraft{}, fmt.Errorf("%w: fecha de emisión %q", domain.ErrInvalidInput, in.IssueDate)
	}
	d.IssueDate = t
	for _, it := range in.Items {
		li := entity.LineItem{
			Code:        it.Code,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.TotalPrice,
			Category:    it.Category,
			Subcategory: it.Subcategory,
		}
		if it.NormalizedDescription != nil {
			s := *it.NormalizedDescription
			li.NormalizedDescription = &s
		}
		if li.Unit == "" {
			li.Unit = entity.DefaultUnit
		}
		d.Items = append(d.Items, li)
	}
	return reconcile.EnsureItems(d), nil
}

// BuildPayload produce el payload normalizado para confirmar/actualizar.
func BuildPayload(d entity.InvoiceDraft) dto.InvoicePayload {
	p := dto.InvoicePayload{
		IssuerName: strings.TrimSpace(d.IssuerName),
		IssuerCNPJ: nfe.CNPJDigits(d.IssuerTaxID),
		Number:     strings.TrimSpace(d.DocumentNumber),
		Series:     strings.TrimSpace(d.Series),
		AccessKey:  nfe.AccessKeyDigits(d.AccessKey),
		TotalValue: d.DeclaredTotal.Round(2),
		Items:      make([]dto.InvoiceItemDTO, 0, len(d.Items)),
	}
	if d.IssueDate != nil {
		p.IssueDate = d.IssueDate.Format(dateLayout)
	}
	for _, it := range d.Items {
		item := dto.InvoiceItemDTO{
			Code:        strings.TrimSpace(it.Code),
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity.Round(reconcile.QuantityScale),
			Unit:        strings.TrimSpace(it.Unit),
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.LineTotal.Round(2),
			Category:    it.Category,
		}
		if it.NormalizedDescription != nil {
			s := strings.TrimSpace(*it.NormalizedDescription)
			item.NormalizedDescription = &s
		}
		if it.Category != "" {
			item.Subcategory = it.Subcategory
		}
		p.Items = append(p.Items, item)
	}
	return p
}

// draftToDTO borrador en formato de pantalla.
func draftToDTO(d entity.InvoiceDraft) *dto.DraftDTO {
	out := &dto.DraftDTO{
		InvoiceDataDTO: dto.InvoiceDataDTO{
			IssuerName: d.IssuerName,
			IssuerCNPJ: d.IssuerTaxID,
			Number:     d.DocumentNumber,
			Series:     d.Series,
			AccessKey:  d.AccessKey,
			TotalValue: d.DeclaredTotal,
			Items:      make([]dto.InvoiceItemDTO, 0, len(d.Items)),
		},
		ItemsSum: reconcile.ItemsSum(d),
	}
	if d.IssueDate != nil {
		out.IssueDate = d.IssueDate.Format(dateLayout)
	}
	for _, it := range d.Items {
		var norm *string
		if it.NormalizedDescription != nil {
			v := *it.NormalizedDescription
			norm = &v
		}
		out.Items = append(out.Items, dto.InvoiceItemDTO{
			Code:                  it.Code,
			Description:           it.Description,
			NormalizedDescription: norm,
			Quantity:              it.Quantity,
			Unit:                  it.Unit,
			UnitPrice:             it.UnitPrice,
			TotalPrice:            it.LineTotal,
			Category:              it.Category,
			Subcategory:           it.Subcategory,
		})
	}
	return out
}

func potentialDuplicatesFromDTO(in []dto.PotentialDuplicateDTO) []entity.PotentialDuplicate {
	out := make([]entity.PotentialDuplicate, 0, len(in))
	for _, p := range in {
		pd := entity.PotentialDuplicate{Number: p.Number, IssueDate: p.IssueDate, IssuerName: p.IssuerName}
		if p.TotalValue != nil {
			v := *p.TotalValue
			pd.TotalValue = &v
		}
		out = append(out, pd)
	}
	return out
}

func potentialDuplicatesToDTO(in []entity.PotentialDuplicate) []dto.PotentialDuplicateDTO {
	out := make([]dto.PotentialDuplicateDTO, 0, len(in))
	for _, p := range in {
		out = append(out, dto.PotentialDuplicateDTO{
			Number: p.Number, IssueDate: p.IssueDate, TotalValue: p.TotalValue, IssuerName: p.IssuerName,
		})
	}
	return out
}

// parseIssueDate devuelve la fecha de emisión como medianoche en loc. Acepta
// YYYY-MM-DD, timestamps con o sin zona y DD/MM/AAAA; como último recurso toma
// los primeros diez caracteres si son una fecha. Vacío devuelve (nil, nil).
func parseIssueDate(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range localDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return dayIn(t, loc), nil
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return dayIn(t, loc), nil
	}
	if len(raw) > len(dateLayout) {
		if t, err := time.ParseInLocation(dateLayout, raw[:len(dateLayout)], loc); err == nil {
			return dayIn(t, loc), nil
		}
	}
	return nil, fmt.Errorf("fecha no reconocida: %q", raw)
}

func dayIn(t time.Time, loc *time.Location) *time.Time {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return &day
}
