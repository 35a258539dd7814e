package review

import (
	"fmt"
	"strings"

	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/internal/domain/reconcile"
	"github.com/jhoicas/notascan-api/pkg/nfe"
)

// Nombres de los campos de cabecera en el wire.
const (
	FieldIssuerName    = "issuer_name"
	FieldIssuerCNPJ    = "issuer_cnpj"
	FieldNumber        = "number"
	FieldSeries        = "series"
	FieldIssueDate     = "issue_date"
	FieldAccessKey     = "access_key"
	FieldDeclaredTotal = "total_value"
)

// ApplyHeaderEdit aplica una edición de cabecera identificada por su nombre en el wire.
func (s *Session) ApplyHeaderEdit(field, raw string) error {
	switch field {
	case FieldIssuerName:
		return s.SetIssuerName(raw)
	case FieldIssuerCNPJ:
		return s.SetIssuerTaxID(raw)
	case FieldNumber:
		return s.SetDocumentNumber(raw)
	case FieldSeries:
		return s.SetSeries(raw)
	case FieldIssueDate:
		return s.SetIssueDate(raw)
	case FieldAccessKey:
		return s.SetAccessKey(raw)
	case FieldDeclaredTotal:
		return s.SetDeclaredTotal(raw)
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
}

// SetIssuerName razón social; limpia el error general (p. ej. de la consulta de CNPJ).
func (s *Session) SetIssuerName(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft.IssuerName = v
	s.slots.GeneralValidationError = ""
	return nil
}

// SetIssuerTaxID aplica la máscara de CNPJ y evalúa la regla mientras se escribe.
func (s *Session) SetIssuerTaxID(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft.IssuerTaxID = nfe.FormatCNPJ(raw)
	s.slots.GeneralValidationError = ""
	s.enrichmentNote = ""
	s.slots.TaxIDError = nfe.CNPJErrorMessage(s.draft.IssuerTaxID)
	return nil
}

func (s *Session) SetDocumentNumber(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft.DocumentNumber = v
	return nil
}

func (s *Session) SetSeries(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft.Series = v
	return nil
}

// SetIssueDate acepta YYYY-MM-DD, DD/MM/AAAA o un timestamp; vacío borra la fecha. Una fecha
// ilegible no modifica el borrador.
func (s *Session) SetIssueDate(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	t, err := parseIssueDate(raw, s.loc)
	if err != nil {
		return fmt.Errorf("%w: fecha de emisión %q", domain.ErrInvalidInput, raw)
	}
	s.draft.IssueDate = t
	s.slots.DateError = issueDateMessage(t, s.now())
	return nil
}

// SetAccessKey guarda la chave de acesso tal cual; el aviso de longitud sale en Advisories.
func (s *Session) SetAccessKey(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft.AccessKey = strings.TrimSpace(v)
	return nil
}

// SetDeclaredTotal total declarado, entrada numérica permisiva.
func (s *Session) SetDeclaredTotal(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft.DeclaredTotal = reconcile.ParseAmount(raw).Round(2)
	return nil
}

// EditItem edición de un campo de la línea index (nombre del campo en el wire).
func (s *Session) EditItem(index int, field, raw string) error {
	edit, err := reconcile.ParseItemEdit(field, raw)
	if err != nil {
		return err
	}
	return s.ApplyItemEdit(index, edit)
}

// ApplyItemEdit aplica una edición ya tipada.
func (s *Session) ApplyItemEdit(index int, edit reconcile.ItemEdit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	d, err := reconcile.UpdateItem(s.draft, index, edit)
	if err != nil {
		return err
	}
	s.draft = d
	return nil
}

func (s *Session) AddItem() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft = reconcile.AddItem(s.draft)
	return nil
}

// RemoveItem elimina la línea index; con una sola línea no hace nada.
func (s *Session) RemoveItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	d, err := reconcile.RemoveItem(s.draft, index)
	if err != nil {
		return err
	}
	s.draft = d
	return nil
}

// UseItemsSumAsTotal acción del aviso de diferencia: el total pasa a ser Σ líneas.
func (s *Session) UseItemsSumAsTotal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft = reconcile.UseItemsSumAsTotal(s.draft)
	return nil
}
