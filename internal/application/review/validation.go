package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/internal/domain/entity"
	"github.com/jhoicas/notascan-api/internal/domain/reconcile"
	"github.com/jhoicas/notascan-api/pkg/nfe"
)

// Mensajes de la pantalla.
const (
	MsgFutureDate        = "A data de emissão não pode ser futura."
	MsgDuplicate         = "Esta nota fiscal já foi cadastrada."
	MsgGenericSubmit     = "Não foi possível salvar a nota fiscal. Tente novamente."
	MsgEnrichmentFailed  = "Não foi possível consultar o CNPJ. Tente novamente em instantes."
	MsgExtractionFailed  = "Não foi possível extrair os dados da nota."
	MsgExtractionEmpty   = "A extração terminou sem dados."
	enrichmentNotePrefix = "Razão social preenchida com dados da "
)

// Campos vacíos que se resaltan (solo aviso; no bloquean el envío).
const (
	EmptyFieldIssuerName = "issuer_name"
	EmptyFieldNumber     = "number"
)

// Advisories avisos no bloqueantes del borrador.
type Advisories struct {
	TotalMismatch bool
	ItemsSum      decimal.Decimal
	Difference    decimal.Decimal // Σ líneas − total declarado
	AccessKeyHint string
	EmptyFields   []string
}

// computeAdvisories reglas 3, 4 y 5: chave de acesso, diferencia de totales y campos vacíos.
func computeAdvisories(d entity.InvoiceDraft) Advisories {
	diff, mismatch := reconcile.Mismatch(d)
	a := Advisories{
		TotalMismatch: mismatch,
		ItemsSum:      reconcile.ItemsSum(d),
		Difference:    diff,
		AccessKeyHint: nfe.AccessKeyHint(d.AccessKey),
	}
	if strings.TrimSpace(d.IssuerName) == "" {
		a.EmptyFields = append(a.EmptyFields, EmptyFieldIssuerName)
	}
	if strings.TrimSpace(d.DocumentNumber) == "" {
		a.EmptyFields = append(a.EmptyFields, EmptyFieldNumber)
	}
	return a
}

func advisoriesToDTO(a Advisories) dto.AdvisoriesDTO {
	out := dto.AdvisoriesDTO{
		TotalMismatch: a.TotalMismatch,
		Difference:    a.Difference,
		AccessKeyHint: a.AccessKeyHint,
		EmptyFields:   a.EmptyFields,
	}
	if a.TotalMismatch {
		out.MismatchMessage = MismatchMessage(a.ItemsSum, a.ItemsSum.Sub(a.Difference))
	}
	return out
}

// MismatchMessage texto del aviso de diferencia entre la suma de ítems y el total.
func MismatchMessage(itemsSum, declared decimal.Decimal) string {
	return fmt.Sprintf("A soma dos itens (%s) difere do valor total informado (%s).",
		nfe.FormatBRL(itemsSum), nfe.FormatBRL(declared))
}

// issueDateMessage regla 2: la fecha de emisión no puede ser posterior a hoy.
// Se compara por día calendario en la zona de now.
func issueDateMessage(issue *time.Time, now time.Time) string {
	if issue == nil {
		return ""
	}
	loc := now.Location()
	i := issue.In(loc)
	issueDay := time.Date(i.Year(), i.Month(), i.Day(), 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if issueDay.After(today) {
		return MsgFutureDate
	}
	return ""
}

func (s *Session) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// revalidateLocked evalúa las reglas bloqueantes al cargar. El CNPJ que llega del
// backend ya está terminado, así que se juzga con la regla de envío.
func (s *Session) revalidateLocked() {
	s.slots.TaxIDError = nfe.CNPJSubmitErrorMessage(s.draft.IssuerTaxID)
	s.slots.DateError = issueDateMessage(s.draft.IssueDate, s.now())
}

// gateLocked vuelve a correr las reglas 1 y 2 antes de enviar, con el CNPJ
// considerado terminado. Un error de CNPJ devuelto por el backend sigue en el
// slot hasta que el campo se edite.
func (s *Session) gateLocked() bool {
	if msg := nfe.CNPJSubmitErrorMessage(s.draft.IssuerTaxID); msg != "" {
		s.slots.TaxIDError = msg
	}
	s.slots.DateError = issueDateMessage(s.draft.IssueDate, s.now())
	return s.slots.TaxIDError == "" && s.slots.DateError == ""
}

// gateOK igual que gateLocked pero sin modificar los slots. La fecha se evalúa de
// nuevo porque el día puede haber cambiado desde la última edición.
func (s *Session) gateOK() bool {
	return s.slots.TaxIDError == "" &&
		nfe.CNPJSubmitErrorMessage(s.draft.IssuerTaxID) == "" &&
		issueDateMessage(s.draft.IssueDate, s.now()) == ""
}

// CanSubmit indica si el botón de confirmar está habilitado.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateEditing && s.gateOK()
}

// Check corre el control previo al envío sin llamar al backend (uso offline).
func (s *Session) Check() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return false
	}
	return s.gateLocked()
}

// Advisories avisos no bloqueantes del borrador actual.
func (s *Session) Advisories() Advisories {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeAdvisories(s.draft)
}
