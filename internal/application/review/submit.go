package review

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/pkg/nfe"
)

// Confirm corre el control previo y envía el borrador: confirma una extracción o
// actualiza una nota guardada según el origen. Nunca reintenta.
//
// Errores: domain.ErrValidationFailed si el control falla (sin llamar a la red);
// *domain.SubmitError con la clasificación del backend en cualquier otro fallo.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return domain.ErrSessionClosed
	case s.state == StateLoading:
		s.mu.Unlock()
		return domain.ErrSessionLoading
	case s.state == StateSubmitting:
		s.mu.Unlock()
		return domain.ErrSubmissionInFlight
	case s.state == StateSuccess:
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if !s.gateLocked() {
		s.mu.Unlock()
		return domain.ErrValidationFailed
	}
	if s.gateway == nil {
		s.mu.Unlock()
		return domain.ErrNoBackend
	}
	payload := BuildPayload(s.draft)
	source := s.source
	s.state = StateSubmitting
	s.alert = ""
	s.mu.Unlock()

	var err error
	switch source.Kind {
	case SourceInvoice:
		err = s.gateway.UpdateInvoice(ctx, source.ID, payload)
	default:
		err = s.gateway.ConfirmExtraction(ctx, source.ID, payload)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Debug().Err(err).Msg("resultado del envío descartado: sesión cerrada")
		return domain.ErrSessionClosed
	}
	if err == nil {
		s.state = StateSuccess
		s.log.Info().Str("source_id", source.ID).Msg("nota fiscal guardada")
		return nil
	}

	s.state = StateEditing
	se := classifySubmitError(err)
	switch se.Kind {
	case domain.SubmitErrorDuplicate:
		dc := &DuplicateConflict{Message: firstNonEmpty(se.Message, MsgDuplicate)}
		if se.Existing != nil {
			dc.Existing = *se.Existing
		}
		s.slots.DuplicateConflict = dc
	case domain.SubmitErrorInvalidTaxID:
		s.slots.TaxIDError = firstNonEmpty(se.Message, nfe.MsgCNPJInvalid)
	default:
		s.alert = alertText(se)
	}
	s.log.Warn().Err(err).Str("kind", se.Kind.String()).Int("status", se.Status).Msg("envío rechazado")
	return se
}

// classifySubmitError cualquier error que no venga clasificado del adaptador es no clasificado.
func classifySubmitError(err error) *domain.SubmitError {
	var se *domain.SubmitError
	if errors.As(err, &se) {
		return se
	}
	return &domain.SubmitError{Kind: domain.SubmitErrorUnclassified, Err: err}
}

// alertText mensaje estructurado del backend, luego el texto del error, luego genérico.
func alertText(se *domain.SubmitError) string {
	if m := strings.TrimSpace(se.Message); m != "" {
		return m
	}
	if se.Err != nil {
		if m := strings.TrimSpace(se.Err.Error()); m != "" {
			return m
		}
	}
	return MsgGenericSubmit
}

// EnrichTaxID consulta el CNPJ y completa la razón social. Solo disponible con un
// CNPJ completo, válido y sin error; una sola consulta a la vez.
func (s *Session) EnrichTaxID(ctx context.Context) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	taxID := s.draft.IssuerTaxID
	if s.lookup == nil || s.enriching || s.closed ||
		!nfe.IsValidCNPJ(taxID) || s.slots.TaxIDError != "" {
		s.mu.Unlock()
		return domain.ErrEnrichmentUnavailable
	}
	s.enriching = true
	s.slots.GeneralValidationError = ""
	s.mu.Unlock()

	res, err := s.lookup.LookupCNPJ(ctx, nfe.CNPJDigits(taxID))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.enriching = false
	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.state != StateEditing || s.draft.IssuerTaxID != taxID {
		s.log.Debug().Msg("resultado de la consulta de CNPJ descartado: el CNPJ cambió")
		return nil
	}
	if err != nil {
		msg := MsgEnrichmentFailed
		var le *domain.LookupError
		if errors.As(err, &le) && strings.TrimSpace(le.Hint) != "" {
			msg = le.Hint
		}
		s.slots.GeneralValidationError = msg
		s.log.Warn().Err(err).Msg("consulta de CNPJ falló")
		return err
	}
	name := ""
	if res != nil {
		name = firstNonEmpty(res.SuggestedName, res.Data.LegalName)
	}
	if name == "" {
		s.slots.GeneralValidationError = MsgEnrichmentFailed
		return &domain.LookupError{Message: "respuesta sin razón social"}
	}
	s.draft.IssuerName = name
	s.enrichmentNote = enrichmentNotePrefix + SourceLabel(res.Data.Source) + "."
	return nil
}

// SourceLabel nombre para mostrar de la fuente pública del CNPJ.
func SourceLabel(source string) string {
	switch strings.ToLower(source) {
	case "brasilapi":
		return "BrasilAPI"
	case "receitaws":
		return "ReceitaWS"
	case "":
		return "Receita Federal"
	}
	return source
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
