// Package review implementa la sesión de revisión/edición de una nota fiscal:
// carga única del borrador, reglas de validación por campo, avisos de conciliación
// y el envío (confirmar o actualizar) con clasificación de errores del backend.
package review

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/internal/application/ports"
	"github.com/jhoicas/notascan-api/internal/clock"
	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/internal/domain/entity"
)

// State estado de la sesión.
type State string

const (
	StateLoading    State = "loading"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success" // terminal
)

// SourceKind origen de los datos de la sesión.
type SourceKind string

const (
	SourceExtraction SourceKind = "extraction" // nota recién extraída; se confirma
	SourceInvoice    SourceKind = "invoice"    // nota guardada; se actualiza
	SourceOffline    SourceKind = "offline"    // CLI, sin backend
)

// Source identifica qué se está revisando.
type Source struct {
	Kind SourceKind
	ID   string // processingID o invoiceID
}

// DuplicateConflict conflicto de duplicado devuelto al confirmar. Solo se limpia
// con DismissDuplicate.
type DuplicateConflict struct {
	Message  string
	Existing entity.ExistingInvoice
}

// Slots errores por concepto. Cada slot guarda a lo sumo un mensaje.
type Slots struct {
	TaxIDError             string
	DateError              string
	GeneralValidationError string
	DuplicateConflict      *DuplicateConflict
}

// ExtractionMeta metadatos de la extracción IA.
type ExtractionMeta struct {
	Confidence          float64
	ImageCount          int
	PotentialDuplicates []entity.PotentialDuplicate
}

// Deps colaboradores de la sesión. Gateway y Lookup pueden ser nil (modo offline).
type Deps struct {
	Gateway  ports.InvoiceGateway
	Lookup   ports.TaxIDLookup
	Clock    clock.Clock
	Location *time.Location
	Logger   zerolog.Logger
}

// Session sesión de una pantalla de revisión. Segura para uso concurrente: las
// llamadas de red se hacen sin el lock y el estado Submitting impide reentrar.
type Session struct {
	mu sync.Mutex

	id      string
	source  Source
	gateway ports.InvoiceGateway
	lookup  ports.TaxIDLookup
	clock   clock.Clock
	loc     *time.Location
	log     zerolog.Logger

	state            State
	processingStatus string
	loadErrors       []string
	draft            entity.InvoiceDraft
	extraction       *ExtractionMeta
	slots            Slots
	alert            string
	enrichmentNote   string
	enriching        bool
	closed           bool
}

// NewSession crea una sesión en estado Loading.
func NewSession(id string, source Source, deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Session{
		id:      id,
		source:  source,
		gateway: deps.Gateway,
		lookup:  deps.Lookup,
		clock:   deps.Clock,
		loc:     deps.Location,
		log:     deps.Logger.With().Str("session_id", id).Str("source", string(source.Kind)).Logger(),
		state:   StateLoading,
	}
}

// ID identificador de la sesión.
func (s *Session) ID() string { return s.id }

// Source origen de la sesión.
func (s *Session) Source() Source { return s.source }

// State estado actual.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft copia del borrador actual.
func (s *Session) Draft() entity.InvoiceDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Slots copia de los errores actuales.
func (s *Session) Slots() Slots {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.slots
	if s.slots.DuplicateConflict != nil {
		dc := *s.slots.DuplicateConflict
		out.DuplicateConflict = &dc
	}
	return out
}

// Load carga el borrador. Solo la primera carga tiene efecto: las siguientes se
// ignoran para no pisar lo que el usuario ya editó. Devuelve si se aplicó.
func (s *Session) Load(d entity.InvoiceDraft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(d)
}

func (s *Session) loadLocked(d entity.InvoiceDraft) bool {
	if s.state != StateLoading {
		s.log.Debug().Str("state", string(s.state)).Msg("carga ignorada: la sesión ya tiene borrador")
		return false
	}
	s.draft = d.Clone()
	s.state = StateEditing
	s.processingStatus = ""
	s.loadErrors = nil
	s.revalidateLocked()
	s.log.Info().Int("items", len(d.Items)).Msg("borrador cargado")
	return true
}

// ApplyStatus consume una respuesta del endpoint de estado de la extracción.
// pending/processing solo se exponen para mostrar; extracted carga el borrador;
// error deja la sesión en Loading con los mensajes del backend.
func (s *Session) ApplyStatus(st *dto.ExtractionStatusDTO) {
	if st == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return
	}
	switch st.Status {
	case entity.ExtractionPending, entity.ExtractionProcessing:
		s.processingStatus = st.Status
	case entity.ExtractionExtracted:
		if st.ExtractedData == nil {
			s.processingStatus = entity.ExtractionError
			s.loadErrors = []string{MsgExtractionEmpty}
			return
		}
		data := st.ExtractedData
		s.extraction = &ExtractionMeta{
			Confidence:          data.Confidence,
			ImageCount:          data.ImageCount,
			PotentialDuplicates: potentialDuplicatesFromDTO(data.PotentialDuplicates),
		}
		d, err := DraftFromDTO(data.InvoiceDataDTO, s.loc)
		if err != nil {
			s.processingStatus = entity.ExtractionError
			s.loadErrors = []string{err.Error()}
			s.log.Warn().Err(err).Msg("datos extraídos ilegibles")
			return
		}
		s.loadLocked(d)
	case entity.ExtractionError:
		s.processingStatus = entity.ExtractionError
		s.loadErrors = append([]string(nil), st.Errors...)
		if len(s.loadErrors) == 0 {
			s.loadErrors = []string{MsgExtractionFailed}
		}
	default:
		s.log.Warn().Str("status", st.Status).Msg("estado de extracción desconocido")
		s.processingStatus = st.Status
	}
}

// DismissDuplicate descarta el aviso de duplicado sin tocar el borrador.
func (s *Session) DismissDuplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots.DuplicateConflict = nil
}

// TakeAlert devuelve el alerta bloqueante pendiente y la limpia (se muestra una vez).
func (s *Session) TakeAlert() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.alert
	s.alert = ""
	return a
}

// Close abandona la sesión; resultados de red que lleguen después se descartan.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// editableLocked error si el borrador no admite ediciones en el estado actual.
func (s *Session) editableLocked() error {
	switch s.state {
	case StateLoading:
		return domain.ErrSessionLoading
	case StateSubmitting:
		return domain.ErrSubmissionInFlight
	case StateSuccess:
		return domain.ErrSessionClosed
	}
	return nil
}

// Snapshot vista completa de la sesión (sin el alerta, ver TakeAlert).
func (s *Session) Snapshot() dto.ReviewSessionDTO {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := dto.ReviewSessionDTO{
		ID:               s.id,
		State:            string(s.state),
		Source:           string(s.source.Kind),
		SourceID:         s.source.ID,
		ProcessingStatus: s.processingStatus,
		LoadErrors:       append([]string(nil), s.loadErrors...),
		Errors: dto.ValidationSlotsDTO{
			TaxID:   s.slots.TaxIDError,
			Date:    s.slots.DateError,
			General: s.slots.GeneralValidationError,
		},
		EnrichmentNote: s.enrichmentNote,
	}
	if dc := s.slots.DuplicateConflict; dc != nil {
		out.Errors.DuplicateConflict = &dto.DuplicateConflictDTO{
			Message:        dc.Message,
			ExistingID:     dc.Existing.ID,
			ExistingNumber: dc.Existing.Number,
			ExistingDate:   dc.Existing.Date,
			ExistingTotal:  dc.Existing.Total,
		}
	}
	if s.extraction != nil {
		out.Extraction = &dto.ExtractionMetaDTO{
			Confidence:          s.extraction.Confidence,
			ImageCount:          s.extraction.ImageCount,
			PotentialDuplicates: potentialDuplicatesToDTO(s.extraction.PotentialDuplicates),
		}
	}
	if s.state == StateLoading {
		return out
	}
	out.Draft = draftToDTO(s.draft)
	out.Advisories = advisoriesToDTO(computeAdvisories(s.draft))
	out.CanSubmit = s.state == StateEditing && s.gateOK()
	return out
}
