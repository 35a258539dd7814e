package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/notascan-api/internal/application/ports"
	"github.com/jhoicas/notascan-api/internal/clock"
	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/pkg/logger"
)

// DefaultSessionTTL inactividad tras la cual una sesión se descarta.
const DefaultSessionTTL = 30 * time.Minute

// ManagerConfig opciones del gestor de sesiones.
type ManagerConfig struct {
	TTL      time.Duration
	Location *time.Location
}

type entry struct {
	session  *Session
	owner    string
	lastSeen time.Time
}

// Manager guarda las sesiones de revisión abiertas, una por pantalla, asociadas al
// usuario que las abrió. Las sesiones inactivas se purgan al acceder.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	gateway ports.InvoiceGateway
	lookup  ports.TaxIDLookup
	clock   clock.Clock
	ttl     time.Duration
	loc     *time.Location
	log     *logger.Logger
	newID   func() string
}

// NewManager crea el gestor. clk nil usa el reloj del sistema.
func NewManager(gateway ports.InvoiceGateway, lookup ports.TaxIDLookup, clk clock.Clock, cfg ManagerConfig, log *logger.Logger) *Manager {
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		sessions: make(map[string]*entry),
		gateway:  gateway,
		lookup:   lookup,
		clock:    clk,
		ttl:      cfg.TTL,
		loc:      cfg.Location,
		log:      log.WithComponent("review"),
		newID:    func() string { return uuid.New().String() },
	}
}

func (m *Manager) newSession(source Source) *Session {
	return NewSession(m.newID(), source, Deps{
		Gateway:  m.gateway,
		Lookup:   m.lookup,
		Clock:    m.clock,
		Location: m.loc,
		Logger:   m.log.Zerolog(),
	})
}

// StartExtraction abre la revisión de una extracción IA y consulta su estado una vez.
// Si la extracción sigue en curso la sesión queda en Loading (ver Refresh).
func (m *Manager) StartExtraction(ctx context.Context, owner, processingID string) (*Session, error) {
	if processingID == "" {
		return nil, fmt.Errorf("%w: processing_id requerido", domain.ErrInvalidInput)
	}
	st, err := m.gateway.GetExtractionStatus(ctx, processingID)
	if err != nil {
		return nil, fmt.Errorf("estado de extracción %s: %w", processingID, err)
	}
	s := m.newSession(Source{Kind: SourceExtraction, ID: processingID})
	s.ApplyStatus(st)
	m.put(s, owner)
	m.log.Info().Str("session_id", s.ID()).Str("processing_id", processingID).Str("status", st.Status).Msg("revisión de extracción abierta")
	return s, nil
}

// StartEdit abre la edición de una nota ya guardada.
func (m *Manager) StartEdit(ctx context.Context, owner, invoiceID string) (*Session, error) {
	if invoiceID == "" {
		return nil, fmt.Errorf("%w: invoice_id requerido", domain.ErrInvalidInput)
	}
	inv, err := m.gateway.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("nota %s: %w", invoiceID, err)
	}
	d, err := DraftFromDTO(inv.InvoiceDataDTO, m.loc)
	if err != nil {
		return nil, fmt.Errorf("nota %s: %w", invoiceID, err)
	}
	s := m.newSession(Source{Kind: SourceInvoice, ID: invoiceID})
	s.Load(d)
	m.put(s, owner)
	m.log.Info().Str("session_id", s.ID()).Str("invoice_id", invoiceID).Msg("edición de nota abierta")
	return s, nil
}

func (m *Manager) put(s *Session, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeLocked()
	m.sessions[s.ID()] = &entry{session: s, owner: owner, lastSeen: m.clock.Now()}
}

// Get sesión del usuario. ErrNotFound si no existe o expiró; ErrForbidden si es de otro usuario.
func (m *Manager) Get(owner, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeLocked()
	e, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.owner != owner {
		return nil, domain.ErrForbidden
	}
	e.lastSeen = m.clock.Now()
	return e.session, nil
}

// Refresh vuelve a consultar el estado de una extracción que sigue en Loading.
// En cualquier otro caso devuelve la sesión sin tocarla.
func (m *Manager) Refresh(ctx context.Context, owner, id string) (*Session, error) {
	s, err := m.Get(owner, id)
	if err != nil {
		return nil, err
	}
	if s.Source().Kind != SourceExtraction || s.State() != StateLoading {
		return s, nil
	}
	st, err := m.gateway.GetExtractionStatus(ctx, s.Source().ID)
	if err != nil {
		return s, fmt.Errorf("estado de extracción %s: %w", s.Source().ID, err)
	}
	s.ApplyStatus(st)
	return s, nil
}

// Discard cierra la sesión; un envío en curso termina pero su resultado se descarta.
func (m *Manager) Discard(owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.owner != owner {
		return domain.ErrForbidden
	}
	e.session.Close()
	delete(m.sessions, id)
	return nil
}

// Len cantidad de sesiones abiertas.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) purgeLocked() {
	now := m.clock.Now()
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.ttl {
			e.session.Close()
			delete(m.sessions, id)
			m.log.Debug().Str("session_id", id).Msg("sesión expirada")
		}
	}
}
