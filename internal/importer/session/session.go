package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"mapa-service/internal/importer/model"
	"mapa-service/internal/store"
)

var (
	ErrNotFound     = errors.New("sessão de importação não encontrada")
	ErrInvalidState = errors.New("sessão não está aguardando confirmação")
)

type State string

const (
	StateUpload    State = "upload"
	StatePreview   State = "preview"
	StateImporting State = "importing"
	StateSuccess   State = "success"
)

// Session is a snapshot of one import as it moves through its states.
type Session struct {
	ID        string         `json:"id"`
	Flow      model.FlowName `json:"flow"`
	FileName  string         `json:"fileName"`
	State     State          `json:"state"`
	Preview   *model.Preview `json:"preview,omitempty"`
	Result    *store.Result  `json:"result,omitempty"`
	LastError string         `json:"lastError,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// WriteFunc performs the store write of a confirmed preview.
type WriteFunc func(ctx context.Context, s Session) (store.Result, error)

// Manager keeps sessions in memory; they are lost on restart.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create registers a freshly uploaded file.
func (m *Manager) Create(flow model.FlowName, fileName string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &Session{
		ID:        m.newID(),
		Flow:      flow,
		FileName:  fileName,
		State:     StateUpload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[s.ID] = s
	return *s
}

// SetPreview moves an uploaded session to preview.
func (m *Manager) SetPreview(id string, p model.Preview) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	if s.State != StateUpload {
		return *s, ErrInvalidState
	}
	s.Preview = &p
	s.State = StatePreview
	s.UpdatedAt = m.now()
	return *s, nil
}

func (m *Manager) Get(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	return *s, nil
}

// Discard drops a session that is not being written.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return err
	}
	if s.State == StateImporting {
		return ErrInvalidState
	}
	delete(m.sessions, id)
	return nil
}

// Commit runs write once for a session in preview. The session is held
// in importing for the duration, so a concurrent commit gets
// ErrInvalidState. On failure it returns to preview with the error kept.
func (m *Manager) Commit(ctx context.Context, id string, write WriteFunc) (Session, error) {
	m.mu.Lock()
	s, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return Session{}, err
	}
	if s.State != StatePreview {
		snap := *s
		m.mu.Unlock()
		return snap, ErrInvalidState
	}
	s.State = StateImporting
	s.LastError = ""
	s.UpdatedAt = m.now()
	snap := *s
	m.mu.Unlock()

	res, werr := write(ctx, snap)

	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = m.now()
	if werr != nil {
		s.State = StatePreview
		s.LastError = werr.Error()
		return *s, werr
	}
	s.State = StateSuccess
	s.Result = &res
	return *s, nil
}

// lookup must be called with mu held. Expired sessions are treated as
// missing.
func (m *Manager) lookup(id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(s) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) expired(s *Session) bool {
	return m.ttl > 0 && s.State != StateImporting && m.now().Sub(s.UpdatedAt) > m.ttl
}

// Sweep removes expired sessions and reports how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.Sweep()
		}
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
