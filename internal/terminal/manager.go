package terminal

import (
	"sync"

	"go-pos-terminal/internal/cart"

	"github.com/shopspring/decimal"
)

// Session pairs one terminal with its in-progress cart. Cart mutations run
// under the session mutex so each HTTP request observes and applies them
// atomically, matching the one-sale-per-terminal model.
type Session struct {
	ID string

	mu   sync.Mutex
	cart *cart.Cart
}

// Do runs fn with exclusive access to the session's cart.
func (s *Session) Do(fn func(*cart.Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cart)
}

// Manager hands out one Session per terminal ID, creating it on first use.
// There is no ambient global cart; everything goes through a session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	taxRate  func() decimal.Decimal
}

// NewManager builds a registry. taxRate is consulted once per new session,
// when its cart is opened; changing the store tax rate affects the next
// sale, not the one in progress.
func NewManager(taxRate func() decimal.Decimal) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		taxRate:  taxRate,
	}
}

// Session returns the terminal's session, opening a fresh cart if this is
// the first time the terminal is seen.
func (m *Manager) Session(terminalID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[terminalID]; ok {
		return s
	}
	s := &Session{ID: terminalID, cart: cart.New(m.taxRate())}
	m.sessions[terminalID] = s
	return s
}

// Reset drops a terminal's session entirely. The next request opens a new
// cart with the current tax rate.
func (m *Manager) Reset(terminalID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, terminalID)
}
