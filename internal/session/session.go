// Package session keeps the in-memory per-user purchase session and the
// state machine that governs it.
package session

import (
	"sync"
	"time"
)

// Session is the mutable record tracked per user. Locale is sticky: it
// survives every reset and is only changed by an explicit language switch.
type Session struct {
	UserID      int64
	State       State
	PlanID      string
	PlanName    string
	Amount      int
	Locale      string
	Version     string
	ProofFileID string
	WindowEnds  time.Time
	EnteredAt   time.Time
}

// HasPlan reports whether payment-specific fields are populated.
func (s *Session) HasPlan() bool {
	return s.PlanName != "" && s.Amount > 0
}

// Store is a concurrency-safe map of user sessions. Mutations for a single
// user are serialized through Apply, which holds the store lock for the
// duration of the read-modify-write.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns a copy of the user's session. A user without a session gets a
// fresh idle one (not persisted until a mutation happens).
func (st *Store) Get(userID int64) Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if s, ok := st.sessions[userID]; ok {
		return *s
	}
	return Session{UserID: userID, State: StateIdle}
}

// Apply runs fn against the user's session under the store lock. The session
// is created as idle if absent. If fn returns an error the mutation is kept
// as fn left it; fn is expected to not partially mutate on failure.
func (st *Store) Apply(userID int64, fn func(*Session) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{UserID: userID, State: StateIdle, EnteredAt: time.Now()}
		st.sessions[userID] = s
	}
	return fn(s)
}

// Reset clears payment-specific fields back to idle, preserving locale.
func (st *Store) Reset(userID int64) {
	_ = st.Apply(userID, func(s *Session) error {
		ResetSession(s)
		return nil
	})
}

// ResetSession clears payment fields on a session already held under the
// store lock. Locale survives.
func ResetSession(s *Session) {
	s.State = StateIdle
	s.PlanID = ""
	s.PlanName = ""
	s.Amount = 0
	s.Version = ""
	s.ProofFileID = ""
	s.WindowEnds = time.Time{}
	s.EnteredAt = time.Now()
}

// SetLocale records an explicit language choice.
func (st *Store) SetLocale(userID int64, locale string) {
	_ = st.Apply(userID, func(s *Session) error {
		s.Locale = locale
		return nil
	})
}

// Locale returns the user's chosen locale, empty if never set.
func (st *Store) Locale(userID int64) string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if s, ok := st.sessions[userID]; ok {
		return s.Locale
	}
	return ""
}

// Range calls fn with a copy of every session until fn returns false.
func (st *Store) Range(fn func(Session) bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, s := range st.sessions {
		if !fn(*s) {
			return
		}
	}
}

// Len returns the number of tracked sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
