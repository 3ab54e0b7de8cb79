package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"reactiontest/internal/game"
	"reactiontest/internal/results"
)

// eventBuffer is the per-session queue of game events awaiting a
// websocket reader. Slow or absent readers lose events rather than
// stalling the game machine.
const eventBuffer = 64

// Session is one player's run of one game.
type Session struct {
	ID        string
	OwnerID   string
	Type      results.TestType
	Game      game.Game
	Events    chan game.Event
	CreatedAt time.Time

	recordOnce sync.Once
}

// SessionStore keeps the live sessions and sweeps abandoned ones, so a
// closed browser tab does not leak a game machine forever.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
	go s.sweepStale()
	return s
}

func (s *SessionStore) Add(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Delete tears down the session's game and drops it from the store.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if ok {
		sess.Game.Teardown()
	}
}

func (s *SessionStore) sweepStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		var stale []*Session
		s.mu.Lock()
		now := time.Now()
		for id, sess := range s.sessions {
			if now.Sub(sess.CreatedAt) > s.ttl {
				stale = append(stale, sess)
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
		for _, sess := range stale {
			sess.Game.Teardown()
		}
	}
}

func newSessionID() string {
	return uuid.New().String()
}
