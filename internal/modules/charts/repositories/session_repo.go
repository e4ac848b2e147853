package repositories

import (
	"errors"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/chartgen/chartgen-api/internal/core/dataset"
)

// ErrUnknownSession marks a lookup for a session id that was never uploaded
// or has been deleted.
var ErrUnknownSession = errors.New("session not found")

// Session is one uploaded dataset with its profile.
type Session struct {
	ID        string
	Filename  string
	Frame     dataframe.DataFrame
	Metadata  dataset.Metadata
	CreatedAt time.Time
}

// SessionRepo stores uploaded datasets keyed by session id.
type SessionRepo interface {
	Save(session *Session)
	Get(id string) (*Session, error)
	Delete(id string) error
}

type sessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRepo() SessionRepo {
	return &sessionRepo{
		sessions: make(map[string]*Session),
	}
}

// Save stores the session, replacing any dataset already under that id.
func (r *sessionRepo) Save(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
}

func (r *sessionRepo) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return session, nil
}

func (r *sessionRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrUnknownSession
	}
	delete(r.sessions, id)
	return nil
}
