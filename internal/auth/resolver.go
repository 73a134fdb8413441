package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/floodyboy/sync-party/internal/models"
)

// ErrNotAuthenticated is returned when no actor can be resolved for a
// request.
var ErrNotAuthenticated = errors.New("not authenticated")

// ActorResolver produces the {id, role} actor for a request. The
// transport carrying the identity is deliberately opaque to the rest
// of the system.
type ActorResolver interface {
	Resolve(r *http.Request) (models.Actor, error)
}

// SessionRegistry is a token-to-actor registry backing the default
// resolver. Tokens are minted at login and dropped at logout; they are
// process-local, clients resync fully after a restart anyway.
type SessionRegistry struct {
	mu     sync.RWMutex
	actors map[string]models.Actor
}

// NewSessionRegistry creates an empty session registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{actors: make(map[string]models.Actor)}
}

// Issue mints a new random token for the actor
func (s *SessionRegistry) Issue(actor models.Actor) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.actors[token] = actor
	s.mu.Unlock()

	return token, nil
}

// Revoke drops the token from the registry
func (s *SessionRegistry) Revoke(token string) {
	s.mu.Lock()
	delete(s.actors, token)
	s.mu.Unlock()
}

// Lookup returns the actor for a token
func (s *SessionRegistry) Lookup(token string) (models.Actor, bool) {
	s.mu.RLock()
	actor, ok := s.actors[token]
	s.mu.RUnlock()
	return actor, ok
}

// Resolve implements ActorResolver. The token is read from the
// Authorization bearer header, or from the "token" query parameter for
// websocket upgrades where headers are awkward for browser clients.
func (s *SessionRegistry) Resolve(r *http.Request) (models.Actor, error) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return models.Actor{}, ErrNotAuthenticated
	}

	actor, ok := s.Lookup(token)
	if !ok {
		return models.Actor{}, ErrNotAuthenticated
	}
	return actor, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimPrefix(header, prefix)
	}
	return ""
}
