package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/recipe"
	"github.com/five82/galley/internal/storage"
)

// Persisted keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// ExpiredMessage is the notification raised when the backend rejects the
// current token.
const ExpiredMessage = "Session expired. Please log in again."

// ErrTokenMissing is returned by Login when the backend answers without a token.
var ErrTokenMissing = errors.New("token missing in login response")

// State is a snapshot of the session. User is non-nil exactly when Token is
// non-empty.
type State struct {
	Token        string
	User         *recipe.User
	Initializing bool
}

// SignedIn reports whether a session exists.
func (s State) SignedIn() bool {
	return s.Token != ""
}

// EventKind classifies session events.
type EventKind int

const (
	EventLoggedIn EventKind = iota
	EventLoggedOut
	EventExpired
)

// Event is published on every session transition.
type Event struct {
	Kind    EventKind
	User    *recipe.User
	Message string
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
}

// Store owns the signed-in identity. It is safe for concurrent use.
type Store struct {
	kv     storage.KV
	auth   Authenticator
	logger *slog.Logger

	mu    sync.Mutex
	state State

	hydrate sync.Once
	events  chan Event
}

// New returns a Store that is still initializing. Call Hydrate before use.
func New(kv storage.KV, auth Authenticator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		kv:     kv,
		auth:   auth,
		logger: logger,
		state:  State{Initializing: true},
		events: make(chan Event, 16),
	}
}

// Events delivers session transitions. Events are dropped when nobody reads.
func (s *Store) Events() <-chan Event {
	return s.events
}

// State returns a copy of the current session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Hydrate restores the persisted session. Only the first call has an effect;
// afterwards Initializing is false for good.
func (s *Store) Hydrate() {
	s.hydrate.Do(func() {
		token, user := s.load()
		s.mu.Lock()
		s.state = State{Token: token, User: user}
		s.mu.Unlock()
		if token != "" {
			s.logger.Info("session restored", "user", user.Email)
		}
	})
}

func (s *Store) load() (string, *recipe.User) {
	token, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		s.logger.Warn("read persisted token", "error", err)
		return "", nil
	}
	token = strings.TrimSpace(token)
	rawUser, hasUser, err := s.kv.Get(UserKey)
	if err != nil {
		s.logger.Warn("read persisted user", "error", err)
		hasUser = false
	}

	if !ok || token == "" {
		if hasUser {
			s.remove(UserKey)
		}
		return "", nil
	}

	if hasUser {
		var u recipe.User
		if err := json.Unmarshal([]byte(rawUser), &u); err == nil {
			return token, &u
		}
		s.logger.Warn("discarding corrupt persisted user", "error", err)
		s.remove(UserKey)
	}
	u := userFromClaims(token)
	return token, &u
}

// Login authenticates and, on success, persists then publishes the session.
// On failure the existing session is untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	token := strings.TrimSpace(resp.Token)
	if token == "" {
		return ErrTokenMissing
	}
	user := recipe.User{Name: resp.Name, Email: resp.Email}
	if user.Email == "" {
		user.Email = strings.TrimSpace(email)
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.kv.Set(UserKey, string(payload)); err != nil {
		s.remove(TokenKey)
		return fmt.Errorf("persist user: %w", err)
	}
	s.state.Token = token
	s.state.User = &user
	s.state.Initializing = false
	s.logger.Info("logged in", "user", user.Email)
	s.publish(Event{Kind: EventLoggedIn, User: &user})
	return nil
}

// Logout clears the session in memory and storage. It never fails.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.publish(Event{Kind: EventLoggedOut})
}

// Rejected handles a 401 for a request issued with issuedToken. Only a
// rejection of the token that is still current ends the session.
func (s *Store) Rejected(issuedToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if issuedToken == "" || issuedToken != s.state.Token {
		s.logger.Debug("ignoring stale rejection")
		return
	}
	s.clear()
	s.logger.Info("session expired")
	s.publish(Event{Kind: EventExpired, Message: ExpiredMessage})
}

// clear must be called with mu held.
func (s *Store) clear() {
	s.state.Token = ""
	s.state.User = nil
	s.state.Initializing = false
	s.remove(TokenKey)
	s.remove(UserKey)
}

func (s *Store) remove(key string) {
	if err := s.kv.Remove(key); err != nil {
		s.logger.Warn("remove persisted key", "key", key, "error", err)
	}
}

func (s *Store) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("session event dropped", "kind", ev.Kind)
	}
}

// Expiry returns the token's exp claim. The signature is not verified: the
// value is for display and never ends a session by itself.
func (s *Store) Expiry() (time.Time, bool) {
	claims, ok := parseClaims(s.Token())
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func parseClaims(token string) (jwt.MapClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func userFromClaims(token string) recipe.User {
	claims, ok := parseClaims(token)
	if !ok {
		return recipe.User{}
	}
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	u := recipe.User{Name: str("name"), Email: str("email")}
	if u.Email == "" {
		if sub, err := claims.GetSubject(); err == nil && strings.Contains(sub, "@") {
			u.Email = sub
		}
	}
	return u
}
