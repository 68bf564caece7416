package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
	"github.com/shef088/Hospital-Management-System-sub001/internal/transport"
)

// State is the session lifecycle phase.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session is the authentication state snapshot. User and Token are always
// set and cleared together.
type Session struct {
	User  *models.SessionUser
	Token string
}

// Authenticated reports whether the snapshot carries a live identity.
func (s Session) Authenticated() bool { return s.Token != "" && s.User != nil }

// Store owns the process-wide session: login, registration, logout,
// hydration from the persisted token, and expiry. Every other component
// reads session state through it; none mutate it.
type Store struct {
	mu        sync.RWMutex
	state     State
	session   Session
	expiry    *time.Timer
	subs      map[int]func(Session)
	nextSubID int

	tokens    TokenStore
	transport *transport.Client
	log       zerolog.Logger
}

func New(tokens TokenStore, log zerolog.Logger) *Store {
	return &Store{
		state:  StateAnonymous,
		subs:   make(map[int]func(Session)),
		tokens: tokens,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// UseTransport wires the HTTP client used for the auth endpoints. Set once
// during client construction; the transport in turn reads tokens back
// through Token, so the two are attached after both exist.
func (s *Store) UseTransport(t *transport.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transport = t
}

// Current returns the session snapshot.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// State returns the lifecycle phase.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token is the transport.TokenSource for this store.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// Subscribe registers fn to run after every session change. The returned
// func unregisters it.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(sess Session) {
	s.mu.RLock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(sess)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  models.SessionUser `json:"user"`
}

// Login authenticates against the API and installs the returned session.
// User and token are set together under one lock; a failed login leaves
// the store anonymous.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	s.mu.Lock()
	s.state = StateAuthenticating
	t := s.transport
	s.mu.Unlock()

	var resp loginResponse
	if err := t.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		s.mu.Lock()
		s.state = StateAnonymous
		s.session = Session{}
		s.mu.Unlock()
		return Session{}, err
	}

	sess := Session{User: &resp.User, Token: resp.Token}
	s.mu.Lock()
	s.session = sess
	s.state = StateAuthenticated
	s.mu.Unlock()

	if err := s.tokens.Save(ctx, resp.Token); err != nil {
		s.log.Warn().Err(err).Msg("token persist failed")
	}
	s.scheduleExpiry(resp.Token)

	s.log.Info().Str("user", resp.User.ID).Str("userType", string(resp.User.UserType)).Msg("logged in")
	s.notify(sess)
	return sess, nil
}

// Register creates an account. It does not authenticate; callers follow up
// with Login.
func (s *Store) Register(ctx context.Context, in models.RegisterInput) error {
	s.mu.RLock()
	t := s.transport
	s.mu.RUnlock()
	return t.Post(ctx, "/auth/register", in, nil)
}

// Logout tells the server best-effort, then clears local state. Subscribers
// observe the cleared session and react (cache clear, channel disconnect).
func (s *Store) Logout(ctx context.Context) {
	s.mu.RLock()
	t := s.transport
	authenticated := s.state == StateAuthenticated
	s.mu.RUnlock()
	if authenticated && t != nil {
		if err := t.Post(ctx, "/auth/logout", nil, nil); err != nil {
			s.log.Debug().Err(err).Msg("server logout failed")
		}
	}
	s.clear("logout")
}

// Expire clears the session without a server round-trip. Fired by the
// transport's 401 hook and by the token expiry timer.
func (s *Store) Expire(reason string) {
	s.clear(reason)
}

func (s *Store) clear(reason string) {
	s.mu.Lock()
	if s.state == StateAnonymous && s.session.Token == "" {
		s.mu.Unlock()
		return
	}
	s.session = Session{}
	s.state = StateAnonymous
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
	s.mu.Unlock()

	if err := s.tokens.Clear(context.Background()); err != nil {
		s.log.Warn().Err(err).Msg("token clear failed")
	}
	s.log.Info().Str("reason", reason).Msg("session cleared")
	s.notify(Session{})
}

// Hydrate restores the session from the persisted token at startup.
// Any failure (missing slot, unreadable file, expired token) leaves the
// store anonymous; hydration is optimistic, never fatal.
func (s *Store) Hydrate(ctx context.Context) {
	tok, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("token load failed, staying anonymous")
		return
	}
	if tok == "" {
		return
	}

	c, err := parseClaims(tok)
	if err != nil {
		s.log.Debug().Err(err).Msg("persisted token unusable, staying anonymous")
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("token clear failed")
		}
		return
	}

	sess := Session{User: c.user(), Token: tok}
	s.mu.Lock()
	s.session = sess
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.scheduleExpiry(tok)
	s.log.Info().Str("user", sess.User.ID).Msg("session hydrated")
	s.notify(sess)
}

func (s *Store) scheduleExpiry(token string) {
	c, err := parseClaims(token)
	if err != nil {
		return
	}
	d, ok := c.expiresIn()
	if !ok {
		return
	}
	s.mu.Lock()
	if s.expiry != nil {
		s.expiry.Stop()
	}
	s.expiry = time.AfterFunc(d, func() { s.Expire("token expired") })
	s.mu.Unlock()
}

// Close stops the expiry timer and releases the token store.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
	s.mu.Unlock()
	return s.tokens.Close()
}
