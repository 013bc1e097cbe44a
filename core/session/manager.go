package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sonr-io/motr-gateway/core/cookie"
	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/core/logger"
)

// keyPrefix namespaces session records in the shared store.
const keyPrefix = "session:"

// Store is the key-value repository sessions are persisted in.
type Store = kv.Store

// CookieCodec reads and writes the session cookie. *cookie.Manager satisfies it.
type CookieCodec interface {
	Read(r *http.Request, name string) (string, error)
	Write(w http.ResponseWriter, name, value string, opts ...cookie.Option) error
	Delete(w http.ResponseWriter, name string)
}

// Manager loads, creates and mutates sessions referenced by a cookie.
// Every write refreshes lastActivityAt and the record TTL. Concurrent
// mutations of one session are last-writer-wins.
type Manager struct {
	store      *kv.Namespace
	cookies    CookieCodec
	cookieName string
	ttl        time.Duration
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
}

// NewManager creates a session manager over store.
func NewManager(store Store, cookies CookieCodec, opts ...Option) *Manager {
	m := &Manager{
		store:      kv.NewNamespace(store, keyPrefix),
		cookies:    cookies,
		cookieName: "session_id",
		ttl:        24 * time.Hour,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// cookieID returns the verified id from the request cookie, or "".
// A tampered cookie counts as absent.
func (m *Manager) cookieID(r *http.Request) string {
	id, err := m.cookies.Read(r, m.cookieName)
	if err != nil {
		return ""
	}
	return id
}

// Get loads the session referenced by r without creating or refreshing it.
func (m *Manager) Get(ctx context.Context, r *http.Request) (Session, error) {
	id := m.cookieID(r)
	if id == "" {
		return Session{}, ErrNotFound
	}
	return m.load(ctx, id)
}

func (m *Manager) load(ctx context.Context, id string) (Session, error) {
	s, err := kv.GetJSON[Session](ctx, m.store, id)
	if errors.Is(err, kv.ErrNotFound) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, errors.Join(ErrLoadSession, err)
	}
	s.ID = id
	return s, nil
}

func (m *Manager) save(ctx context.Context, s Session) error {
	if err := kv.PutJSON(ctx, m.store, s.ID, s, m.ttl); err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	return nil
}

func (m *Manager) create(ctx context.Context) (Session, error) {
	now := m.now().UnixMilli()
	s := Session{
		ID:             m.newID(),
		CreatedAt:      now,
		LastActivityAt: now,
		Auth:           &Auth{},
	}
	if err := m.save(ctx, s); err != nil {
		return Session{}, err
	}
	m.logger.DebugContext(ctx, "session created", logger.SessionID(s.ID))
	return s, nil
}

// GetOrCreate returns the session referenced by the request cookie, creating
// a fresh one when the cookie is absent, invalid, or points to a missing or
// expired record. issued reports whether the returned id differs from the
// inbound cookie, in which case the caller must set the cookie.
func (m *Manager) GetOrCreate(ctx context.Context, r *http.Request) (s Session, issued bool, err error) {
	id := m.cookieID(r)
	if id != "" {
		s, err = m.load(ctx, id)
		switch {
		case err == nil:
			if m.now().Sub(time.UnixMilli(s.CreatedAt)) <= m.ttl {
				s.LastActivityAt = m.now().UnixMilli()
				if err := m.save(ctx, s); err != nil {
					return Session{}, false, err
				}
				return s, false, nil
			}
			if err := m.store.Delete(ctx, id); err != nil {
				return Session{}, false, errors.Join(ErrDeleteSession, err)
			}
		case !errors.Is(err, ErrNotFound):
			return Session{}, false, err
		}
	}

	s, err = m.create(ctx)
	if err != nil {
		return Session{}, false, err
	}
	return s, true, nil
}

// Update loads or creates the session, applies fn and writes it back.
func (m *Manager) Update(ctx context.Context, r *http.Request, fn func(*Session) error) (Session, bool, error) {
	s, issued, err := m.GetOrCreate(ctx, r)
	if err != nil {
		return Session{}, false, err
	}
	if err := fn(&s); err != nil {
		return Session{}, false, err
	}
	s.LastActivityAt = m.now().UnixMilli()
	if err := m.save(ctx, s); err != nil {
		return Session{}, false, err
	}
	return s, issued, nil
}

// UpdatePreferences merges prefs into the session preferences.
func (m *Manager) UpdatePreferences(ctx context.Context, r *http.Request, prefs Preferences) (Session, bool, error) {
	if err := prefs.Validate(); err != nil {
		return Session{}, false, err
	}
	return m.Update(ctx, r, func(s *Session) error {
		if s.Preferences == nil {
			s.Preferences = &Preferences{}
		}
		s.Preferences.merge(prefs)
		return nil
	})
}

// RecordVisit marks that the visitor has seen the auth page named page.
func (m *Manager) RecordVisit(ctx context.Context, r *http.Request, page string) (Session, bool, error) {
	if page == "" {
		return Session{}, false, ErrMissingPage
	}
	return m.Update(ctx, r, func(s *Session) error {
		a := s.auth()
		a.HasVisitedBefore = true
		a.LastAuthPage = page
		return nil
	})
}

// RegistrationStarted marks the start of account registration.
func (m *Manager) RegistrationStarted(ctx context.Context, r *http.Request) (Session, bool, error) {
	return m.Update(ctx, r, func(s *Session) error {
		now := m.now().UnixMilli()
		a := s.auth()
		a.HasVisitedBefore = true
		a.HasAccount = false
		a.LastAuthPage = "register"
		a.RegistrationStartedAt = &now
		return nil
	})
}

// RegistrationCompleted marks the visitor as having an account.
func (m *Manager) RegistrationCompleted(ctx context.Context, r *http.Request) (Session, bool, error) {
	return m.Update(ctx, r, func(s *Session) error {
		a := s.auth()
		a.HasAccount = true
		a.RegistrationStartedAt = nil
		return nil
	})
}

// Authenticate binds the session to a user.
func (m *Manager) Authenticate(ctx context.Context, r *http.Request, userID, username string) (Session, bool, error) {
	if userID == "" {
		return Session{}, false, ErrMissingUserID
	}
	return m.Update(ctx, r, func(s *Session) error {
		s.Authenticated = true
		s.UserID = userID
		s.Username = username
		return nil
	})
}

// Logout deletes the record referenced by the request cookie. A missing
// cookie or record is not an error.
func (m *Manager) Logout(ctx context.Context, r *http.Request) error {
	id := m.cookieID(r)
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}
	m.logger.DebugContext(ctx, "session deleted", logger.SessionID(id))
	return nil
}

// SetCookie writes the session cookie for id.
func (m *Manager) SetCookie(w http.ResponseWriter, id string) error {
	return m.cookies.Write(w, m.cookieName, id)
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	m.cookies.Delete(w, m.cookieName)
}
