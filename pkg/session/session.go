// Package session provides cookie-identified server-side sessions stored in
// a cache.Store. The dashboard keeps OAuth tokens and the resolved store ID
// here instead of in the browser.
//
//	mgr := session.NewManager(store, session.DefaultOptions())
//	r.Use(mgr.Middleware())
//
//	sess := session.FromCtx(r)
//	sess.Set("store_id", "store_42")
//	_ = sess.Save(r.Context(), w)
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yuimaru-ship/storefront/pkg/cache"
	"github.com/yuimaru-ship/storefront/pkg/logger"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "yuimaru_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// Manager loads and persists sessions.
type Manager struct {
	store cache.Store
	opts  Options
}

func NewManager(store cache.Store, opts Options) *Manager {
	return &Manager{store: store, opts: opts}
}

func storeKey(id string) string { return "session:" + id }

// Session is the per-request handle. Values are JSON round-tripped, so
// callers should store strings, numbers and bools only.
type Session struct {
	id      string
	staleID string
	data    map[string]interface{}
	ttl     time.Duration
	mgr     *Manager
	changed bool
}

// Load returns the session named by the request cookie, or a fresh one.
func (m *Manager) Load(r *http.Request) *Session {
	sess := &Session{mgr: m, ttl: m.opts.TTL, data: map[string]interface{}{}}

	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		sess.id = uuid.NewString()
		return sess
	}

	sess.id = cookie.Value
	raw, err := m.store.Get(r.Context(), storeKey(sess.id))
	switch {
	case errors.Is(err, cache.ErrMiss):
	case err != nil:
		logger.WithCtx(r.Context()).Warn("session: load failed", "error", err)
	default:
		if err := json.Unmarshal(raw, &sess.data); err != nil {
			logger.WithCtx(r.Context()).Warn("session: corrupt record", "error", err)
			sess.data = map[string]interface{}{}
		}
	}
	return sess
}

func (s *Session) ID() string { return s.id }

func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) GetString(key string) string {
	v, _ := s.data[key].(string)
	return v
}

func (s *Session) GetBool(key string) bool {
	v, _ := s.data[key].(bool)
	return v
}

func (s *Session) Delete(keys ...string) {
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			s.changed = true
		}
	}
}

// Flash stores a message shown once on the next page render.
func (s *Session) Flash(key, message string) {
	s.Set("_flash_"+key, message)
}

func (s *Session) GetFlash(key string) string {
	v := s.GetString("_flash_" + key)
	if v != "" {
		s.Delete("_flash_" + key)
	}
	return v
}

// Invalidate drops all data and rotates the session ID.
func (s *Session) Invalidate() {
	if s.staleID == "" {
		s.staleID = s.id
	}
	s.id = uuid.NewString()
	s.data = map[string]interface{}{}
	s.changed = true
}

// CapTTL shortens the session lifetime to d when d is smaller than the
// configured TTL.
func (s *Session) CapTTL(d time.Duration) {
	if d > 0 && d < s.ttl {
		s.ttl = d
		s.changed = true
	}
}

// Save persists changed data and (re)writes the cookie.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	if s.staleID != "" {
		if err := s.mgr.store.Del(ctx, storeKey(s.staleID)); err != nil {
			logger.WithCtx(ctx).Warn("session: delete rotated record", "error", err)
		}
		s.staleID = ""
	}

	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.mgr.store.Set(ctx, storeKey(s.id), raw, s.ttl); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	opts := s.mgr.opts
	http.SetCookie(w, &http.Cookie{
		Name:     opts.CookieName,
		Value:    s.id,
		Path:     opts.Path,
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})

	s.changed = false
	return nil
}

type ctxKey struct{}

// Middleware loads the session and stores it in the request context.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := m.Load(r)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

// FromCtx returns the session loaded by Middleware. Outside the middleware
// it returns a detached in-memory session that is never persisted.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{
		id:   uuid.NewString(),
		data: map[string]interface{}{},
		ttl:  DefaultOptions().TTL,
		mgr:  NewManager(cache.NewMemoryStore(), DefaultOptions()),
	}
}

// New returns an unsaved session bound to m. Used by services and tests
// that work outside an HTTP request.
func (m *Manager) New() *Session {
	return &Session{id: uuid.NewString(), data: map[string]interface{}{}, ttl: m.opts.TTL, mgr: m}
}
