// Package session provides a server-side browser session store with
// inactivity-based expiry. Only an opaque session id travels in the
// cookie; values live in an in-memory cache and vanish after the TTL
// elapses without the session being touched.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/bluele/gcache"
	"github.com/gorilla/sessions"
)

const defaultMaxSessions = 4096

// Store implements gorilla's sessions.Store on top of a gcache TTL
// cache. Reading a session renews its expiry (sliding window).
type Store struct {
	cache   gcache.Cache
	ttl     time.Duration
	options sessions.Options
}

// Verify *Store satisfies sessions.Store at compile time.
var _ sessions.Store = (*Store)(nil)

// NewStore creates a session store whose entries expire after ttl of
// inactivity. maxSessions bounds the cache; 0 uses a default.
func NewStore(ttl time.Duration, maxSessions int) *Store {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	return &Store{
		cache: gcache.New(maxSessions).LRU().Build(),
		ttl:   ttl,
		options: sessions.Options{
			Path:     "/",
			HttpOnly: true,
		},
	}
}

// Get returns the named session, cached per request by the registry.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session identified by the request cookie, or returns a
// fresh one when the cookie is absent or the server-side entry expired.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	opts := s.options
	sess.Options = &opts
	sess.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}
	sess.ID = c.Value
	v, err := s.cache.Get(sess.ID)
	if err != nil {
		// Expired or evicted; keep the id so Save reuses the cookie.
		return sess, nil
	}
	values, ok := v.(map[interface{}]interface{})
	if !ok {
		return sess, nil
	}
	// Each request gets its own copy; cached maps are never mutated, so
	// parallel requests for the same session cannot race on them.
	sess.Values = copyValues(values)
	sess.IsNew = false
	// Touching the session renews the inactivity window.
	_ = s.cache.SetWithExpire(sess.ID, values, s.ttl)
	return sess, nil
}

// Save persists the session values server-side and sets the id cookie
// on first use. MaxAge < 0 drops the session entirely.
func (s *Store) Save(_ *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	if sess.Options != nil && sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			s.cache.Remove(sess.ID)
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}
	if sess.ID == "" {
		id, err := newID()
		if err != nil {
			return fmt.Errorf("session: generate id: %w", err)
		}
		sess.ID = id
		http.SetCookie(w, sessions.NewCookie(sess.Name(), sess.ID, sess.Options))
	}
	// Store a copy, not the request's live map. Concurrent saves for the
	// same session are last-write-wins.
	if err := s.cache.SetWithExpire(sess.ID, copyValues(sess.Values), s.ttl); err != nil {
		return fmt.Errorf("session: save %s: %w", sess.ID, err)
	}
	return nil
}

func copyValues(src map[interface{}]interface{}) map[interface{}]interface{} {
	dst := make(map[interface{}]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func newID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
