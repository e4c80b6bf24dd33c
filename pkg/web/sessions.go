package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/rubiojr/stusearch/pkg/metrics"
)

const sessionCookie = "stusearch_session"

type session struct {
	id       string
	ctrl     *controller.Controller
	lastSeen time.Time
}

// sessions maps browser cookies to their own search controller.
type sessions struct {
	mu    sync.Mutex
	byID  map[string]*session
	ttl   time.Duration
	newFn func(id string) *controller.Controller
}

func newSessions(ttl time.Duration, newFn func(id string) *controller.Controller) *sessions {
	return &sessions{
		byID:  make(map[string]*session),
		ttl:   ttl,
		newFn: newFn,
	}
}

// get returns the session for r, creating one (and setting the cookie) when
// the request has none or an unknown one. New sessions start their backend
// probes in the background.
func (s *sessions) get(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		sess, ok := s.byID[c.Value]
		if ok {
			sess.lastSeen = time.Now()
		}
		s.mu.Unlock()
		if ok {
			return sess
		}
	}

	id := uuid.NewString()
	sess := &session{id: id, ctrl: s.newFn(id), lastSeen: time.Now()}

	s.mu.Lock()
	s.byID[id] = sess
	n := len(s.byID)
	s.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	go func() {
		if err := sess.ctrl.Startup(context.Background()); err != nil {
			logger.Debugf("session %s startup: %v", id, err)
		}
	}()
	logger.Debugf("new session %s", id)
	return sess
}

// lookup returns an existing session without creating one.
func (s *sessions) lookup(r *http.Request) (*session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[c.Value]
	if ok {
		sess.lastSeen = time.Now()
	}
	return sess, ok
}

// sweep drops sessions idle for longer than the ttl.
func (s *sessions) sweep(now time.Time) int {
	s.mu.Lock()
	var expired []*session
	for id, sess := range s.byID {
		if now.Sub(sess.lastSeen) > s.ttl {
			expired = append(expired, sess)
			delete(s.byID, id)
		}
	}
	n := len(s.byID)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.ctrl.Close()
	}
	metrics.ActiveSessions.Set(float64(n))
	return len(expired)
}

func (s *sessions) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *sessions) closeAll() {
	s.mu.Lock()
	all := s.byID
	s.byID = make(map[string]*session)
	s.mu.Unlock()
	for _, sess := range all {
		sess.ctrl.Close()
	}
	metrics.ActiveSessions.Set(0)
}
