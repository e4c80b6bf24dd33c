// Package controller implements the search session behind every front end:
// connectivity and stats at startup, searching, result cards, the grouped
// detail view, printable profiles, reset and notifications.
//
// A Controller owns an explicit State. Front ends read snapshots through
// State and subscribe to change signals through Hub.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/stusearch/pkg/backend"
	"github.com/rubiojr/stusearch/pkg/history"
	"github.com/rubiojr/stusearch/pkg/log"
	"github.com/rubiojr/stusearch/pkg/metrics"
	"github.com/rubiojr/stusearch/pkg/notify"
	"github.com/rubiojr/stusearch/pkg/realtime"
	"github.com/rubiojr/stusearch/pkg/student"
	"golang.org/x/sync/errgroup"
)

// User facing messages.
const (
	MsgEmptyQuery   = "Iltimos, qidiruv so'rovini kiriting"
	MsgSearchFailed = "Qidiruvda xatolik yuz berdi"
	MsgTransport    = "Serverga ulanishda xatolik"
	MsgReset        = "Tizim tozalandi"
)

var (
	ErrEmptyQuery     = errors.New("empty search query")
	ErrRecordNotFound = errors.New("record not found in current results")
	// ErrRejected is returned when the backend answered success:false.
	ErrRejected = errors.New("search rejected by backend")
)

var logger = log.ForService("controller")

// Backend is the subset of the records backend the controller needs.
type Backend interface {
	Health(ctx context.Context) error
	Columns(ctx context.Context) (*backend.ColumnsResponse, error)
	Search(ctx context.Context, term string) (*backend.SearchResponse, time.Duration, error)
}

// Recorder receives one entry per issued search.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

type Controller struct {
	mu    sync.Mutex
	state State

	backend  Backend
	notes    *notify.Center
	hub      *realtime.Hub
	recorder Recorder
	session  string

	// fence drops answers to searches that are no longer the newest.
	fence  bool
	issued uint64

	notifyOpts []notify.Option
}

type Option func(*Controller)

// WithRecorder logs every issued search to r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithFencing makes the controller ignore answers to superseded searches.
// Without it the last answer to arrive wins.
func WithFencing(enabled bool) Option {
	return func(c *Controller) { c.fence = enabled }
}

// WithSession tags history entries with a session id.
func WithSession(id string) Option {
	return func(c *Controller) { c.session = id }
}

// WithNotifyOptions configures the notification center.
func WithNotifyOptions(opts ...notify.Option) Option {
	return func(c *Controller) { c.notifyOpts = append(c.notifyOpts, opts...) }
}

// New creates a controller in its initial state: status unknown, no results,
// placeholder visible.
func New(b Backend, opts ...Option) *Controller {
	c := &Controller{
		state:   initialState(),
		backend: b,
		hub:     realtime.NewHub(64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.notes = notify.NewCenter(append(c.notifyOpts, notify.WithPublisher(c.hub))...)
	return c
}

// Hub delivers state and notification events for this session.
func (c *Controller) Hub() *realtime.Hub {
	return c.hub
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	s := c.state.snapshot()
	c.mu.Unlock()
	s.Notifications = c.notes.Active()
	return s
}

// Notify shows a transient notification.
func (c *Controller) Notify(message string, sev notify.Severity) notify.Notification {
	return c.notes.Notify(message, sev)
}

// Close releases timers and listeners.
func (c *Controller) Close() {
	c.notes.Close()
	c.hub.Close()
}

// changed bumps the revision and signals listeners. Callers hold c.mu.
func (c *Controller) changed(reason string) {
	c.state.Revision++
	c.hub.Broadcast(realtime.NewStateEvent(c.state.Revision, reason))
}

// Startup probes the backend health and fetches stats concurrently. Both are
// best effort: failures only degrade the status and the record count. The
// first error is returned for logging.
func (c *Controller) Startup(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.probeHealth(ctx) })
	g.Go(func() error { return c.fetchStats(ctx) })
	return g.Wait()
}

func (c *Controller) probeHealth(ctx context.Context) error {
	err := c.backend.Health(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		logger.Warnf("health probe failed: %v", err)
		c.state.Status = StatusDisconnected
	} else {
		c.state.Status = StatusConnected
	}
	c.changed("health")
	return err
}

func (c *Controller) fetchStats(ctx context.Context) error {
	resp, err := c.backend.Columns(ctx)
	if err != nil {
		logger.Errorf("loading stats: %v", err)
		return fmt.Errorf("loading stats: %w", err)
	}
	if !resp.Success {
		logger.Errorf("loading stats: backend said %q", resp.Message)
		return fmt.Errorf("loading stats: %w", ErrRejected)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if resp.TotalStudents != nil {
		n := *resp.TotalStudents
		c.state.TotalRecords = &n
	}
	c.state.Columns = append([]string(nil), resp.Columns...)
	c.changed("stats")
	return nil
}

// Search runs one search for the trimmed input.
//
// An empty term raises a warning and sends nothing. A success:false answer
// raises an error notification and empties the results. A transport failure
// raises an error notification and keeps the previous results.
func (c *Controller) Search(ctx context.Context, input string) error {
	term := strings.TrimSpace(input)

	c.mu.Lock()
	c.state.Query = input
	if term == "" {
		c.mu.Unlock()
		c.notes.Notify(MsgEmptyQuery, notify.Warning)
		return ErrEmptyQuery
	}
	c.issued++
	seq := c.issued
	c.state.Loading = true
	c.state.ShowPlaceholder = false
	c.changed("loading")
	c.mu.Unlock()

	resp, elapsed, err := c.backend.Search(ctx, term)

	c.mu.Lock()
	if c.fence && seq != c.issued {
		c.mu.Unlock()
		logger.Debugf("dropping stale answer for %q (search %d, newest %d)", term, seq, c.issued)
		return nil
	}
	if elapsed > 0 {
		c.state.Latency = elapsed
		c.state.HasLatency = true
	}
	c.state.Loading = false

	entry := history.Entry{Session: c.session, Query: term, Latency: elapsed}
	var result error
	switch {
	case err != nil:
		c.changed("transport_error")
		c.mu.Unlock()
		logger.Errorf("search %q: %v", term, err)
		c.notes.Notify(MsgTransport, notify.Error)
		entry.Outcome = history.OutcomeTransportError
		result = fmt.Errorf("searching %q: %w", term, err)
	case !resp.Success:
		c.renderLocked(nil, term)
		c.mu.Unlock()
		msg := resp.Message
		if msg == "" {
			msg = MsgSearchFailed
		}
		c.notes.Notify(msg, notify.Error)
		entry.Outcome = history.OutcomeServerError
		result = fmt.Errorf("%w: %s", ErrRejected, msg)
	default:
		c.renderLocked(resp.Students, term)
		c.mu.Unlock()
		entry.Outcome = history.OutcomeOK
		entry.ResultCount = len(resp.Students)
		logger.Infof("search %q: %d results in %s", term, len(resp.Students), elapsed)
	}

	metrics.SearchesTotal.WithLabelValues(string(entry.Outcome)).Inc()
	c.record(ctx, entry)
	return result
}

func (c *Controller) record(ctx context.Context, e history.Entry) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		logger.Warnf("recording search history: %v", err)
	}
}

// RenderResults replaces the rendered result set with records, in order.
// An empty set shows the no-results view for term.
func (c *Controller) RenderResults(records []student.Record, term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderLocked(records, term)
}

func (c *Controller) renderLocked(records []student.Record, term string) {
	c.state.Results = append([]student.Record(nil), records...)
	c.state.Cards = student.NewCards(c.state.Results)
	c.state.ResultCount = len(records)
	c.state.NoResults = len(records) == 0
	c.state.LastTerm = term
	c.state.ShowPlaceholder = false
	c.changed("results")
}

// ShowDetails opens the grouped detail view for the record with key in the
// current results, replacing any open one.
func (c *Controller) ShowDetails(key string) (student.Detail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, _, ok := student.Find(c.state.Results, key)
	if !ok {
		return student.Detail{}, fmt.Errorf("%w: %q", ErrRecordNotFound, key)
	}
	d := student.NewDetail(rec, key)
	c.state.Detail = &d
	c.changed("detail")
	return d, nil
}

// CloseDetails closes the detail view, if open.
func (c *Controller) CloseDetails() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Detail == nil {
		return
	}
	c.state.Detail = nil
	c.changed("detail_closed")
}

// PrintProfile returns the printable profile for the record with key. It
// does not change the session state.
func (c *Controller) PrintProfile(key string) (student.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, _, ok := student.Find(c.state.Results, key)
	if !ok {
		return student.Profile{}, fmt.Errorf("%w: %q", ErrRecordNotFound, key)
	}
	return student.NewProfile(rec), nil
}

// Reset clears the input and the results and shows the placeholder again.
// No request is sent.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state.Query = ""
	c.state.LastTerm = ""
	c.state.Results = nil
	c.state.Cards = nil
	c.state.ResultCount = 0
	c.state.NoResults = false
	c.state.Detail = nil
	c.state.ShowPlaceholder = true
	c.changed("reset")
	c.mu.Unlock()

	c.notes.Notify(MsgReset, notify.Info)
}
