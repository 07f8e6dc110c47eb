package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryStore struct {
	mu     sync.Mutex
	rec    *Record
	saves  int
	clears int
}

func (s *memoryStore) Load(context.Context) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return Record{}, false, nil
	}
	return *s.rec, true, nil
}

func (s *memoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	s.saves++
	return nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	s.clears++
	return nil
}

func (s *memoryStore) snapshot() (*Record, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, s.clears
}

// stubDirectory serves a mutable authoritative record and counts lookups.
// When gate is set every lookup blocks until it is closed.
type stubDirectory struct {
	mu    sync.Mutex
	rec   Record
	err   error
	calls int
	gate  chan struct{}
}

func (d *stubDirectory) LookupByEmail(ctx context.Context, email string) (Record, error) {
	d.mu.Lock()
	d.calls++
	gate := d.gate
	d.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Record{}, ctx.Err()
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return Record{}, d.err
	}
	if d.rec.Email != email {
		return Record{}, ErrRecordNotFound
	}
	return d.rec, nil
}

func (d *stubDirectory) set(rec Record) {
	d.mu.Lock()
	d.rec = rec
	d.mu.Unlock()
}

func (d *stubDirectory) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

var errBadPassword = errors.New("invalid credentials")

type stubAuth struct {
	dir      *stubDirectory
	password string
}

func (a stubAuth) Authenticate(ctx context.Context, email, password string) (Record, error) {
	if password != a.password {
		return Record{}, errBadPassword
	}
	return a.dir.LookupByEmail(ctx, email)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, notice)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

type countingNavigator struct {
	mu        sync.Mutex
	redirects int
}

func (n *countingNavigator) RedirectToLogin(context.Context) {
	n.mu.Lock()
	n.redirects++
	n.mu.Unlock()
}

func (n *countingNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirects
}

// manualScheduler collects scheduled callbacks so tests fire them explicitly.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (s *manualScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.delays = append(s.delays, d)
	s.mu.Unlock()
}

func (s *manualScheduler) fire() int {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}
