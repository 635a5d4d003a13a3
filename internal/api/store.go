package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/orbital/internal/device"
	"github.com/samcharles93/orbital/internal/logger"
	"github.com/samcharles93/orbital/internal/system"
	"github.com/samcharles93/orbital/pkg/memory"
	"github.com/samcharles93/orbital/pkg/orbital"
)

// Session is one orbital context exposed over HTTP. Every access to ctx goes
// through mu.
type Session struct {
	Name    string
	Device  string
	Created time.Time

	mu  sync.Mutex
	ctx *orbital.Context
}

func (s *Session) ID() uuid.UUID { return s.ctx.ID() }

// Do runs fn with exclusive access to the session's context.
func (s *Session) Do(fn func(c *orbital.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ctx)
}

// SessionStore owns every live session.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	open    func() (memory.Device, error)
	log     logger.Logger
	workers int
}

type StoreConfig struct {
	// Device is resolved per session with device.Open.
	Device  string
	Workers int
	Logger  logger.Logger
}

func NewSessionStore(cfg StoreConfig) *SessionStore {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	name := cfg.Device
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		open:     func() (memory.Device, error) { return device.Open(name) },
		log:      log,
		workers:  cfg.Workers,
	}
}

// Create builds a context from doc. A document the context rejects leaves no
// session behind.
func (s *SessionStore) Create(doc *system.Document, now time.Time) (*Session, error) {
	dev, err := s.open()
	if err != nil {
		return nil, err
	}
	ctx := orbital.New(dev, orbital.WithLogger(logger.Slog(s.log)), orbital.WithWorkers(s.workers))
	if err := doc.Apply(ctx); err != nil {
		_ = ctx.Destroy()
		return nil, err
	}
	sess := &Session{
		Name:    doc.Name,
		Device:  device.Describe(dev),
		Created: now,
		ctx:     ctx,
	}
	s.mu.Lock()
	s.sessions[ctx.ID()] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	return sess, ok
}

// Delete removes the session and destroys its context.
func (s *SessionStore) Delete(id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return ErrSessionNotFound
	}
	s.mu.Lock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return sess.Do(func(c *orbital.Context) error { return c.Destroy() })
}

// Close destroys every remaining session.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*Session)
	s.mu.Unlock()
	var err error
	for _, sess := range sessions {
		if e := sess.Do(func(c *orbital.Context) error { return c.Destroy() }); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
