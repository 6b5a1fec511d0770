package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-orcamento/internal/lock"
)

// Locker serialises work on a key.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// SessionStore keeps quote sessions in Redis as JSON documents.
type SessionStore struct {
	R       redis.UniversalClient
	TTL     time.Duration
	Locker  Locker
	LockTTL time.Duration
	Now     func() time.Time
}

func (s *SessionStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

func sessionKey(id string) string { return "quote:session:" + id }

// Create starts an empty session.
func (s *SessionStore) Create(ctx context.Context) (*Session, error) {
	sess := NewSession(uuid.NewString())
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load returns the session stored under id.
func (s *SessionStore) Load(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("session id: %w", ErrInvalidInput)
	}
	data, err := s.R.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Lines == nil {
		sess.Lines = []LineItem{}
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.R.Set(ctx, sessionKey(sess.ID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete discards the session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.R.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Mutate runs load → fn → save under the session lock. fn's error aborts the
// save and is returned unchanged.
func (s *SessionStore) Mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	return s.MutateContext(ctx, id, func(_ context.Context, sess *Session) error { return fn(sess) })
}

// MutateContext is Mutate for callbacks that do I/O. The context handed to fn
// expires after three quarters of the lock TTL, leaving the rest for the save,
// so fn cannot outlive the lease it runs under.
func (s *SessionStore) MutateContext(ctx context.Context, id string, fn func(context.Context, *Session) error) (*Session, error) {
	ttl := s.lockTTL()
	var out *Session
	run := func(ctx context.Context) error {
		sess, err := s.Load(ctx, id)
		if err != nil {
			return err
		}
		workCtx, cancel := context.WithTimeout(ctx, ttl*3/4)
		err = fn(workCtx, sess)
		cancel()
		if err != nil {
			return err
		}
		if err := s.Save(ctx, sess); err != nil {
			return err
		}
		out = sess
		return nil
	}
	var err error
	if s.Locker == nil {
		err = run(ctx)
	} else {
		err = s.Locker.WithLock(ctx, lock.Key("quote-session", id), ttl, run)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SessionStore) lockTTL() time.Duration {
	if s.LockTTL <= 0 {
		return 15 * time.Second
	}
	return s.LockTTL
}
