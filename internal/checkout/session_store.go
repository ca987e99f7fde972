package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopmithra/mithra-backend/pkg/enums"
	pkgerrors "github.com/shopmithra/mithra-backend/pkg/errors"
	"github.com/shopmithra/mithra-backend/pkg/redis"
)

type sessionBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutSessionKey(sessionKey string) string
}

// SessionStore keeps checkout sessions in redis, one per cart session key,
// expiring after the configured TTL so an abandoned attempt cannot wedge the
// cart forever.
type SessionStore struct {
	backend sessionBackend
	ttl     time.Duration
}

// NewSessionStore builds a session store over the shared redis client.
func NewSessionStore(backend sessionBackend, ttl time.Duration) (*SessionStore, error) {
	if backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redis backend is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{backend: backend, ttl: ttl}, nil
}

// Load returns the session for the key, or nil when the shopper is idle.
func (s *SessionStore) Load(ctx context.Context, sessionKey string) (*Session, error) {
	raw, err := s.backend.Get(ctx, s.backend.CheckoutSessionKey(sessionKey))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout session")
	}
	return &session, nil
}

// Claim atomically creates the session, failing when one already exists.
// This is the double-submit gate: two concurrent place-order calls race on
// SetNX and exactly one wins.
func (s *SessionStore) Claim(ctx context.Context, session *Session) (bool, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout session")
	}
	ok, err := s.backend.SetNX(ctx, s.backend.CheckoutSessionKey(session.SessionKey), payload, s.ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim checkout session")
	}
	return ok, nil
}

// Save overwrites the session, refreshing its TTL.
func (s *SessionStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout session")
	}
	if err := s.backend.Set(ctx, s.backend.CheckoutSessionKey(session.SessionKey), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	return nil
}

// Clear drops the session, returning the shopper to idle.
func (s *SessionStore) Clear(ctx context.Context, sessionKey string) error {
	if err := s.backend.Del(ctx, s.backend.CheckoutSessionKey(sessionKey)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear checkout session")
	}
	return nil
}

// Busy reports whether a checkout attempt is mid-flight for the session.
// Satisfies the cart package's mutation guard.
func (s *SessionStore) Busy(ctx context.Context, sessionKey string) (bool, error) {
	session, err := s.Load(ctx, sessionKey)
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}
	return session.State.Busy(), nil
}

// stateOrIdle normalizes a missing session to the idle state.
func stateOrIdle(session *Session) enums.CheckoutState {
	if session == nil {
		return enums.CheckoutStateIdle
	}
	return session.State
}
