// Package session provides the per-client session state for the admin panel.
//
// Session state is held in an external backend (Redis in production, an
// in-process map in tests) and addressed by an opaque session ID carried in a
// cookie. Handlers never touch raw key strings; all access goes through the
// typed accessors on [Session], and removals report their outcome instead of
// being silently ignored.
//
// The ephemeral RSA private key used for password transport lives in a
// dedicated short-TTL slot separate from the ordinary session fields, so that
// the secret expires on its own schedule.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrNoValue is returned by a [Store] when a field or secret is absent.
const ErrNoValue Error = "no value"

// Error is an error type returned by session store implementations.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Field names within a session. These are internal to the store; callers use
// the typed accessors.
const (
	fieldLoginID   = "login_id"
	fieldChallenge = "captcha"
)

// Store is the backend holding session state. Implementations must treat a
// missing session as an empty one.
type Store interface {
	// GetField returns a session field, or [ErrNoValue] if absent.
	GetField(ctx context.Context, sid, field string) (string, error)
	// SetField writes a session field, refreshing the session lifetime.
	SetField(ctx context.Context, sid, field, value string) error
	// DeleteField removes a session field. Removing an absent field is not an
	// error.
	DeleteField(ctx context.Context, sid, field string) error
	// GetSecret returns the short-lived secret slot, or [ErrNoValue] if
	// absent or expired.
	GetSecret(ctx context.Context, sid string) (string, error)
	// SetSecret writes the short-lived secret slot, replacing any prior value
	// and resetting its lifetime.
	SetSecret(ctx context.Context, sid, value string) error
	// DeleteSecret removes the secret slot.
	DeleteSecret(ctx context.Context, sid string) error
	// Destroy removes all state for the session.
	Destroy(ctx context.Context, sid string) error
}

// TTLs applied by stores that support expiry.
const (
	DefaultTTL       = 2 * time.Hour
	DefaultSecretTTL = 10 * time.Minute
)

// Session is the explicit session-context object handed to request handlers.
type Session struct {
	id    string
	store Store
}

// New binds a session ID to a store.
func New(id string, store Store) *Session {
	return &Session{id: id, store: store}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// LoginID returns the authenticated user ID, or zero if the session is
// anonymous. Errors are only returned for backend failures.
func (s *Session) LoginID(ctx context.Context) (uint64, error) {
	val, err := s.store.GetField(ctx, s.id, fieldLoginID)
	if errors.Is(err, ErrNoValue) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		// corrupt marker; treat as anonymous
		return 0, nil
	}
	return id, nil
}

// SetLoginID establishes the authenticated identity for the session.
func (s *Session) SetLoginID(ctx context.Context, id uint64) error {
	return s.store.SetField(ctx, s.id, fieldLoginID, strconv.FormatUint(id, 10))
}

// ClearLoginID removes the authenticated identity. Clearing an anonymous
// session is a no-op.
func (s *Session) ClearLoginID(ctx context.Context) error {
	return s.store.DeleteField(ctx, s.id, fieldLoginID)
}

// Challenge returns the currently bound captcha answer, or empty if none is
// bound.
func (s *Session) Challenge(ctx context.Context) (string, error) {
	val, err := s.store.GetField(ctx, s.id, fieldChallenge)
	if errors.Is(err, ErrNoValue) {
		return "", nil
	}
	return val, err
}

// SetChallenge binds a captcha answer to the session, replacing any prior
// value.
func (s *Session) SetChallenge(ctx context.Context, answer string) error {
	return s.store.SetField(ctx, s.id, fieldChallenge, answer)
}

// ClearChallenge removes the bound captcha answer.
func (s *Session) ClearChallenge(ctx context.Context) error {
	return s.store.DeleteField(ctx, s.id, fieldChallenge)
}

// AuthKey returns the session-bound ephemeral private key PEM, or empty if
// none is bound or it has expired.
func (s *Session) AuthKey(ctx context.Context) ([]byte, error) {
	val, err := s.store.GetSecret(ctx, s.id)
	if errors.Is(err, ErrNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// SetAuthKey binds an ephemeral private key PEM to the session, replacing any
// prior key.
func (s *Session) SetAuthKey(ctx context.Context, pem []byte) error {
	return s.store.SetSecret(ctx, s.id, string(pem))
}

// ClearAuthKey removes the ephemeral private key.
func (s *Session) ClearAuthKey(ctx context.Context) error {
	return s.store.DeleteSecret(ctx, s.id)
}

// Destroy removes all session state, including the secret slot.
func (s *Session) Destroy(ctx context.Context) error {
	return s.store.Destroy(ctx, s.id)
}
