// Package identity derives the key a cart is scoped to: the signed-in user's
// id, or a guest id that is generated once and remembered by the client.
package identity

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// GuestStorageKey is the client storage entry holding the guest id.
	GuestStorageKey = "guestId"

	guestPrefix   = "guest_"
	suffixLen     = 9
	suffixCharset = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var guestPattern = regexp.MustCompile(`^guest_\d+_[0-9a-z]{9}$`)

type OwnerKey string

func (k OwnerKey) String() string { return string(k) }

func (k OwnerKey) IsGuest() bool { return strings.HasPrefix(string(k), guestPrefix) }

// IsValidGuestKey reports whether s has the guest_<millis>_<rand9> shape.
func IsValidGuestKey(s string) bool { return guestPattern.MatchString(s) }

// UserSource returns the authenticated user's id, or "" when there is no session.
type UserSource interface {
	CurrentUserID() (string, error)
}

// Storage is durable client-side storage (a cookie in the HTTP adapter).
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

type Resolver struct {
	users   UserSource
	storage Storage
	log     *zap.Logger
	now     func() time.Time
	suffix  func() string
}

type Option func(*Resolver)

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func WithSuffix(fn func() string) Option {
	return func(r *Resolver) { r.suffix = fn }
}

func NewResolver(users UserSource, storage Storage, log *zap.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		users:   users,
		storage: storage,
		log:     log,
		now:     time.Now,
		suffix:  randomSuffix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails. Auth errors count as anonymous and unreadable or
// malformed guest ids are replaced by a fresh one.
func (r *Resolver) Resolve() OwnerKey {
	if r.users != nil {
		id, err := r.users.CurrentUserID()
		if err != nil {
			r.log.Debug("auth lookup failed, treating as guest", zap.Error(err))
		} else if id = strings.TrimSpace(id); id != "" {
			return OwnerKey(id)
		}
	}

	stored, err := r.storage.Get(GuestStorageKey)
	if err == nil && IsValidGuestKey(stored) {
		return OwnerKey(stored)
	}
	if err != nil {
		r.log.Debug("guest id unreadable", zap.Error(err))
	} else if stored != "" {
		r.log.Warn("discarding malformed guest id", zap.String("value", stored))
	}

	key := fmt.Sprintf("%s%d_%s", guestPrefix, r.now().UnixMilli(), r.suffix())
	if err := r.storage.Set(GuestStorageKey, key); err != nil {
		r.log.Warn("failed to persist guest id", zap.Error(err))
	}
	return OwnerKey(key)
}

// A guest id grants access to that guest's cart and current order, so the
// suffix comes from crypto/rand.
func randomSuffix() string {
	// Bytes at or above the largest multiple of 36 are rejected to keep the
	// characters uniform.
	const limit = 256 - 256%len(suffixCharset)

	out := make([]byte, 0, suffixLen)
	buf := make([]byte, suffixLen*2)
	for len(out) < suffixLen {
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("identity: crypto/rand failed: %v", err))
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, suffixCharset[int(b)%len(suffixCharset)])
			if len(out) == suffixLen {
				break
			}
		}
	}
	return string(out)
}
