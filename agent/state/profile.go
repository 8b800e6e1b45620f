package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"
)

var (
	ErrProfileNotFound = errors.New("session profile not found")
	ErrNilProfile      = errors.New("session profile is nil")
	ErrInvalidCustomer = errors.New("customer id must be positive")
)

const (
	defaultStoreKeyPrefix = "concierge:session:"
	defaultStoreTTL       = 24 * time.Hour
)

// SessionProfile is what a session needs to be rebuilt after a restart: who
// the guest is and where searches are anchored. The transcript itself is
// never persisted.
type SessionProfile struct {
	CustomerID       int64     `json:"customer_id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Lat              float64   `json:"lat"`
	Lon              float64   `json:"lon"`
	PaidReservations []int64   `json:"paid_reservations,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (p *SessionProfile) Validate() error {
	if p == nil {
		return ErrNilProfile
	}
	if p.CustomerID <= 0 {
		return ErrInvalidCustomer
	}
	return nil
}

// MarkPaid records a paid reservation once.
func (p *SessionProfile) MarkPaid(reservationID int64) {
	if !slices.Contains(p.PaidReservations, reservationID) {
		p.PaidReservations = append(p.PaidReservations, reservationID)
	}
}

// ProfileStore persists session profiles keyed by customer id.
type ProfileStore interface {
	Load(ctx context.Context, customerID int64) (*SessionProfile, error)
	Save(ctx context.Context, p *SessionProfile) error
	Delete(ctx context.Context, customerID int64) error
}

// StoreOption customises the key-value profile stores.
type StoreOption func(*storeOptions)

type storeOptions struct {
	keyPrefix  string
	ttl        time.Duration
	httpClient httpDoer
}

func defaultStoreOptions() storeOptions {
	return storeOptions{keyPrefix: defaultStoreKeyPrefix, ttl: defaultStoreTTL}
}

func WithKeyPrefix(prefix string) StoreOption {
	return func(o *storeOptions) {
		if prefix != "" {
			o.keyPrefix = prefix
		}
	}
}

// WithTTL sets the key expiry. Zero keeps profiles forever.
func WithTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.ttl = ttl
	}
}

func profileKey(prefix string, customerID int64) (string, error) {
	if customerID <= 0 {
		return "", ErrInvalidCustomer
	}
	return prefix + strconv.FormatInt(customerID, 10), nil
}

func encodeProfile(p *SessionProfile) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal session profile: %w", err)
	}
	return payload, nil
}

func decodeProfile(raw []byte) (*SessionProfile, error) {
	var p SessionProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal session profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session profile loaded from store: %w", err)
	}
	return &p, nil
}

// MemoryStore keeps profiles in process memory. Profiles do not survive a
// restart.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[int64][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[int64][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, customerID int64) (*SessionProfile, error) {
	s.mu.RLock()
	raw, ok := s.profiles[customerID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrProfileNotFound
	}
	return decodeProfile(raw)
}

func (s *MemoryStore) Save(_ context.Context, p *SessionProfile) error {
	payload, err := encodeProfile(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles[p.CustomerID] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, customerID int64) error {
	s.mu.Lock()
	delete(s.profiles, customerID)
	s.mu.Unlock()
	return nil
}

var (
	_ ProfileStore = (*MemoryStore)(nil)
	_ ProfileStore = (*UpstashRedisStore)(nil)
	_ ProfileStore = (*RedisStore)(nil)
)
