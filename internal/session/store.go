package session

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand/v2"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const DefaultTTL = time.Hour

// Store keeps sessions in memory; idle sessions expire after the TTL.
type Store struct {
	c *cache.Cache

	rngMu sync.Mutex
	rng   *mrand.Rand
}

func NewStore(ttl time.Duration, seed uint64) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Store{
		c:   cache.New(ttl, 2*ttl),
		rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (st *Store) Create() *Session {
	s := newSession(newID())
	st.c.SetDefault(s.ID, s)
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	v, ok := st.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Session), nil
}

// With runs fn with the session locked and refreshes its expiry.
func (st *Store) With(id string, fn func(*Session) error) error {
	s, err := st.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s); err != nil {
		return err
	}
	st.c.SetDefault(id, s)
	return nil
}

// Snapshot returns the session view under its lock.
func (st *Store) Snapshot(id string) (View, error) {
	var v View
	err := st.With(id, func(s *Session) error {
		v = s.View()
		return nil
	})
	return v, err
}

// RollViralScore picks a score in [70, 99] for a fresh upload.
func (st *Store) RollViralScore() int {
	st.rngMu.Lock()
	defer st.rngMu.Unlock()
	return 70 + st.rng.IntN(30)
}

func (st *Store) Len() int { return st.c.ItemCount() }

func newID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
