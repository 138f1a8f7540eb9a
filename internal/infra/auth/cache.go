package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"slackmcp/internal/domain"
)

var (
	cacheBucket = []byte("credential")
	cacheKey    = []byte("current")
)

// Cache persists the current credential across restarts. Without it a
// rotating token that was exchanged during the previous run would be lost
// and the configured (already consumed) refresh token would be retried.
type Cache struct {
	db *bolt.DB
}

type cachedCredential struct {
	Token        string    `json:"token"`
	Kind         string    `json:"kind"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

func OpenCache(path string) (*Cache, error) {
	if path == "" {
		return nil, errors.New("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open credential cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init credential cache: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Load returns the cached credential, reporting whether one was present.
func (c *Cache) Load() (domain.Credential, bool, error) {
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(cacheBucket).Get(cacheKey); data != nil {
			raw = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return domain.Credential{}, false, err
	}
	if raw == nil {
		return domain.Credential{}, false, nil
	}

	var cached cachedCredential
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.Credential{}, false, fmt.Errorf("decode cached credential: %w", err)
	}
	kind, _ := domain.ParseTokenKind(cached.Kind)
	return domain.Credential{
		Token:        cached.Token,
		Kind:         kind,
		RefreshToken: cached.RefreshToken,
		ExpiresAt:    cached.ExpiresAt,
	}, true, nil
}

func (c *Cache) Save(cred domain.Credential) error {
	data, err := json.Marshal(cachedCredential{
		Token:        cred.Token,
		Kind:         string(cred.Kind),
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    cred.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(cacheKey, data)
	})
}
