package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
)

// TokenStore is the durable slot holding the session token between
// process runs. Load returns "" with no error when the slot is empty.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
	Close() error
}

// NewTokenStore builds the configured backend: a sealed file on disk by
// default, or redis for kiosk and server deployments sharing a slot.
func NewTokenStore(cfg config.TokenStoreConfig) (TokenStore, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileTokenStore(os.ExpandEnv(cfg.Path), os.ExpandEnv(cfg.KeyPath))
	case "redis":
		return NewRedisTokenStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown token store backend %q", cfg.Backend)
	}
}

const (
	keySize   = 32
	nonceSize = 24
)

// FileTokenStore seals the token with a machine-local secretbox key so the
// credential is not readable at rest. A missing or tampered file reads as
// an error, which hydration treats as anonymous.
type FileTokenStore struct {
	path string
	key  [keySize]byte
}

func NewFileTokenStore(path, keyPath string) (*FileTokenStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("token store dir: %w", err)
	}
	s := &FileTokenStore{path: path}
	if err := s.loadOrCreateKey(keyPath); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileTokenStore) loadOrCreateKey(keyPath string) error {
	raw, err := os.ReadFile(keyPath)
	if err == nil {
		if len(raw) != keySize {
			return fmt.Errorf("token key %s has wrong size", keyPath)
		}
		copy(s.key[:], raw)
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read token key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return fmt.Errorf("token key dir: %w", err)
	}
	if _, err := rand.Read(s.key[:]); err != nil {
		return fmt.Errorf("generate token key: %w", err)
	}
	if err := os.WriteFile(keyPath, s.key[:], 0o600); err != nil {
		return fmt.Errorf("write token key: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Save(_ context.Context, token string) error {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("token nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	if err := os.WriteFile(s.path, sealed, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Load(_ context.Context) (string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if len(raw) < nonceSize {
		return "", errors.New("token file truncated")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("token file unreadable")
	}
	return string(plain), nil
}

func (s *FileTokenStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Close() error { return nil }

// RedisTokenStore keeps the token under a fixed key.
type RedisTokenStore struct {
	client *redis.Client
	key    string
}

func NewRedisTokenStore(cfg config.RedisConfig) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "hms:session:token"
	}
	return &RedisTokenStore{client: client, key: key}, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key, token, 0).Err()
}

func (s *RedisTokenStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return val, nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *RedisTokenStore) Close() error { return s.client.Close() }
