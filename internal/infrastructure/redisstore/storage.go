// Package redisstore adapta go-redis a fiber.Storage para compartir los contadores
// del rate limiter entre réplicas.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
)

// Config conexión a Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // default "crm:rl:"
}

// Storage implementa fiber.Storage.
type Storage struct {
	db     redis.UniversalClient
	prefix string
}

var _ fiber.Storage = (*Storage)(nil)

// NewClient crea el cliente con la configuración dada.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// New verifica la conexión con PING.
func New(ctx context.Context, client redis.UniversalClient, prefix string) (*Storage, error) {
	if prefix == "" {
		prefix = "crm:rl:"
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Storage{db: client, prefix: prefix}, nil
}

// Get devuelve nil, nil si la clave no existe.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.db.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set exp 0 = sin expiración.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.db.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.db.Del(context.Background(), s.prefix+key).Err()
}

// Reset borra sólo las claves con el prefijo.
func (s *Storage) Reset() error {
	ctx := context.Background()
	iter := s.db.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.db.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *Storage) Close() error { return s.db.Close() }
