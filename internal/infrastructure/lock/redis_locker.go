// Package lock implementa bloqueos por clave con expiración: Redis para
// despliegues con varias instancias y memoria para una sola instancia o tests.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "lock:"

// releaseScript borra la clave sólo si sigue siendo del dueño del token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker bloqueo SET NX PX con token aleatorio.
type RedisLocker struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// RedisConfig conexión a Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewRedisLocker construye el locker. ttl es el tope de vida del bloqueo si el
// proceso muere sin liberarlo; debe superar el timeout del envío.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, keyPrefix: defaultKeyPrefix}
}

// Acquire intenta tomar el bloqueo sin esperar.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release libera el bloqueo si el token coincide. Liberar un bloqueo ajeno o
// vencido no es error.
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}
