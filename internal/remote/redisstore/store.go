package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"taskBoard/internal/logger"
	"taskBoard/internal/remote"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "board:"

// Storage держит каждую коллекцию в одном хеше: поле - id, значение - JSON
type Storage struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) *Storage {
	return &Storage{client: client}
}

// Dial принимает redis:// URL или голый host:port
func Dial(ctx context.Context, addr string) (*Storage, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error("Remote: Redis недоступен", err)
		return nil, fmt.Errorf("проверка соединения redis: %w", err)
	}
	logger.Info("Remote: Подключение к Redis установлено")
	return &Storage{client: client}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func key(c remote.Collection) string {
	return keyPrefix + string(c)
}

func (s *Storage) Get(ctx context.Context, c remote.Collection) (map[string]json.RawMessage, error) {
	fields, err := s.client.HGetAll(ctx, key(c)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", c, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	res := make(map[string]json.RawMessage, len(fields))
	for id, body := range fields {
		res[id] = json.RawMessage(body)
	}
	return res, nil
}

func (s *Storage) Put(ctx context.Context, c remote.Collection, id string, body []byte) error {
	if err := s.client.HSet(ctx, key(c), id, body).Err(); err != nil {
		return fmt.Errorf("hset %s/%s: %w", c, id, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, c remote.Collection, id string) error {
	if err := s.client.HDel(ctx, key(c), id).Err(); err != nil {
		return fmt.Errorf("hdel %s/%s: %w", c, id, err)
	}
	return nil
}
