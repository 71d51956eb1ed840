package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"taskBoard/internal/logger"
	"taskBoard/internal/remote"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Schema - одна таблица документов, ключ (collection, id)
const Schema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
)`

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Remote: Ошибка загрузки конфига PostgreSQL", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Remote: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Remote: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Remote: Подключение к PostgreSQL установлено")
	return &Storage{pool: pool}, nil
}

// Migrate создаёт таблицу документов, если её нет
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		logger.Error("Remote: Ошибка миграции", err)
		return fmt.Errorf("миграция: %w", err)
	}
	return nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Remote: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, c remote.Collection) (map[string]json.RawMessage, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `SELECT id, body FROM documents WHERE collection = $1`, string(c))
	if err != nil {
		return nil, fmt.Errorf("выборка %s: %w", c, err)
	}
	defer rows.Close()

	var res map[string]json.RawMessage
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("чтение строки %s: %w", c, err)
		}
		if res == nil {
			res = make(map[string]json.RawMessage)
		}
		res[id] = body
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация %s: %w", c, err)
	}

	slowQuery(start)
	return res, nil
}

func (s *Storage) Put(ctx context.Context, c remote.Collection, id string, body []byte) error {
	start := time.Now()

	query := `INSERT INTO documents (collection, id, body, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (collection, id)
			DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, string(c), id, body); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", c, id, err)
	}

	slowQuery(start)
	return nil
}

func (s *Storage) Delete(ctx context.Context, c remote.Collection, id string) error {
	start := time.Now()

	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, string(c), id); err != nil {
		return fmt.Errorf("удаление %s/%s: %w", c, id, err)
	}

	slowQuery(start)
	return nil
}

func slowQuery(start time.Time) {
	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Remote: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
}
