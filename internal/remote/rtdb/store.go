package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"taskBoard/internal/logger"
	"taskBoard/internal/remote"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// Storage ходит в Realtime Database через Admin SDK вместо голого REST
type Storage struct {
	client *db.Client
}

func New(ctx context.Context, databaseURL, credentialsPath string) (*Storage, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opts...)
	if err != nil {
		logger.Error("Remote: Ошибка инициализации Firebase", err)
		return nil, fmt.Errorf("инициализация firebase: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		logger.Error("Remote: Ошибка получения клиента Realtime Database", err)
		return nil, fmt.Errorf("клиент realtime database: %w", err)
	}

	logger.Info("Remote: Firebase Realtime Database подключена")
	return &Storage{client: client}, nil
}

func (s *Storage) Get(ctx context.Context, c remote.Collection) (map[string]json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.client.NewRef(string(c)).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("чтение %s: %w", c, err)
	}
	return remote.ParseTree(raw)
}

func (s *Storage) Put(ctx context.Context, c remote.Collection, id string, body []byte) error {
	if err := s.client.NewRef(string(c)).Child(id).Set(ctx, json.RawMessage(body)); err != nil {
		return fmt.Errorf("запись %s/%s: %w", c, id, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, c remote.Collection, id string) error {
	if err := s.client.NewRef(string(c)).Child(id).Delete(ctx); err != nil {
		return fmt.Errorf("удаление %s/%s: %w", c, id, err)
	}
	return nil
}
