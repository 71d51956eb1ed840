package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"taskBoard/internal/config"
	"taskBoard/internal/handlers"
	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"
	"taskBoard/internal/remote"
	"taskBoard/internal/remote/inmemory"
	"taskBoard/internal/remote/postgres"
	"taskBoard/internal/remote/redisstore"
	"taskBoard/internal/remote/rest"
	"taskBoard/internal/remote/rtdb"
	"taskBoard/internal/service"
	"taskBoard/internal/session"
	"taskBoard/internal/worker"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const authRequestsPerMinute = 20

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	remote    *remote.Store
	service   *service.Service
	worker    *worker.ResyncWorker
	shutdowns []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (_ *App, err error) {
	defer func() {
		if err != nil {
			a.Shutdown()
		}
	}()

	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("подключение к хранилищу %q: %w", a.config.Remote.Type, err)
	}
	a.remote = remote.New(backend, a.config.Remote.Type)

	sessions, err := session.NewStore(a.config.Session.Dir)
	if err != nil {
		return nil, fmt.Errorf("хранилище сессии: %w", err)
	}

	a.service = service.New(a.remote, sessions)
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Ожидание фоновых записей...", zap.Int("pending", a.service.Pending()))
		a.service.Close()
	})

	if sess, err := a.service.Start(ctx); err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			logger.Warn("Не удалось восстановить сессию", zap.Error(err))
		}
	} else {
		logger.Info("Сессия восстановлена",
			zap.String("kind", sess.Kind.String()),
			zap.String("email", sess.User.Email))
	}

	if interval := a.config.Worker.ResyncInterval; interval > 0 {
		a.worker = worker.NewResyncWorker(a.service, &interval)
	}

	a.router = a.buildRouter()
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, "task-board"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func (a *App) openBackend(ctx context.Context) (remote.Backend, error) {
	rc := a.config.Remote
	switch rc.Type {
	case config.RemoteHTTP:
		return rest.New(rc.URL, rc.Auth, rc.Timeout), nil
	case config.RemoteFirebase:
		return rtdb.New(ctx, rc.URL, rc.FirebaseCredentials)
	case config.RemotePostgres:
		store, err := postgres.New(ctx, rc.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, store.Close)
		return store, nil
	case config.RemoteRedis:
		store, err := redisstore.Dial(ctx, rc.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, func() { _ = store.Close() })
		return store, nil
	case config.RemoteMemory:
		logger.Warn("Используется хранилище в памяти, данные не переживут перезапуск")
		return inmemory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("неизвестный тип %q", rc.Type)
	}
}

func (a *App) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)

	handlers.NewHandler(a.service).Mount(r, middleware.RateLimit(authRequestsPerMinute))
	return r
}

// Run блокируется до SIGINT/SIGTERM или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.worker != nil {
		go a.worker.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Получен сигнал остановки")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
	}
	a.Shutdown()
	return serveErr
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
