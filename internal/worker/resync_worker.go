package worker

import (
	"context"
	"errors"
	"taskBoard/internal/logger"
	"taskBoard/internal/session"
	"time"

	"go.uber.org/zap"
)

// Board - часть сервиса, нужная фоновой синхронизации
type Board interface {
	Current() (session.Session, error)
	Pending() int
	Reload(ctx context.Context) error
}

// ResyncWorker периодически перечитывает удалённое хранилище,
// чтобы подтянуть изменения других клиентов
type ResyncWorker struct {
	board    Board
	interval time.Duration
}

func NewResyncWorker(b Board, interval *time.Duration) *ResyncWorker {
	var intervalToSet time.Duration
	if interval == nil {
		intervalToSet = 5 * time.Minute
	} else {
		intervalToSet = *interval
	}
	return &ResyncWorker{
		board:    b,
		interval: intervalToSet,
	}
}

func (w *ResyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая синхронизация останавливается")
			return
		}
	}
}

// Check перечитывает данные, если есть постоянная сессия и нет
// неподтверждённых записей. Возвращает true, если перезагрузка была.
func (w *ResyncWorker) Check(ctx context.Context) bool {
	sess, err := w.board.Current()
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			logger.Warn("Worker: ошибка получения сессии", zap.Error(err))
		}
		return false
	}
	if !sess.Persistent() {
		return false
	}
	// перезагрузка затёрла бы оптимистичные изменения
	if pending := w.board.Pending(); pending > 0 {
		logger.Debug("Worker: пропуск синхронизации, есть незавершённые записи", zap.Int("pending", pending))
		return false
	}

	start := time.Now()
	if err := w.board.Reload(ctx); err != nil {
		logger.Warn("Worker: ошибка синхронизации", zap.Error(err))
		return false
	}
	logger.Info("Worker: Завершение синхронизации",
		zap.Duration("ms", time.Since(start)),
		zap.String("user", sess.User.Email),
	)
	return true
}
