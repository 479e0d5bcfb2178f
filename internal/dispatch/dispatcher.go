// Package dispatch запускает фоновые задания генерации вне контекста запроса.
//
// Для каждого ключа (задача, этап) одновременно выполняется не больше одного
// задания; повторный запуск игнорируется.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrShuttingDown возвращается Submit после начала остановки.
var ErrShuttingDown = errors.New("dispatcher is shutting down")

// JobFunc - тело фонового задания.
type JobFunc func(ctx context.Context) error

// Key строит ключ задания для задачи и этапа.
func Key(taskID uuid.UUID, stage string) string {
	return fmt.Sprintf("%s:%s", taskID, stage)
}

// Dispatcher запускает задания в горутинах и ждет их при остановке.
type Dispatcher struct {
	guard      Guard
	jobTimeout time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	closing bool
	running map[string]time.Time
	wg      sync.WaitGroup
}

// Config содержит настройки Dispatcher.
type Config struct {
	// JobTimeout ограничивает одно задание; 0 - без ограничения.
	JobTimeout time.Duration
}

func New(guard Guard, cfg Config, logger *zap.Logger) *Dispatcher {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	return &Dispatcher{
		guard:      guard,
		jobTimeout: cfg.JobTimeout,
		logger:     logger.Named("Dispatcher"),
		running:    make(map[string]time.Time),
	}
}

// Submit запускает задание, если ключ свободен.
// Возвращает false, если задание с тем же ключом уже выполняется.
func (d *Dispatcher) Submit(key string, job JobFunc) (bool, error) {
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		return false, ErrShuttingDown
	}
	if _, busy := d.running[key]; busy {
		d.mu.Unlock()
		d.logger.Info("Job already in flight, trigger ignored", zap.String("key", key))
		return false, nil
	}
	// Резервируем ключ до обращения к внешней защите, чтобы не держать мьютекс во время I/O.
	d.running[key] = time.Now()
	d.wg.Add(1)
	d.mu.Unlock()

	acquired, err := d.guard.Acquire(context.Background(), key)
	if err != nil || !acquired {
		d.finish(key)
		if err != nil {
			return false, err
		}
		d.logger.Info("Job in flight on another instance, trigger ignored", zap.String("key", key))
		return false, nil
	}

	go d.run(key, job)
	return true, nil
}

func (d *Dispatcher) run(key string, job JobFunc) {
	defer d.finish(key)

	// Задание не зависит от контекста HTTP-запроса.
	ctx := context.Background()
	if d.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Job panicked", zap.String("key", key), zap.Any("panic", r))
		}
		if err := d.guard.Release(context.Background(), key); err != nil {
			d.logger.Error("Failed to release in-flight key", zap.String("key", key), zap.Error(err))
		}
	}()

	start := time.Now()
	if err := job(ctx); err != nil {
		d.logger.Error("Job failed", zap.String("key", key), zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	d.logger.Info("Job finished", zap.String("key", key), zap.Duration("duration", time.Since(start)))
}

func (d *Dispatcher) finish(key string) {
	d.mu.Lock()
	delete(d.running, key)
	d.mu.Unlock()
	d.wg.Done()
}

// InFlight сообщает, выполняется ли задание с ключом в этом процессе.
func (d *Dispatcher) InFlight(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.running[key]
	return ok
}

// Shutdown запрещает новые задания и ждет завершения текущих.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closing = true
	pending := len(d.running)
	d.mu.Unlock()

	d.logger.Info("Waiting for in-flight jobs", zap.Int("count", pending))

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for in-flight jobs: %w", ctx.Err())
	}
}
