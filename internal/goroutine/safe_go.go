package goroutine

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/ucardlabs/ucard-admin/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.recover("goroutine")
		fn(ctx)
	}()
}

// Every запускает fn сразу и затем раз в interval, пока жив ctx.
// Паника в одном запуске не останавливает следующие.
func (rh *RecoveryHandler) Every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			rh.runOnce(ctx, fn)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (rh *RecoveryHandler) runOnce(ctx context.Context, fn func(context.Context)) {
	defer rh.recover("periodic task")
	fn(ctx)
}

func (rh *RecoveryHandler) recover(where string) {
	if r := recover(); r != nil {
		rh.logger.Errorf("panic in %s: %v\nstack trace:\n%s", where, r, debug.Stack())
	}
}

// SafeGoWithContext запускает горутину, логируя панику через logger.Log.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	NewRecoveryHandler(logger.Log).SafeGoWithContext(ctx, fn)
}

// Every запускает периодическую задачу, логируя панику через logger.Log.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	NewRecoveryHandler(logger.Log).Every(ctx, interval, fn)
}
