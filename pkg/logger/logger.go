// Package logger provides the application's structured logger built on
// log/slog.
//
// Every HTTP request gets its own logger tagged with the request ID (see
// middleware.Logger), so handlers and services log through WithCtx:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("orders fetched", "store_id", storeID, "count", len(orders))
//	// → time=... level=INFO msg="orders fetched" request_id=5f0c... store_id=store_42 count=3
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/yuimaru-ship/storefront/config"
)

var L *slog.Logger

func init() {
	Setup(os.Stdout, config.IsProduction())
}

// Setup replaces the base logger. Production uses JSON lines at INFO;
// everything else gets human-readable text at DEBUG.
func Setup(w io.Writer, production bool) {
	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the per-request logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log into ctx. Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
