package sync_all

import (
	"context"
	"time"
)

type SyncEngine interface {
	SyncAll(ctx context.Context, now time.Time) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
