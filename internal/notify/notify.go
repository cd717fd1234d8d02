// Package notify surfaces transient user-visible notifications. A
// failing notification is cosmetic: it is logged and swallowed, never
// propagated into the pipeline.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Level grades a notification for the toast UI.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one transient toast.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier delivers toasts to whatever surfaces are attached.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Failure(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
}

// LogNotifier writes notifications to the application log. It is the
// fallback surface when no panel is connected.
type LogNotifier struct{}

func (LogNotifier) Success(_ context.Context, msg string) {
	zap.L().Info("notify", zap.String("level", "success"), zap.String("message", msg))
}

func (LogNotifier) Failure(_ context.Context, msg string) {
	zap.L().Warn("notify", zap.String("level", "error"), zap.String("message", msg))
}

func (LogNotifier) Info(_ context.Context, msg string) {
	zap.L().Info("notify", zap.String("level", "info"), zap.String("message", msg))
}

// Multi fans a notification out to several surfaces.
type Multi []Notifier

func (m Multi) Success(ctx context.Context, msg string) {
	for _, n := range m {
		n.Success(ctx, msg)
	}
}

func (m Multi) Failure(ctx context.Context, msg string) {
	for _, n := range m {
		n.Failure(ctx, msg)
	}
}

func (m Multi) Info(ctx context.Context, msg string) {
	for _, n := range m {
		n.Info(ctx, msg)
	}
}
