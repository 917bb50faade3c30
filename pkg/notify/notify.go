// Package notify carries the transient, non-blocking messages the views
// raise after an action ("toasts"). Notifying never fails and never blocks
// the caller.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notification struct {
	Level   Level
	Message string
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

func Info(n Notifier, msg string)    { n.Notify(Notification{Level: LevelInfo, Message: msg}) }
func Success(n Notifier, msg string) { n.Notify(Notification{Level: LevelSuccess, Message: msg}) }
func Error(n Notifier, msg string)   { n.Notify(Notification{Level: LevelError, Message: msg}) }

// Nop discards every notification.
var Nop Notifier = Func(func(Notification) {})

// Logger writes notifications to a zap logger.
type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Notify(n Notification) {
	switch n.Level {
	case LevelError:
		l.logger.Warn(n.Message, zap.Stringer("level", n.Level))
	default:
		l.logger.Info(n.Message, zap.Stringer("level", n.Level))
	}
}

// Multi fans a notification out to several notifiers.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(n Notification) {
		for _, target := range notifiers {
			target.Notify(n)
		}
	})
}

// Recorder keeps every notification in memory, mostly for tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, n)
}

// All returns a copy of the recorded notifications in order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.entries...)
}

// Messages returns the recorded messages of the given level.
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.entries {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Notification{}, false
	}
	return r.entries[len(r.entries)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
