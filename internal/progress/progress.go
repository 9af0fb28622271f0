package progress

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Level indicates the severity/type of a progress message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Fields are structured key/value pairs attached to an event.
type Fields map[string]any

// Event represents a progress update.
type Event struct {
	Message string
	Level   Level
	Fields  Fields
}

// Func receives progress events. A nil Func discards them.
type Func func(Event)

// Emit sends an event built from its arguments.
func (f Func) Emit(level Level, message string, fields Fields) {
	if f == nil {
		return
	}
	f(Event{Message: message, Level: level, Fields: fields})
}

// Emitf sends an event with a formatted message and no fields.
func (f Func) Emitf(level Level, format string, args ...any) {
	if f == nil {
		return
	}
	f(Event{Message: fmt.Sprintf(format, args...), Level: level})
}

// Logrus returns a Func that writes events to logger. Verbose events are
// logged at debug level and success events at info level with an
// "outcome=success" field.
func Logrus(logger logrus.FieldLogger) Func {
	return func(e Event) {
		entry := logger.WithFields(logrus.Fields(e.Fields))
		switch e.Level {
		case LevelVerbose:
			entry.Debug(e.Message)
		case LevelWarning:
			entry.Warn(e.Message)
		case LevelError:
			entry.Error(e.Message)
		case LevelSuccess:
			entry.WithField("outcome", "success").Info(e.Message)
		default:
			entry.Info(e.Message)
		}
	}
}
