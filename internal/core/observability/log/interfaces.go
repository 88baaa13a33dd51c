package log

import (
	"context"
	"time"
)

type Log interface {
	Log(level Level, msg string, fields ...Field)

	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	With(fields ...Field) Log
	WithContext(ctx context.Context) Log

	SetLevel(level Level)
	GetLevel() Level
}

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// ParseLevel maps a config string onto a Level. Unknown names fall back to info.
func ParseLevel(name string) (Level, bool) {
	switch name {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "info"
	}
}

type Field struct {
	Key   string
	Type  FieldType
	Value any
}

// A FieldType indicates which member of the Field union struct should be used
// and how it should be serialized.
type FieldType uint8

const (
	UnknownType FieldType = iota
	BoolType
	DurationType
	Float64Type
	IntType
	Int64Type
	StringType
	Uint64Type
	ErrorType
)

func Any(key string, val any) Field {
	return Field{Key: key, Type: UnknownType, Value: val}
}

func Bool(key string, val bool) Field {
	return Field{Key: key, Type: BoolType, Value: val}
}

func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Type: DurationType, Value: val}
}

func Float64(key string, val float64) Field {
	return Field{Key: key, Type: Float64Type, Value: val}
}

func Int(key string, val int) Field {
	return Field{Key: key, Type: IntType, Value: val}
}

func Int64(key string, val int64) Field {
	return Field{Key: key, Type: Int64Type, Value: val}
}

func String(key string, val string) Field {
	return Field{Key: key, Type: StringType, Value: val}
}

func Uint64(key string, val uint64) Field {
	return Field{Key: key, Type: Uint64Type, Value: val}
}

func Error(val error) Field {
	return Field{Key: "error", Type: ErrorType, Value: val}
}

func ErrorWithKey(key string, val error) Field {
	return Field{Key: key, Type: ErrorType, Value: val}
}
