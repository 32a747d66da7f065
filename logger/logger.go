package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger

	DurationAsString = true
	ErrorsFieldName  = "errors"
	RawFieldName     = "raw"

	EmptyMessage = ""
)

func Log() *zerolog.Logger {
	return &log
}

// Builder appends fields to an event in place.
type Builder func(event *zerolog.Event)

func init() {
	// Default to Trace level
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	// Default output to console
	SetConsoleWriter()
}

func SetWriter(w io.Writer) {
	log = zerolog.New(w)
}

func SetLogger(logger zerolog.Logger) {
	log = logger
}

func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func doLog(event *zerolog.Event, args []interface{}) {
	event.Timestamp()

	if len(args) == 0 {
		event.Msg(EmptyMessage)
		return
	}

	switch t := args[0].(type) {
	case error:
		event.Err(t)
		args = args[1:]
	}

	for i := 0; i < len(args); i += 2 {
		key := args[i]
		if key == nil {
			i -= 1
			continue
		}

		switch k := key.(type) {
		case string:
			// Treat it like a format template?
			if strings.Contains(k, "%") {
				event.Msgf(k, args[i+1:]...)
				return
			}

			valueIndex := i + 1
			// Treat key as message?
			if valueIndex == len(args) {
				event.Msg(k)
				return
			}

			value := args[valueIndex]
			switch v := value.(type) {
			case string:
				event.Str(k, v)
			case int:
				event.Int(k, v)
			case int64:
				event.Int64(k, v)
			case uint32:
				event.Uint32(k, v)
			case uint64:
				event.Uint64(k, v)
			case float32:
				event.Float32(k, v)
			case float64:
				event.Float64(k, v)
			case bool:
				event.Bool(k, v)
			case error:
				event.AnErr(k, v)
			case time.Duration:
				if DurationAsString {
					event.Str(k, v.String())
				} else {
					event.Dur(k, v)
				}
			case []byte:
				event.Bytes(k, v)
			case Builder:
				v(event)
			default:
				event.Interface(k, value)
			}
			continue

		case error:
			event.Err(k)
		case []error:
			event.Errs(ErrorsFieldName, k)
		case []byte:
			event.Bytes(RawFieldName, k)
		case Builder:
			k(event)
		}
		i -= 1
	}

	event.Msg(EmptyMessage)
}

// Trace logs a message at level Trace on the standard logger.
func Trace(args ...interface{}) {
	doLog(log.Trace(), args)
}

// Debug logs a message at level Debug on the standard logger.
func Debug(args ...interface{}) {
	doLog(log.Debug(), args)
}

// Info logs a message at level Info on the standard logger.
func Info(args ...interface{}) {
	doLog(log.Info(), args)
}

// Warn logs a message at level Warn on the standard logger.
func Warn(args ...interface{}) {
	doLog(log.Warn(), args)
}

// WarnErr logs a message at level Warn on the standard logger.
func WarnErr(err error, args ...interface{}) {
	doLog(log.Warn().Err(err), args)
}

// Error logs a message at level Error on the standard logger.
func Error(err error, args ...interface{}) {
	doLog(log.Error().Err(err), args)
}

// Fatal logs a message at level Fatal on the standard logger then the
// process will exit with status set to 1.
func Fatal(err error, args ...interface{}) {
	doLog(log.Fatal().Err(err), args)
}
