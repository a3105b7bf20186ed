// Package logger owns the process-wide zerolog logger of the account service
// and the request-scoped children derived from it.
//
// Call Init once in main. Components take a child from Component; request
// handling code attaches the inbound request id with WithRequestID and reads
// it back through Ctx or RequestID.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	FieldService   = "service"
	FieldVersion   = "version"
	FieldComponent = "component"
	FieldRequestID = "request_id"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches to coloured console output for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Version are stamped on every entry when set.
	Service string
	Version string
}

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init builds the singleton logger. Only the first call has any effect.
// The logger also becomes zerolog's fallback for contexts without one.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		ctx := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
		if opts.Service != "" {
			ctx = ctx.Str(FieldService, opts.Service)
		}
		if opts.Version != "" {
			ctx = ctx.Str(FieldVersion, opts.Version)
		}
		instance = ctx.Logger()
		zerolog.DefaultContextLogger = &instance

		initialized = true
	})
	return instance
}

// Get returns the singleton logger. Panics if Init has not been called yet.
func Get() zerolog.Logger {
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Component returns a child of the singleton tagged with the component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str(FieldComponent, name).Logger()
}

type requestIDKey struct{}

// WithRequestID stores id in ctx together with a child of base carrying it,
// so that every later Ctx(ctx) call logs the same request id.
func WithRequestID(ctx context.Context, base zerolog.Logger, id string) context.Context {
	if id == "" {
		return base.WithContext(ctx)
	}
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	l := base.With().Str(FieldRequestID, id).Logger()
	return l.WithContext(ctx)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Ctx returns the logger attached to ctx. Without one it falls back to the
// singleton, or to a no-op logger before Init.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if initialized {
		return &instance
	}
	nop := zerolog.Nop()
	return &nop
}

// Reset tears down the singleton so that the next Init call rebuilds it.
// Tests only.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
	zerolog.DefaultContextLogger = nil
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
