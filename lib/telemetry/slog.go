package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

func slogLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// InitSlog installs a tint handler writing to stdout as the default logger.
func InitSlog(debug bool) {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slogLevel(debug),
		TimeFormat: time.Kitchen,
	})))
}

// InitSlogFile is InitSlog with every record additionally mirrored to a
// log file at path. The returned function closes the file.
func InitSlogFile(debug bool, path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	level := slogLevel(debug)
	slog.SetDefault(slog.New(fanoutHandler{handlers: []slog.Handler{
		tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
		tint.NewHandler(f, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    true,
		}),
	}}))
	return f.Close, nil
}

// fanoutHandler forwards records to every underlying handler that wants
// them, so the terminal and the log file stay in sync.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	errlist := []error{}
	for _, h := range f.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		err := h.Handle(ctx, record.Clone())
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return fanoutHandler{handlers: next}
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return fanoutHandler{handlers: next}
}
