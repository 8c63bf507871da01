package telemetry

import (
	"fmt"
	"log/slog"
	"os"
)

// InitSlog installs a text handler on stderr as the default logger, at debug
// level when `verbose` is set.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// SlogAPI sends reports to the default slog logger. Params become
// "p0", "p1", ... attributes in order.
type SlogAPI struct{}

func attrs(head []any, params []any) []any {
	out := make([]any, 0, len(head)+len(params)*2)
	out = append(out, head...)
	for i, p := range params {
		out = append(out, fmt.Sprintf("p%d", i), p)
	}
	return out
}

func (SlogAPI) ReportBroken(id string, params ...any) {
	slog.Error("broken", attrs([]any{"id", id}, params)...)
}

func (SlogAPI) ReportWarning(id string, params ...any) {
	slog.Warn("warning", attrs([]any{"id", id}, params)...)
}

func (SlogAPI) ReportDebug(msg string, params ...any) {
	slog.Debug(msg, attrs(nil, params)...)
}

func (SlogAPI) ReportCount(id string, count int64) {
	slog.Info("count", "id", id, "n", count)
}
