package logger

import (
	"log"
	"log/slog"
)

// New returns a *log.Logger that writes through base at error level, tagged
// with the component. Used where the stdlib still expects *log.Logger, such
// as http.Server.ErrorLog.
func New(base *slog.Logger, component string) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), slog.LevelError)
}
