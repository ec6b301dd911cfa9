package logging

import (
	"io"
	"log/slog"
)

// Setup installs a JSON logger writing to w as the default and returns its
// handler so it can later be combined with a DBHandler.
func Setup(w io.Writer) slog.Handler {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	return handler
}

// Attach makes base plus the DB sink the default handler.
func Attach(base slog.Handler, sink *DBHandler) {
	slog.SetDefault(slog.New(NewMultiHandler(base, sink)))
}
