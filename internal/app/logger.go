package app

import (
	"io"
	"strings"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
)

// NewLogger builds the logger selected by LOG_FORMAT.
func NewLogger(cfg config.Log, w io.Writer) logx.Logger {
	switch strings.ToLower(cfg.Format) {
	case "zerolog":
		return logx.NewZerolog(w, cfg.Level, false)
	case "console":
		return logx.NewZerolog(w, cfg.Level, true)
	case "text":
		return logx.NewSlog(w, "text", cfg.Level)
	default:
		return logx.NewSlog(w, "json", cfg.Level)
	}
}
