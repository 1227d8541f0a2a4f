package logfields

import "log/slog"

// Canonical log field names shared by the builder, server and hooks.
const (
	KeyPath       = "path"
	KeyFile       = "file"
	KeyURL        = "url"
	KeyPages      = "pages"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Helpers returning slog.Attr so callers can compose.
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func File(f string) slog.Attr       { return slog.String(KeyFile, f) }
func URL(u string) slog.Attr        { return slog.String(KeyURL, u) }
func Pages(n int) slog.Attr         { return slog.Int(KeyPages, n) }
func DurationMS(ms int64) slog.Attr { return slog.Int64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
