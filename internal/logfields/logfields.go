package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPass       = "pass_id"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyFile       = "file"
	KeySlug       = "slug"
	KeyKind       = "kind"
	KeyCount      = "count"
	KeyBytes      = "bytes"
	KeyWidth      = "width"
	KeyFormat     = "format"
	KeySource     = "source"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Pass(id string) slog.Attr        { return slog.String(KeyPass, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Width(w int) slog.Attr           { return slog.Int(KeyWidth, w) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
