package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID   = "run_id"
	KeyVersion = "version"
	KeyPackage = "package"
	KeyKind    = "kind"
	KeyStage   = "stage"
	KeyPath    = "path"
	KeyURL     = "url"
	KeyBranch  = "branch"
	KeyCount   = "count"
	KeyError   = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr   { return slog.String(KeyRunID, id) }
func Version(v string) slog.Attr  { return slog.String(KeyVersion, v) }
func Package(p string) slog.Attr  { return slog.String(KeyPackage, p) }
func Kind(k string) slog.Attr     { return slog.String(KeyKind, k) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr     { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr      { return slog.String(KeyURL, u) }
func Branch(b string) slog.Attr   { return slog.String(KeyBranch, b) }
func Count(n int) slog.Attr       { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
