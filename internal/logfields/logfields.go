package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPath       = "path"
	KeyRelPath    = "relative_path"
	KeyOutput     = "output"
	KeyURL        = "url"
	KeyTemplate   = "template"
	KeyLayout     = "layout"
	KeyLanguage   = "lang"
	KeyCollection = "collection"
	KeyDataSet    = "data_set"
	KeyDir        = "dir"
	KeyWorker     = "worker"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func RelPath(p string) slog.Attr        { return slog.String(KeyRelPath, p) }
func Output(p string) slog.Attr         { return slog.String(KeyOutput, p) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Template(name string) slog.Attr    { return slog.String(KeyTemplate, name) }
func Layout(name string) slog.Attr      { return slog.String(KeyLayout, name) }
func Language(tag string) slog.Attr     { return slog.String(KeyLanguage, tag) }
func Collection(name string) slog.Attr  { return slog.String(KeyCollection, name) }
func DataSet(name string) slog.Attr     { return slog.String(KeyDataSet, name) }
func Dir(d string) slog.Attr            { return slog.String(KeyDir, d) }
func Worker(id int) slog.Attr           { return slog.Int(KeyWorker, id) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
