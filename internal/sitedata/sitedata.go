// Package sitedata loads the auxiliary data table exposed to templates as `data`.
package sitedata

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/value"
)

// TranslationsKey names the data set holding per-language translation tables.
const TranslationsKey = "translations"

// Table maps a data set name (the file stem) to its contents.
// It is never modified after Load returns.
type Table map[string]value.Value

// Native converts the table into plain Go maps and slices for templates.
func (t Table) Native() map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		out[k] = v.Interface()
	}
	return out
}

// Translations returns the translation table for lang. It reports false when
// there is no translations data set, it is not a mapping or it has no entry
// for lang.
func (t Table) Translations(lang string) (value.Value, bool) {
	translations, ok := t[TranslationsKey].(value.Map)
	if !ok {
		return nil, false
	}
	return translations.Get(lang)
}

var errTrailingJSON = stderrors.New("unexpected data after top-level JSON value")

type decodeFunc func([]byte) (any, error)

var decoders = map[string]decodeFunc{
	".yml":  decodeYAML,
	".yaml": decodeYAML,
	".json": decodeJSON,
}

// Load reads every recognized data file directly inside dir. Subdirectories
// and files with other extensions are skipped. A missing directory yields an
// empty table; a malformed file is a data error.
func Load(dir string, logger *slog.Logger) (Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table := Table{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			logger.Debug("Data directory not found", logfields.Dir(dir))
			return table, nil
		}
		return nil, errors.DataLoadError(dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		decode, ok := decoders[ext]
		if !ok {
			continue
		}

		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path) // #nosec G304 -- path is built from a directory listing
		if err != nil {
			return nil, errors.DataLoadError(path, err)
		}
		decoded, err := decode(raw)
		if err != nil {
			return nil, errors.DataLoadError(path, err)
		}
		v, err := value.FromAny(decoded)
		if err != nil {
			return nil, errors.DataLoadError(path, err)
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if _, dup := table[stem]; dup {
			logger.Warn("Data set defined more than once, later file wins",
				logfields.DataSet(stem), logfields.Path(path))
		}
		table[stem] = v
	}

	logger.Debug("Loaded data sets", logfields.Dir(dir), logfields.Count(len(table)))
	return table, nil
}

func decodeYAML(raw []byte) (any, error) {
	var out any
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		return nil, errTrailingJSON
	}
	return out, nil
}
