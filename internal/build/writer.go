package build

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// writePage stores html at rel (slash separated) below outputDir.
func writePage(outputDir, rel, html string) error {
	target := filepath.Join(outputDir, filepath.FromSlash(rel))
	// #nosec G301 -- published site directories must be world readable
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create page directory").
			WithContext("path", target).
			Build()
	}
	// #nosec G306 -- published pages must be world readable
	if err := os.WriteFile(target, []byte(html), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write page").
			WithContext("path", target).
			Build()
	}
	return nil
}
