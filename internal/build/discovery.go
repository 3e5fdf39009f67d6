package build

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

var contentExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
}

// Discover walks root and returns the absolute path of every Markdown file in
// lexical order. Hidden directories and directories listed in skip are not
// entered.
func Discover(root string, skip []string) ([]string, error) {
	skipped := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		abs, err := filepath.Abs(s)
		if err != nil {
			return nil, err
		}
		skipped[abs] = struct{}{}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if _, ok := skipped[path]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := contentExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
