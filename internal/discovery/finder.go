// Package discovery locates notebooks to grade.
package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Notebooks recursively searches root for files with the given extension,
// skipping anything under a directory named like checkpointDir (editor
// backup copies are not submissions). Results are sorted so grading order
// is deterministic.
func Notebooks(root, extension, checkpointDir string) ([]string, error) {
	if extension == "" {
		return nil, ErrEmptyExtension
	}

	var notebooks []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if checkpointDir != "" && d.Name() == checkpointDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), extension) {
			notebooks = append(notebooks, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(notebooks)
	return notebooks, nil
}
