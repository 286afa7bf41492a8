// Package archive finds result archives and extracts their result records.
package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/okian/autograde/internal/domain/model"
)

// Scan recursively collects files under root whose base name matches
// pattern (e.g. "results_*.zip"), sorted for deterministic processing.
func Scan(root, pattern string) ([]string, error) {
	var archives []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadPattern, err)
		}
		if ok {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(archives)
	return archives, nil
}

// ReadRecord extracts the named JSON member from the archive at path and
// decodes it into a result record. A missing member wraps
// ErrMissingResultsFile so callers can treat it as a skippable defect.
func ReadRecord(path, member string) (model.Record, error) {
	var record model.Record

	r, err := zip.OpenReader(path)
	if err != nil {
		return record, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	f, err := r.Open(member)
	if err != nil {
		return record, fmt.Errorf("%w: %s in %s", ErrMissingResultsFile, member, path)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(&record); err != nil {
		return record, fmt.Errorf("decode %s in %s: %w", member, path, err)
	}
	return record, nil
}
