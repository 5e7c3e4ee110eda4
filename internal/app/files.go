package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirResult summarises one directory run.
type DirResult struct {
	Processed int
	Failed    int
	Records   int
}

// Err reports failed files as a single error, nil when every file succeeded.
func (r DirResult) Err(stage string) error {
	if r.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%s: %d of %d files failed", stage, r.Failed, r.Processed+r.Failed)
}

// listFiles returns the regular files in dir with the given extension, sorted by name.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// writeJSON writes v with four-space indentation and without HTML escaping.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func baseName(path, ext string) string {
	return strings.TrimSuffix(filepath.Base(path), ext)
}
