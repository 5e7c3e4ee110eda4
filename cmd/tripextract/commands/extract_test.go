package commands

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("METRICS_ADDR", "")
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestExtract_MissingSeedDirFails(t *testing.T) {
	data := t.TempDir()
	in := filepath.Join(data, "do", prettyDir)
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(in, "a.json"), []byte(`[{"url":"u","html":"<h1>Pier</h1>"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runCLI(t, "extract", "--data-dir", data, "-c", "do", "--seed-from", filepath.Join(data, "typo"))
	if err == nil || !errors.Is(err, fs.ErrNotExist) || !strings.Contains(err.Error(), "--seed-from") {
		t.Fatalf("expected a seed error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(data, "do", extractDir, "a_clean.json")); !os.IsNotExist(err) {
		t.Fatalf("nothing should be extracted after a seed failure")
	}

	seed := filepath.Join(data, "seed")
	if err := os.MkdirAll(seed, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(seed, "old_clean.json"), []byte(`[{"activity_id":"A0041"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, "extract", "--data-dir", data, "-c", "do", "--seed-from", seed); err != nil {
		t.Fatalf("extract: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(data, "do", extractDir, "a_clean.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(b), `"activity_id": "A0042"`) {
		t.Fatalf("numbering should continue after the seed, got:\n%s", b)
	}
}

func TestExtract_MissingInputIsSkipped(t *testing.T) {
	if err := runCLI(t, "extract", "--data-dir", t.TempDir(), "-c", "eat", "--seed-from", ""); err != nil {
		t.Fatalf("missing category input should be skipped, got %v", err)
	}
}
