package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// testdataDir is resolved when the test binary starts, so tests that
// chdir into temp dirs still find the package's testdata.
var testdataDir = func() string {
	wd, err := os.Getwd()
	if err != nil {
		return "testdata"
	}
	return filepath.Join(wd, "testdata")
}()

// Golden compares got against testdata/<name>.golden. Run the tests with
// GOLDEN_UPDATE set to rewrite the golden files instead of comparing.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join(testdataDir, name+".golden")

	if os.Getenv("GOLDEN_UPDATE") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating testdata dir: %v", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("updating %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v\nGot:\n%s", path, err, got)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("output mismatch for %s\nWant:\n%s\nGot:\n%s", name, want, got)
	}
}

// GoldenString is Golden for string output.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}
