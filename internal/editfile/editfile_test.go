package editfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)

	if err := Write(path, []string{"make build", "make test"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	lines, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(lines) != 2 || lines[0] != "make build" || lines[1] != "make test" {
		t.Errorf("lines = %v", lines)
	}
}

func TestRead_DropsBlankAndTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)
	if err := os.WriteFile(path, []byte("  echo a  \n\n\necho b\n   \n"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(lines) != 2 || lines[0] != "echo a" || lines[1] != "echo b" {
		t.Errorf("lines = %v", lines)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestRemove_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)
	if err := Write(path, []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
}
