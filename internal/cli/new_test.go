package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/haskel/2b2q/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestNewCommandDirMode(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "new", "--dir", dir, "10-6-2-4-1")
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	want := filepath.Join(dir, "10-6-2-4-1.json")
	if !strings.Contains(out, want) {
		t.Errorf("expected created path %q in output, got %q", want, out)
	}

	m, err := storage.Load(want)
	if err != nil {
		t.Fatalf("created model unreadable: %v", err)
	}
	if !reflect.DeepEqual(m.Net.Topology(), []int{10, 6, 2, 4, 1}) {
		t.Errorf("unexpected topology: %v", m.Net.Topology())
	}

	// Same topology targets the same file; without --force that collides.
	if _, err := execute(t, "new", "--dir", dir, "10-6-2-4-1"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	if _, err := execute(t, "new", "--dir", dir, "--force", "10-6-2-4-1"); err != nil {
		t.Errorf("forced overwrite failed: %v", err)
	}
}

func TestNewCommandBadLayers(t *testing.T) {
	_, err := execute(t, "new", "--path", filepath.Join(t.TempDir(), "m.json"), "10-0-1")
	if !errors.Is(err, errUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
}
