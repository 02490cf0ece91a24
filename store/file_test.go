package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreNewFile(t *testing.T) {
	dir := t.TempDir()
	s := &FileStore{Filename: filepath.Join(dir, "out", "capture.gif"), Method: OutputMethodNewFile}

	first, err := s.Save(context.Background(), []byte("first"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Save(context.Background(), []byte("second"))
	if err != nil {
		t.Fatal(err)
	}

	if first != filepath.Join(dir, "out", "capture.gif") {
		t.Errorf("unexpected first path %v", first)
	}
	if second != filepath.Join(dir, "out", "capture-1.gif") {
		t.Errorf("unexpected second path %v", second)
	}

	data, err := os.ReadFile(first)
	if err != nil || !bytes.Equal(data, []byte("first")) {
		t.Errorf("first file was replaced: %q %v", data, err)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := &FileStore{Filename: filepath.Join(dir, "capture.gif"), Method: OutputMethodOverwrite}

	if _, err := s.Save(context.Background(), []byte("a longer payload")); err != nil {
		t.Fatal(err)
	}
	path, err := s.Save(context.Background(), []byte("short"))
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("short")) {
		t.Errorf("expected truncated overwrite, got %q", data)
	}
}

func TestParseOutputMethod(t *testing.T) {
	for _, entry := range []struct {
		in       string
		expected OutputMethod
	}{
		{"new-file", OutputMethodNewFile},
		{"overwrite", OutputMethodOverwrite},
		{"", OutputMethodNewFile},
	} {
		m, err := ParseOutputMethod(entry.in)
		if err != nil || m != entry.expected {
			t.Errorf("ParseOutputMethod(%q): expected=%v, got=%v (%v)", entry.in, entry.expected, m, err)
		}
	}
	if _, err := ParseOutputMethod("abort"); err == nil {
		t.Error("expected error")
	}
}
