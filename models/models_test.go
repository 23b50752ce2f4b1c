package models

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeGz(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDecompress(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "model.yml.gz")
	writeGz(t, src, "ntrees: 8")

	dest, err := decompress(src)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if dest != filepath.Join(dir, "model.yml") {
		t.Fatalf("dest == %s", dest)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ntrees: 8" {
		t.Fatalf("content %q", data)
	}
}

func TestDecompress_ReusesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "model.yml.gz")
	writeGz(t, src, "fresh")

	existing := filepath.Join(dir, "model.yml")
	if err := os.WriteFile(existing, []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest, err := decompress(src)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "cached" {
		t.Fatal("existing decompressed copy was overwritten")
	}
}

func TestDecompress_BadGzip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "model.yml.gz")
	if err := os.WriteFile(src, []byte("not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := decompress(src); err == nil {
		t.Fatal("corrupt archive should fail")
	}
}

func TestOptionsFill_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	opts := Options{}
	if err := opts.fill(); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if opts.RepoID != DefaultEdgeModelRepo || opts.FileName != DefaultEdgeModelFile {
		t.Fatalf("defaults: %+v", opts)
	}
	if opts.CacheDir == "" {
		t.Fatal("cache dir not defaulted")
	}
}
