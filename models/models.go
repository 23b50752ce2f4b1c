// Package models fetches pretrained model files used by the structured
// forest edge detector from the Hugging Face hub, caching them locally.
package models

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/go-huggingface/hub"
	"go.uber.org/zap"
)

// Defaults for the structured edge detection model.
const (
	DefaultEdgeModelRepo = "opencv/ximgproc-models"
	DefaultEdgeModelFile = "model.yml.gz"
)

// Options selects the hub repository and file to fetch.
type Options struct {
	// RepoID is the hub repository, e.g. "opencv/ximgproc-models".
	RepoID string
	// FileName is the file within the repository. Files ending in .gz are
	// decompressed after download.
	FileName string
	// CacheDir overrides the default hub cache location.
	CacheDir string
}

func (o *Options) fill() error {
	if o.RepoID == "" {
		o.RepoID = DefaultEdgeModelRepo
	}
	if o.FileName == "" {
		o.FileName = DefaultEdgeModelFile
	}
	if o.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving user home dir: %w", err)
		}
		o.CacheDir = filepath.Join(home, ".cache", "huggingface", "hub")
	}
	return nil
}

// Fetch downloads the model file (if not already cached) and returns a
// local path ready to hand to the edge detector. Gzipped files are
// decompressed next to the download.
func Fetch(opts Options) (string, error) {
	if err := opts.fill(); err != nil {
		return "", err
	}

	repo := hub.New(opts.RepoID).WithCacheDir(opts.CacheDir)
	path, err := repo.DownloadFile(opts.FileName)
	if err != nil {
		return "", fmt.Errorf("downloading %s from %s: %w", opts.FileName, opts.RepoID, err)
	}
	Logger().Info("model file downloaded",
		zap.String("repo", opts.RepoID),
		zap.String("file", opts.FileName),
		zap.String("path", path))

	if !strings.HasSuffix(path, ".gz") {
		return path, nil
	}
	return decompress(path)
}

// FetchEdgeModel fetches the default structured edge detection model.
func FetchEdgeModel(cacheDir string) (string, error) {
	return Fetch(Options{CacheDir: cacheDir})
}

// decompress gunzips path into the same directory, reusing an existing
// decompressed copy when present.
func decompress(path string) (string, error) {
	dest := strings.TrimSuffix(path, ".gz")
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening compressed model: %w", err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("reading gzip header: %w", err)
	}
	defer gz.Close()

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("creating model file: %w", err)
	}
	if _, err := io.Copy(out, gz); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("decompressing model: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("closing model file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("placing model file: %w", err)
	}
	return dest, nil
}
