package presenter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/cover-letter-generator/internal/apiclient"
)

// DirDownloader writes downloads into a directory, creating it when missing.
type DirDownloader struct {
	Dir string
}

// Download implements Downloader. It returns the path of the written file.
func (d DirDownloader) Download(_ context.Context, dl *apiclient.Download) (string, error) {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	name := filepath.Base(dl.Filename)
	if name == "." || name == string(filepath.Separator) || name == ".." {
		return "", fmt.Errorf("invalid download filename %q", dl.Filename)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
