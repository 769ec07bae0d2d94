// Package fetch downloads a zip archive over HTTP and extracts it.
package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrNotZip reports a URL that does not name a .zip file.
	ErrNotZip = errors.New("the URL provided does not point to a zip file")

	// ErrBadStatus reports a non-200 response.
	ErrBadStatus = errors.New("the URL provided does not exist")

	// ErrEmptyArchive reports an archive without any files.
	ErrEmptyArchive = errors.New("the zip file is empty")

	// ErrUnsafePath reports an archive entry that would land outside the target directory.
	ErrUnsafePath = errors.New("zip entry escapes the target directory")
)

// MaxArchiveSize bounds the bytes read from the response body.
const MaxArchiveSize = 256 << 20

// Options configures Download.
type Options struct {
	Client *http.Client
	Logger *slog.Logger
}

// Download fetches the zip archive at rawURL and extracts its files into dir,
// creating dir if needed. It returns the extracted file paths in archive order.
func Download(ctx context.Context, rawURL, dir string, opts Options) ([]string, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotZip, err)
	}
	if !strings.HasSuffix(strings.ToLower(path.Base(u.Path)), ".zip") {
		return nil, fmt.Errorf("%w: %s", ErrNotZip, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrBadStatus, rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxArchiveSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if len(body) > MaxArchiveSize {
		return nil, fmt.Errorf("archive %s is larger than %d bytes", rawURL, MaxArchiveSize)
	}
	logger.Debug("downloaded archive", slog.String("url", rawURL), slog.Int("bytes", len(body)))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	files, err := Extract(bytes.NewReader(body), int64(len(body)), dir)
	if err != nil {
		return nil, err
	}
	logger.Info("extracted archive", slog.String("dir", dir), slog.Int("files", len(files)))
	return files, nil
}

// Extract writes the files of a zip archive under dir, which must exist.
// Directories are created as needed; entries that would escape dir are rejected.
func Extract(r io.ReaderAt, size int64, dir string) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotZip, err)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, f := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return nil, fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return nil, err
		}
		files = append(files, target)
	}
	if len(files) == 0 {
		return nil, ErrEmptyArchive
	}
	return files, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return dst.Close()
}
