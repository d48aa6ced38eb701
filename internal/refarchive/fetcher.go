// Package refarchive downloads the cppreference tag-file archive and extracts
// the single tag file shared by all doxygen invocations.
package refarchive

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/christophebedard/gen-docs/internal/errors"
	"github.com/christophebedard/gen-docs/internal/logfields"
)

// DefaultArchiveURL is the cppreference HTML book archive containing the
// doxygen web tag file.
const DefaultArchiveURL = "http://upload.cppreference.com/mwiki/images/b/b2/html_book_20190607.zip"

// TagfileName is the archive entry extracted and handed to doxygen as an
// external TAGFILES source.
const TagfileName = "cppreference-doxygen-web.tag.xml"

// maxArchiveBytes caps the downloaded archive size. The cppreference book is
// in the hundreds of megabytes.
const maxArchiveBytes = 1 << 30

// Fetcher downloads an archive once and extracts a single entry from it.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a generous
// timeout sized for the archive download.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Fetcher{client: client}
}

// Ensure makes sure destDir/entryPath exists, downloading and extracting the
// archive if necessary, and returns its path. If the file is already present
// no network call is made; presence alone is sufficient, there is no
// freshness or checksum verification.
func (f *Fetcher) Ensure(ctx context.Context, url, entryPath, destDir string) (string, error) {
	destPath := filepath.Join(destDir, filepath.FromSlash(entryPath))
	if _, err := os.Stat(destPath); err == nil {
		slog.Info("Reference tag file already present, skipping download", logfields.Path(destPath))
		return destPath, nil
	}

	slog.Info("Downloading reference archive", logfields.URL(url))
	data, err := f.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.WrapFatal(err, errors.CategoryNetwork, "malformed reference archive")
	}

	entry, err := reader.Open(entryPath)
	if err != nil {
		return "", errors.WrapFatal(err, errors.CategoryNetwork, "entry not found in reference archive: "+entryPath)
	}
	defer func() {
		_ = entry.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return "", errors.WrapFatal(err, errors.CategoryFileSystem, "failed to create data directory")
	}
	out, err := os.Create(destPath)
	if err != nil {
		return "", errors.WrapFatal(err, errors.CategoryFileSystem, "failed to create reference tag file")
	}
	defer func() {
		_ = out.Close()
	}()
	if _, err := io.Copy(out, entry); err != nil {
		return "", errors.WrapFatal(err, errors.CategoryFileSystem, "failed to extract reference tag file")
	}

	slog.Info("Extracted reference tag file", logfields.Path(destPath))
	return destPath, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryNetwork, "failed to build archive request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryNetwork, "failed to fetch reference archive")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Fatal(errors.CategoryNetwork,
			"reference archive request failed with HTTP status "+resp.Status)
	}

	limited := io.LimitReader(resp.Body, maxArchiveBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryNetwork, "failed to read reference archive")
	}
	if len(data) > maxArchiveBytes {
		return nil, errors.Fatal(errors.CategoryNetwork, "reference archive too large")
	}
	return data, nil
}
