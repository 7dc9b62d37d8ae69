package tiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
)

// DefaultBaseURL is the bucket path of tile 36UUD, 2023-08-28, sequence 0.
const DefaultBaseURL = "http://sentinel-s2-l2a.s3.amazonaws.com/tiles/36/U/UD/2023/8/28/0"

// DefaultPrefix starts every downloaded file name.
const DefaultPrefix = "T36UUD_20230828"

// DefaultBands maps band names to their path below the base URL. 10 m bands
// live under R10m, 20 m bands under R20m.
var DefaultBands = map[string]string{
	"B03": "R10m/B03.jp2",
	"B04": "R10m/B04.jp2",
	"B05": "R20m/B05.jp2",
	"B08": "R10m/B08.jp2",
	"B11": "R20m/B11.jp2",
	"B12": "R20m/B12.jp2",
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader fetches band files into a directory.
type Downloader struct {
	Client  Doer
	BaseURL string
	Prefix  string
	Bands   map[string]string

	// Logf reports progress. Nil uses log.Printf.
	Logf func(format string, v ...interface{})
}

// NewDownloader returns a Downloader for the example tile using
// http.DefaultClient.
func NewDownloader() *Downloader {
	return &Downloader{
		Client:  http.DefaultClient,
		BaseURL: DefaultBaseURL,
		Prefix:  DefaultPrefix,
		Bands:   DefaultBands,
	}
}

// BandFile reports the outcome for one band.
type BandFile struct {
	Band    string `json:"band"`
	Path    string `json:"path"`
	Skipped bool   `json:"skipped,omitempty"`
	Bytes   int64  `json:"bytes"`
	Error   string `json:"error,omitempty"`
}

// FileName returns the local file name for band, <prefix>_<band>.jp2.
func (d *Downloader) FileName(band string) string {
	return fmt.Sprintf("%s_%s.jp2", d.Prefix, band)
}

// Download fetches every band into dir, creating it if needed. Bands whose
// file already exists are skipped. A failed band does not stop the others;
// all failures are joined into the returned error. Bands are processed in
// name order.
func (d *Downloader) Download(ctx context.Context, dir string) ([]BandFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	logf := d.Logf
	if logf == nil {
		logf = log.Printf
	}

	names := make([]string, 0, len(d.Bands))
	for name := range d.Bands {
		names = append(names, name)
	}
	sort.Strings(names)

	logf("Downloading %d bands from %s to %s", len(names), d.BaseURL, dir)

	results := make([]BandFile, 0, len(names))
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		bf := BandFile{Band: name, Path: filepath.Join(dir, d.FileName(name))}
		if info, err := os.Stat(bf.Path); err == nil {
			logf("File %s already exists, skipping", filepath.Base(bf.Path))
			bf.Skipped = true
			bf.Bytes = info.Size()
			results = append(results, bf)
			continue
		}

		url := d.BaseURL + "/" + d.Bands[name]
		n, err := d.fetch(ctx, url, bf.Path)
		if err != nil {
			logf("Error downloading %s: %v", url, err)
			bf.Error = err.Error()
			errs = append(errs, fmt.Errorf("band %s: %w", name, err))
		} else {
			logf("Downloaded %s (%d bytes)", filepath.Base(bf.Path), n)
			bf.Bytes = n
		}
		results = append(results, bf)
	}

	return results, errors.Join(errs...)
}

// fetch streams url into path through a temporary file in the same
// directory. A partial transfer never appears at path.
func (d *Downloader) fetch(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to move download into place: %w", err)
	}
	return n, nil
}
