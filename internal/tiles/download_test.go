package tiles

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, p)
}

func newTestDownloader(url string) *Downloader {
	return &Downloader{
		Client:  http.DefaultClient,
		BaseURL: url + "/tiles/36/U/UD/2023/8/28/0",
		Prefix:  DefaultPrefix,
		Bands: map[string]string{
			"B04": "R10m/B04.jp2",
			"B08": "R10m/B08.jp2",
			"B11": "R20m/B11.jp2",
		},
		Logf: func(string, ...interface{}) {},
	}
}

func TestDownload(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		w.Write([]byte("jp2:" + filepath.Base(r.URL.Path)))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "bands")
	d := newTestDownloader(srv.URL)

	files, err := d.Download(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, []string{
		"/tiles/36/U/UD/2023/8/28/0/R10m/B04.jp2",
		"/tiles/36/U/UD/2023/8/28/0/R10m/B08.jp2",
		"/tiles/36/U/UD/2023/8/28/0/R20m/B11.jp2",
	}, rec.paths)

	for _, f := range files {
		assert.False(t, f.Skipped)
		assert.Equal(t, filepath.Join(dir, "T36UUD_20230828_"+f.Band+".jp2"), f.Path)
		data, err := os.ReadFile(f.Path)
		require.NoError(t, err)
		assert.Equal(t, "jp2:"+f.Band+".jp2", string(data))
		assert.Equal(t, int64(len(data)), f.Bytes)
	}

	// No temporary files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestDownload_SkipsExisting(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := newTestDownloader(srv.URL)
	existing := filepath.Join(dir, d.FileName("B08"))
	require.NoError(t, os.WriteFile(existing, []byte("cached band"), 0644))

	files, err := d.Download(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, rec.paths, 2)
	for _, p := range rec.paths {
		assert.NotContains(t, p, "B08")
	}

	for _, f := range files {
		if f.Band == "B08" {
			assert.True(t, f.Skipped)
			assert.Equal(t, int64(len("cached band")), f.Bytes)
		}
	}
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "cached band", string(data))
}

func TestDownload_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "B08.jp2") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := newTestDownloader(srv.URL)

	files, err := d.Download(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "band B08")
	assert.Contains(t, err.Error(), "404")
	require.Len(t, files, 3)

	for _, f := range files {
		_, statErr := os.Stat(f.Path)
		if f.Band == "B08" {
			assert.NotEmpty(t, f.Error)
			assert.True(t, os.IsNotExist(statErr), "failed band left a file behind")
		} else {
			assert.Empty(t, f.Error)
			assert.NoError(t, statErr)
		}
	}

	// A second run fetches only the band that failed.
	rec := &recorder{}
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		w.Write([]byte("ok"))
	}))
	defer srv2.Close()
	d.BaseURL = srv2.URL
	_, err = d.Download(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"/R10m/B08.jp2"}, rec.paths)
}

func TestDownload_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files, err := newTestDownloader(srv.URL).Download(ctx, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, files)
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestDownload_TransportError(t *testing.T) {
	d := newTestDownloader("http://example.invalid")
	d.Client = failingDoer{}

	files, err := d.Download(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, files, 3)
}

func TestNewDownloader(t *testing.T) {
	d := NewDownloader()
	assert.Equal(t, DefaultBaseURL, d.BaseURL)
	assert.Len(t, d.Bands, 6)
	assert.Equal(t, "R20m/B05.jp2", d.Bands["B05"])
	assert.Equal(t, "T36UUD_20230828_B12.jp2", d.FileName("B12"))
}
