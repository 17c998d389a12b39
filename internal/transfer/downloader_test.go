package transfer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"swift-transfer/internal/api"
)

func downloadBackend(t *testing.T) (*api.Client, *httptest.Server) {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transfers/t-1/files/0/download", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": srv.URL + "/signed/report.pdf"})
	})
	mux.HandleFunc("/signed/report.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pdf-bytes"))
	})
	mux.HandleFunc("/api/transfers/t-1/download.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("zip-bytes"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL, func() string { return "tok" })
	require.NoError(t, err)
	return c, srv
}

func liveTransfer() *api.Transfer {
	return &api.Transfer{
		ID:        "t-1",
		Status:    api.StatusReady,
		ExpiresAt: api.FlexTimeOf(time.Now().Add(time.Hour)),
		Files:     []api.FileMeta{{Name: "report.pdf", ContentType: "application/pdf", Size: 9}},
	}
}

func TestDownloadFile(t *testing.T) {
	req := require.New(t)
	c, _ := downloadBackend(t)
	dir := t.TempDir()
	d := &Downloader{API: c, Dir: dir}

	path, err := d.File(context.Background(), liveTransfer(), 0)
	req.NoError(err)
	req.Equal(filepath.Join(dir, "report.pdf"), path)
	b, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal("pdf-bytes", string(b))
}

func TestDownloadFileCollisionSuffix(t *testing.T) {
	req := require.New(t)
	c, _ := downloadBackend(t)
	dir := t.TempDir()
	d := &Downloader{API: c, Dir: dir}

	_, err := d.File(context.Background(), liveTransfer(), 0)
	req.NoError(err)
	path, err := d.File(context.Background(), liveTransfer(), 0)
	req.NoError(err)
	req.Equal(filepath.Join(dir, "report (1).pdf"), path)
}

func TestDownloadZipName(t *testing.T) {
	req := require.New(t)
	c, _ := downloadBackend(t)
	dir := t.TempDir()
	d := &Downloader{API: c, Dir: dir}

	path, err := d.Zip(context.Background(), liveTransfer())
	req.NoError(err)
	req.Equal(filepath.Join(dir, "transfer-t-1.zip"), path)
	b, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal("zip-bytes", string(b))
}

func TestDownloadsRefusedWhenExpired(t *testing.T) {
	req := require.New(t)
	c, _ := downloadBackend(t)
	d := &Downloader{API: c, Dir: t.TempDir()}

	expired := liveTransfer()
	expired.ExpiresAt = api.FlexTimeOf(time.Now().Add(-time.Minute))

	_, err := d.File(context.Background(), expired, 0)
	req.ErrorIs(err, ErrExpiredTransfer)
	_, err = d.Zip(context.Background(), expired)
	req.ErrorIs(err, ErrExpiredTransfer)
}

func TestDownloadRemovesPartialFileOnCopyFailure(t *testing.T) {
	req := require.New(t)
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transfers/t-1/files/0/download", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": srv.URL + "/signed/report.pdf"})
	})
	mux.HandleFunc("/signed/report.pdf", func(w http.ResponseWriter, r *http.Request) {
		// announce more bytes than are sent so the client read fails mid-copy
		w.Header().Set("Content-Length", "4096")
		_, _ = w.Write([]byte("trunc"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL, func() string { return "tok" })
	req.NoError(err)

	dir := t.TempDir()
	d := &Downloader{API: c, Dir: dir}
	_, err = d.File(context.Background(), liveTransfer(), 0)
	req.Error(err)

	_, statErr := os.Stat(filepath.Join(dir, "report.pdf"))
	req.True(os.IsNotExist(statErr))
}

func TestDownloadFileBadIndex(t *testing.T) {
	c, _ := downloadBackend(t)
	d := &Downloader{API: c, Dir: t.TempDir()}
	_, err := d.File(context.Background(), liveTransfer(), 5)
	require.Error(t, err)
}
