package upload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropped95si/alpha-terminal/internal/auth"
	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/httputil"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error"})
}

func writePayload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUploadPathSendsSecretAndDecodesResult(t *testing.T) {
	var gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(auth.IngestHeader)
		require.Equal(t, "/api/ingest", r.URL.Path)
		json.NewEncoder(w).Encode(Result{Inserted: 2, ScanRunID: "run-1"})
	}))
	defer srv.Close()

	u := &Uploader{
		client:  httputil.New(testLogger()),
		baseURL: srv.URL,
		secret:  "topsecret",
		logger:  testLogger(),
	}

	path := writePayload(t, `{"signals": [{"ticker": "AAA"}, {"ticker": "BBB"}]}`)
	res, err := u.UploadPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, "run-1", res.ScanRunID)
	assert.Equal(t, "topsecret", gotSecret)
}

func TestUploadPathRejectsMalformedPayloadLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("malformed payload must not be posted")
	}))
	defer srv.Close()

	u := &Uploader{
		client:  httputil.New(testLogger()),
		baseURL: srv.URL,
		logger:  testLogger(),
	}

	path := writePayload(t, `{"signals": []}`)
	_, err := u.UploadPath(context.Background(), path)
	require.Error(t, err)
}

func TestUploadPathSurfacesServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or missing ingest secret"})
	}))
	defer srv.Close()

	u := &Uploader{
		client:  httputil.New(testLogger()),
		baseURL: srv.URL,
		logger:  testLogger(),
	}

	path := writePayload(t, `{"signals": [{"ticker": "AAA"}]}`)
	_, err := u.UploadPath(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewSpacesOutRepeatedUploads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{Inserted: 1, ScanRunID: "run-1"})
	}))
	defer srv.Close()

	path := writePayload(t, `{"signals": [{"ticker": "AAA"}]}`)
	u := New(&config.Config{
		Ingest: config.IngestConfig{APIBaseURL: srv.URL, PayloadPath: path},
	}, testLogger())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := u.UploadFile(context.Background())
		require.NoError(t, err)
	}

	if elapsed := time.Since(start); elapsed < 2*uploadInterval {
		t.Errorf("expected uploads to be rate limited, finished in %v", elapsed)
	}
}

func TestUploadFileMissingPayload(t *testing.T) {
	u := New(&config.Config{
		Ingest: config.IngestConfig{PayloadPath: filepath.Join(t.TempDir(), "absent.json")},
	}, testLogger())

	_, err := u.UploadFile(context.Background())
	require.Error(t, err)
}
