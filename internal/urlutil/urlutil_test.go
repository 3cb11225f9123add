package urlutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/execprobe/pkg/httpclient"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"no scheme", "localhost:8001/execute", "http://localhost:8001/execute"},
		{"https", "https://code.example.com/execute", "https://code.example.com/execute"},
		{"trailing slash", "http://example.com/", "http://example.com"},
		{"whitespace", "  http://example.com  ", "http://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBaseURL(tt.input))
		})
	}
}

func TestSiblingEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"execute at root", "https://code.pylearn.net/execute", "https://code.pylearn.net/health"},
		{"nested path", "http://localhost:8001/api/v1/execute", "http://localhost:8001/api/v1/health"},
		{"trailing slash", "http://localhost:8001/api/execute/", "http://localhost:8001/api/health"},
		{"no path", "http://localhost:8001", "http://localhost:8001/health"},
		{"root path", "http://localhost:8001/", "http://localhost:8001/health"},
		{"query dropped", "https://example.com/execute?debug=1#x", "https://example.com/health"},
		{"non execute segment", "https://example.com/run", "https://example.com/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SiblingEndpoint(tt.input, "health")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSiblingEndpoint_Invalid(t *testing.T) {
	_, err := SiblingEndpoint("/execute", "health")
	assert.Error(t, err)

	_, err = SiblingEndpoint("://bad", "health")
	assert.Error(t, err)
}

func TestFilePathFromURL(t *testing.T) {
	p, err := FilePathFromURL("file:///tmp/cases.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cases.yaml", p)

	_, err = FilePathFromURL("http://example.com/cases.yaml")
	assert.Error(t, err)

	_, err = FilePathFromURL("file://")
	assert.Error(t, err)
}

func TestResourceFetcher_Fetch(t *testing.T) {
	tmpDir := t.TempDir()
	casePath := filepath.Join(tmpDir, "cases.yaml")
	require.NoError(t, os.WriteFile(casePath, []byte("from disk"), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("from http"))
	}))
	defer server.Close()

	fetcher := NewResourceFetcher(httpclient.NewWithDefaults())
	ctx := context.Background()

	read := func(t *testing.T, location string) string {
		t.Helper()
		rc, err := fetcher.Fetch(ctx, location)
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}

	t.Run("plain path", func(t *testing.T) {
		assert.Equal(t, "from disk", read(t, casePath))
	})

	t.Run("file url", func(t *testing.T) {
		assert.Equal(t, "from disk", read(t, "file://"+casePath))
	})

	t.Run("http url", func(t *testing.T) {
		assert.Equal(t, "from http", read(t, server.URL+"/cases.yaml"))
	})

	t.Run("http not found", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, server.URL+"/missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, filepath.Join(tmpDir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, "ftp://example.com/cases.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported URL scheme")
	})
}
