// Package urlutil provides URL manipulation and resource fetching utilities.
package urlutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/jmylchreest/execprobe/pkg/httpclient"
)

// URL scheme constants.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeFile  = "file"
)

// NormalizeBaseURL normalizes a user supplied URL:
//   - Adds http:// scheme if no scheme provided
//   - Removes trailing slash
//
// Examples:
//
//	"localhost:8001/execute"  -> "http://localhost:8001/execute"
//	"https://api.example.com/" -> "https://api.example.com"
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return strings.TrimSuffix(baseURL, "/")
}

// SiblingEndpoint returns rawURL with the final segment of its path replaced
// by segment. Query and fragment are dropped.
//
// Examples:
//
//	("https://code.example.com/execute", "health")    -> "https://code.example.com/health"
//	("http://localhost:8001/api/v1/run/", "health")   -> "http://localhost:8001/api/v1/health"
//	("http://localhost:8001", "health")               -> "http://localhost:8001/health"
func SiblingEndpoint(rawURL, segment string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL must be absolute: %s", rawURL)
	}

	p := strings.TrimSuffix(u.Path, "/")
	dir := "/"
	if p != "" {
		dir = path.Dir(p)
	}

	u.Path = path.Join(dir, segment)
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// GetScheme returns the lower-cased scheme of a URL, or empty string if none.
func GetScheme(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Scheme)
}

// FilePathFromURL extracts the file path from a file:// URL.
func FilePathFromURL(u string) (string, error) {
	if !strings.HasPrefix(u, "file://") {
		return "", fmt.Errorf("not a file:// URL: %s", u)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Path == "" {
		return "", fmt.Errorf("empty path in file URL: %s", u)
	}

	return parsed.Path, nil
}

// ResourceFetcher reads resources from http(s) URLs, file:// URLs and plain
// filesystem paths.
type ResourceFetcher struct {
	httpClient *httpclient.Client
}

// NewResourceFetcher creates a ResourceFetcher that uses client for remote
// resources.
func NewResourceFetcher(client *httpclient.Client) *ResourceFetcher {
	return &ResourceFetcher{httpClient: client}
}

// Fetch retrieves the content at location. The caller must close the
// returned reader.
func (f *ResourceFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	switch GetScheme(location) {
	case SchemeHTTP, SchemeHTTPS:
		return f.fetchHTTP(ctx, location)
	case SchemeFile:
		p, err := FilePathFromURL(location)
		if err != nil {
			return nil, err
		}
		return openFile(p)
	case "":
		return openFile(location)
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (supported: http, https, file)", GetScheme(location))
	}
}

func (f *ResourceFetcher) fetchHTTP(ctx context.Context, u string) (io.ReadCloser, error) {
	resp, err := f.httpClient.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func openFile(p string) (io.ReadCloser, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}
