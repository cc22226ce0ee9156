package audit

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
)

// PageTransport serves site URLs from the local tree instead of the network
type PageTransport struct {
	site *Site
}

// NewPageTransport creates a transport reading files for site
func NewPageTransport(site *Site) *PageTransport {
	return &PageTransport{site: site}
}

// RoundTrip implements http.RoundTripper
func (t *PageTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		req.Body.Close()
	}

	rel, ok := t.site.Resolve(req.URL)
	if !ok {
		return newResponse(req, http.StatusNotFound, "text/plain", strings.NewReader("outside site"), -1), nil
	}

	file, err := os.Open(t.site.FilePath(rel))
	if errors.Is(err, os.ErrNotExist) {
		return newResponse(req, http.StatusNotFound, "text/plain", strings.NewReader("not found"), -1), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", rel, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	if info.IsDir() {
		file.Close()
		return newResponse(req, http.StatusNotFound, "text/plain", strings.NewReader("is a directory"), -1), nil
	}

	contentType := mime.TypeByExtension(path.Ext(rel))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return newResponse(req, http.StatusOK, contentType, file, info.Size()), nil
}

func newResponse(req *http.Request, status int, contentType string, body io.Reader, size int64) *http.Response {
	rc, ok := body.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(body)
	}

	header := make(http.Header)
	header.Set("Content-Type", contentType)

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          rc,
		ContentLength: size,
		Request:       req,
	}
}
