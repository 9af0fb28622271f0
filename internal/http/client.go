package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultUserAgent is sent when a request does not carry its own User-Agent.
const DefaultUserAgent = "NovelDownloader"

// DefaultTimeout applies when NewClient is given a non-positive timeout.
const DefaultTimeout = 60 * time.Second

// Client executes requests built by content providers, which know the
// headers a site expects. It fills in a User-Agent when the request has
// none and only accepts 200 OK answers.
//
//	client := NewClient(60 * time.Second)
//	html, err := client.Fetch(ctx, req)
//	err = client.DownloadFile(ctx, imageReq, "/books/Novel/Vol 1/cover.jpg", nil)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client with the given timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  DefaultUserAgent,
	}
}

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// Do executes req bound to ctx. The caller must close the response body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return resp, nil
}

// Fetch executes req and returns the response body as a string.
func (c *Client) Fetch(ctx context.Context, req *http.Request) (string, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", req.URL, err)
	}
	return string(body), nil
}

// DownloadFile executes req and streams the body to destPath.
//
// The body is written to "<destPath>.part" and renamed into place once
// complete, so destPath only ever holds a whole file. onProgress, when not
// nil, receives the bytes written so far and the Content-Length (-1 when
// unknown) after every write.
func (c *Client) DownloadFile(ctx context.Context, req *http.Request, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	part := destPath + ".part"
	file, err := os.Create(part)
	if err != nil {
		return err
	}

	var w io.Writer = file
	if onProgress != nil {
		w = &countingWriter{w: file, total: resp.ContentLength, onWrite: onProgress}
	}

	_, err = io.Copy(w, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(part, destPath)
	}
	if err != nil {
		os.Remove(part)
		return err
	}
	return nil
}

// countingWriter reports the running byte count of a download.
type countingWriter struct {
	w       io.Writer
	total   int64
	written int64
	onWrite func(written, total int64)
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.written += int64(n)
	cw.onWrite(cw.written, cw.total)
	return n, err
}
