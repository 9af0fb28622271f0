package provider

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/handiism/novel-downloader/internal/http"
	"github.com/handiism/novel-downloader/internal/model"
)

// Session binds a provider to a transport and a cookie for one run.
//
// Session is the only place where provider requests meet the network:
// page fetches go through Provider.BuildRequest so every request carries
// the site's headers and the user's cookie.
//
// Example:
//
//	s := provider.NewSession(p, http.NewClient(60*time.Second), cookie)
//	body, err := s.Fetch(ctx, "https://www.linovelib.com/novel/1/2.html")
//	err = s.Download(ctx, ref, "/books/Novel/Vol 1/cover.jpg", nil)
type Session struct {
	provider  Provider
	client    *http.Client
	cookie    string
	userAgent string
}

// NewSession creates a Session.
func NewSession(p Provider, client *http.Client, cookie string) *Session {
	return &Session{provider: p, client: client, cookie: cookie}
}

// WithUserAgent returns a copy of the session that replaces the provider's
// User-Agent header with ua. An empty ua keeps the provider's.
func (s *Session) WithUserAgent(ua string) *Session {
	clone := *s
	clone.userAgent = ua
	return &clone
}

// Provider returns the session's provider.
func (s *Session) Provider() Provider {
	return s.provider
}

// Fetch requests address and returns the body.
func (s *Session) Fetch(ctx context.Context, address string) (string, error) {
	req, err := s.request(address)
	if err != nil {
		return "", err
	}
	return s.client.Fetch(ctx, req)
}

// Download streams the image ref to destPath. The ref's referer, when set,
// replaces the provider's default Referer header.
func (s *Session) Download(ctx context.Context, ref model.ImageRef, destPath string, onProgress func(written, total int64)) error {
	req, err := s.imageRequest(ref)
	if err != nil {
		return err
	}
	return s.client.DownloadFile(ctx, req, destPath, onProgress)
}

func (s *Session) request(address string) (*nethttp.Request, error) {
	req, err := s.provider.BuildRequest(address, s.cookie)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", address, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	return req, nil
}

func (s *Session) imageRequest(ref model.ImageRef) (*nethttp.Request, error) {
	req, err := s.request(ref.Address)
	if err != nil {
		return nil, err
	}
	if ref.Referer != "" {
		req.Header.Set("Referer", ref.Referer)
	}
	return req, nil
}
