package linovelib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/handiism/novel-downloader/internal/model"
	"github.com/handiism/novel-downloader/internal/provider"
)

const (
	// BaseAddress is the site root.
	BaseAddress = "https://www.linovelib.com"

	// UserAgent is sent with every request; the site rejects unknown agents.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"

	pageDelay = 700 * time.Millisecond
)

// ErrAddressMismatch is returned by Enumerate for addresses that are not a
// novel page or catalog page.
var ErrAddressMismatch = errors.New("address is not a linovelib novel or catalog page")

var addressRegex = regexp.MustCompile(`^https://www\.linovelib\.com/novel/\d+(\.html|/catalog)$`)

// Provider is the linovelib provider. It holds no per-request state and is
// safe for concurrent use.
type Provider struct {
	base *url.URL
	conv *md.Converter
}

var _ provider.Provider = (*Provider)(nil)

// New creates a Provider.
func New() *Provider {
	base, _ := url.Parse(BaseAddress)
	return &Provider{
		base: base,
		conv: md.NewConverter("", true, nil),
	}
}

func (p *Provider) Name() string             { return "linovelib" }
func (p *Provider) UnitType() model.UnitType { return model.UnitChained }
func (p *Provider) BaseAddress() string      { return BaseAddress }
func (p *Provider) Delay() time.Duration     { return pageDelay }

// Supports reports whether address is on the linovelib site.
func (p *Provider) Supports(address string) bool {
	return strings.HasPrefix(address, BaseAddress)
}

// Enumerate fetches the catalog page of the novel at address and returns
// one work per volume.
func (p *Provider) Enumerate(ctx context.Context, f provider.Fetcher, address string) ([]*model.Work, error) {
	catalog, err := CatalogAddress(address)
	if err != nil {
		return nil, err
	}

	body, err := f.Fetch(ctx, catalog)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	works, err := p.parseCatalog(body)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", catalog, err)
	}
	return works, nil
}

// BuildRequest creates a GET request with the browser user agent, the site
// referer and, when non-empty, the cookie.
func (p *Provider) BuildRequest(address, cookie string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, address, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Referer", BaseAddress)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return req, nil
}

// ParsePage extracts the text, images and navigation links of a chapter page.
func (p *Provider) ParsePage(body string) (model.PageResult, error) {
	return p.parsePage(body)
}

// RepairAddress uses the previous chapter's successor address.
func (p *Provider) RepairAddress(works []*model.Work, workIndex, chapterIndex int) string {
	return provider.PreviousSuccessor(works, workIndex, chapterIndex)
}

// RenderMetadata serializes the work's metadata record as indented JSON.
func (p *Provider) RenderMetadata(work *model.Work, downloaded time.Time) ([]byte, error) {
	return model.NewMetadata(work, downloaded).JSON()
}

// CatalogAddress validates a novel address and returns its catalog page.
//
//	CatalogAddress("https://www.linovelib.com/novel/2356.html")
//	// "https://www.linovelib.com/novel/2356/catalog"
func CatalogAddress(address string) (string, error) {
	if !addressRegex.MatchString(address) {
		return "", fmt.Errorf("%w: %s", ErrAddressMismatch, address)
	}
	if strings.HasSuffix(address, "/catalog") {
		return address, nil
	}
	return strings.TrimSuffix(address, ".html") + "/catalog", nil
}

// absolute resolves href against the site root. Script placeholders and
// empty hrefs yield "".
func (p *Provider) absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.base.ResolveReference(ref).String()
}
