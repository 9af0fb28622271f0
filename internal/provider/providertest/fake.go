// Package providertest provides a scripted Provider for tests.
//
// Pages are served as JSON encoded model.PageResult values, so a test can
// describe a chapter chain without writing HTML:
//
//	srv := httptest.NewServer(...)           // serves providertest.Page(...)
//	p := &providertest.Fake{Base: srv.URL, Works: buildWorks}
package providertest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/handiism/novel-downloader/internal/model"
	"github.com/handiism/novel-downloader/internal/provider"
)

// Fake is a Provider driven entirely by its fields.
type Fake struct {
	// Base is the address prefix the provider supports.
	Base string

	// Kind is the unit type; the zero value is standalone, so most tests
	// set model.UnitChained.
	Kind model.UnitType

	// Works builds a fresh work list for every Enumerate call.
	Works func() []*model.Work

	// EnumerateErr, when set, is returned by Enumerate.
	EnumerateErr error

	// Pause is returned by Delay.
	Pause time.Duration

	mu      sync.Mutex
	parsed  []string
	repairs int
}

var _ provider.Provider = (*Fake)(nil)

func (f *Fake) Name() string                 { return "fake" }
func (f *Fake) UnitType() model.UnitType     { return f.Kind }
func (f *Fake) BaseAddress() string          { return f.Base }
func (f *Fake) Delay() time.Duration         { return f.Pause }
func (f *Fake) Supports(address string) bool { return strings.HasPrefix(address, f.Base) }

// Enumerate returns f.Works().
func (f *Fake) Enumerate(ctx context.Context, _ provider.Fetcher, _ string) ([]*model.Work, error) {
	if f.EnumerateErr != nil {
		return nil, f.EnumerateErr
	}
	if f.Works == nil {
		return nil, nil
	}
	return f.Works(), nil
}

// BuildRequest creates a plain GET request with the cookie attached.
func (f *Fake) BuildRequest(address, cookie string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, address, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", f.Base)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return req, nil
}

// ParsePage decodes a body produced by Page.
func (f *Fake) ParsePage(body string) (model.PageResult, error) {
	f.mu.Lock()
	f.parsed = append(f.parsed, body)
	f.mu.Unlock()

	var page model.PageResult
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		return model.PageResult{}, err
	}
	return page, nil
}

// RepairAddress applies the generic repair rule.
func (f *Fake) RepairAddress(works []*model.Work, workIndex, chapterIndex int) string {
	f.mu.Lock()
	f.repairs++
	f.mu.Unlock()
	return provider.PreviousSuccessor(works, workIndex, chapterIndex)
}

// RenderMetadata encodes the standard metadata record.
func (f *Fake) RenderMetadata(work *model.Work, downloaded time.Time) ([]byte, error) {
	return model.NewMetadata(work, downloaded).JSON()
}

// Parsed returns how many page bodies were parsed.
func (f *Fake) Parsed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.parsed)
}

// Repairs returns how many times RepairAddress was called.
func (f *Fake) Repairs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repairs
}

// Page encodes a page result the way Fake.ParsePage expects it.
func Page(p model.PageResult) string {
	data, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	return string(data)
}
