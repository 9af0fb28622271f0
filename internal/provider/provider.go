package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/handiism/novel-downloader/internal/model"
)

// ErrUnsupported is returned when no registered provider accepts an address.
var ErrUnsupported = errors.New("no provider supports this address")

// Fetcher fetches the raw body of a page by address.
type Fetcher interface {
	Fetch(ctx context.Context, address string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, address string) (string, error)

// Fetch calls f(ctx, address).
func (f FetcherFunc) Fetch(ctx context.Context, address string) (string, error) {
	return f(ctx, address)
}

// Provider is the capability set the download pipeline needs from a site.
//
// One implementation exists per supported site. The pipeline depends only on
// this interface, never on a concrete site type. Implementations must be
// safe for concurrent use: ParsePage and BuildRequest may be called from
// several goroutines.
type Provider interface {
	// Name is a short identifier used in logs.
	Name() string

	// UnitType declares whether works are standalone or chained.
	UnitType() model.UnitType

	// BaseAddress is the site root, e.g. "https://www.linovelib.com".
	BaseAddress() string

	// Delay is the politeness pause applied after every successful page fetch.
	Delay() time.Duration

	// Supports reports whether the provider handles address.
	Supports(address string) bool

	// Enumerate builds the ordered work list for address. It may issue
	// several requests through f.
	Enumerate(ctx context.Context, f Fetcher, address string) ([]*model.Work, error)

	// BuildRequest creates a GET request for address carrying the site's
	// headers and, when non-empty, the cookie header value.
	BuildRequest(address, cookie string) (*http.Request, error)

	// ParsePage extracts structured content from a page body.
	ParsePage(body string) (model.PageResult, error)

	// RepairAddress returns a replacement address for an unresolved chapter,
	// or "" when none is known.
	RepairAddress(works []*model.Work, workIndex, chapterIndex int) string

	// RenderMetadata serializes the work's metadata record.
	RenderMetadata(work *model.Work, downloaded time.Time) ([]byte, error)
}

// PreviousSuccessor implements the generic repair rule for chapter
// chapterIndex of works[workIndex]: the successor address recorded on the
// preceding chapter of the same work or, for the first chapter, on the last
// chapter of the preceding work. It returns "" when there is no such chapter
// or it has not recorded a successor.
func PreviousSuccessor(works []*model.Work, workIndex, chapterIndex int) string {
	if workIndex < 0 || workIndex >= len(works) {
		return ""
	}
	work := works[workIndex]
	if chapterIndex < 0 || chapterIndex >= len(work.Chapters) {
		return ""
	}

	var prev *model.Chapter
	switch {
	case chapterIndex > 0:
		prev = work.Chapters[chapterIndex-1]
	case workIndex > 0:
		prev = works[workIndex-1].LastChapter()
	}

	if prev == nil {
		return ""
	}
	return prev.NextAddress
}
