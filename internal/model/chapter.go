package model

import (
	"net/url"
	"strings"
)

// ChapterStatus is the resolution state of a chapter.
type ChapterStatus int

const (
	// StatusReady means the chapter has not been resolved yet.
	StatusReady ChapterStatus = iota

	// StatusFailed means no fetchable address could ever be established.
	// It is terminal.
	StatusFailed

	// StatusSuccess means the page walk for the chapter terminated, either
	// because no more pages followed or because retries were exhausted.
	StatusSuccess
)

// String returns the lowercase name of the status.
func (s ChapterStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Chapter is one node of a work's chapter chain.
//
// A chapter may be enumerated with an address that is not fetchable yet
// (sites hide some links behind script placeholders). Such an address is
// repaired during resolution from the successor address recorded on the
// preceding chapter. Once the address is fetchable it is never overwritten.
//
// Example:
//
//	c := NewChapter(0, "https://example.com/1/10.html", "Prologue")
//	c.AppendPage(PageResult{Text: "first page\n"})
//	c.AppendPage(PageResult{Text: "second page\n"})
//	c.Text() // "first page\nsecond page\n"
type Chapter struct {
	// Seq is the sequence index of the chapter within its work (0-indexed).
	Seq int

	// Address is the current fetch address of the chapter.
	Address string

	// Name is the display name of the chapter.
	Name string

	// Images contains the image references found on the chapter's pages, in order.
	Images []ImageRef

	// Status is the resolution status.
	Status ChapterStatus

	// PrevAddress is the previous-page address discovered while parsing.
	PrevAddress string

	// NextAddress is the last next-page address seen during the page walk.
	// It is the repair source for the following chapter.
	NextAddress string

	// Truncated is set when the page walk stopped because retries ran out.
	Truncated bool

	text strings.Builder
}

// NewChapter creates a chapter in the Ready state.
func NewChapter(seq int, address, name string) *Chapter {
	return &Chapter{
		Seq:     seq,
		Address: address,
		Name:    name,
		Status:  StatusReady,
	}
}

// Fetchable reports whether the chapter's address can be requested.
func (c *Chapter) Fetchable() bool {
	return IsFetchable(c.Address)
}

// SetAddress replaces the chapter address unless the current one is already
// fetchable. It reports whether the address changed.
func (c *Chapter) SetAddress(address string) bool {
	if c.Fetchable() || address == "" {
		return false
	}
	c.Address = address
	return true
}

// MarkFailed marks the chapter as permanently failed.
func (c *Chapter) MarkFailed() {
	c.Status = StatusFailed
}

// MarkSuccess marks the chapter's page walk as finished. A failed chapter
// stays failed.
func (c *Chapter) MarkSuccess() {
	if c.Status == StatusFailed {
		return
	}
	c.Status = StatusSuccess
}

// AppendPage accumulates the text and images of one fetched page.
func (c *Chapter) AppendPage(page PageResult) {
	if page.Text != "" {
		c.text.WriteString(page.Text)
	}
	c.Images = append(c.Images, page.Images...)
}

// Text returns the accumulated chapter text.
func (c *Chapter) Text() string {
	return c.text.String()
}

// ClearContent drops the accumulated text once it has been flushed to disk.
func (c *Chapter) ClearContent() {
	c.text.Reset()
}

// IsFetchable reports whether address is an absolute http(s) URL with a host.
func IsFetchable(address string) bool {
	if !strings.HasPrefix(address, "http") {
		return false
	}
	u, err := url.Parse(address)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
