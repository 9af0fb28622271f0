package model

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	ioutils "github.com/handiism/novel-downloader/internal/io"
)

// UnitType declares how a provider splits a novel into downloadable units.
type UnitType int

const (
	// UnitStandalone is a single block of content with no chapter chain.
	UnitStandalone UnitType = iota

	// UnitChained is an ordered list of chapters that must be resolved
	// one after another because each page reveals the address of the next.
	UnitChained
)

// String returns the lowercase name of the unit type.
func (u UnitType) String() string {
	switch u {
	case UnitStandalone:
		return "standalone"
	case UnitChained:
		return "chained"
	default:
		return "unknown"
	}
}

// Work represents one downloadable unit of a novel, typically a volume.
//
// Works are created by a provider's enumeration and then owned by the
// download manager for the rest of the run. Chapters is an index-addressed
// arena: chapter N's successor address is the repair source for chapter N+1,
// so chapters are always handled by position rather than by pointer walks.
//
// Example:
//
//	work := NewWork(0, "https://example.com/1/10.html", "Some Novel", "Volume 1")
//	work.AddChapter("https://example.com/1/10.html", "Prologue")
//	work.AddChapter("", "Chapter 1") // address unknown until the prologue is fetched
type Work struct {
	// Seq is the ordinal position of the work within the enumeration.
	Seq int

	// Address is the landing address of the work, usually its first chapter.
	Address string

	// Name is the canonical collection name (the novel title).
	Name string

	// Title is the display title of this unit (the volume title).
	Title string

	// Author is optional.
	Author string

	// Description is optional.
	Description string

	// Cover is the optional cover image of the work.
	Cover *ImageRef

	// Kind distinguishes standalone works from chained ones.
	Kind UnitType

	// Chapters holds the ordered chapter chain for chained works.
	Chapters []*Chapter

	// Content holds the body of a standalone work.
	Content string
}

// NewWork creates a chained Work with no chapters.
func NewWork(seq int, address, name, title string) *Work {
	return &Work{
		Seq:     seq,
		Address: address,
		Name:    name,
		Title:   title,
		Kind:    UnitChained,
	}
}

// AddChapter appends a chapter with the next sequence index and returns it.
func (w *Work) AddChapter(address, name string) *Chapter {
	c := NewChapter(len(w.Chapters), address, name)
	w.Chapters = append(w.Chapters, c)
	return c
}

// HasCover reports whether the work carries a cover image.
func (w *Work) HasCover() bool {
	return w.Cover != nil && w.Cover.Address != ""
}

// LastChapter returns the final chapter of the work, or nil if it has none.
func (w *Work) LastChapter() *Chapter {
	if len(w.Chapters) == 0 {
		return nil
	}
	return w.Chapters[len(w.Chapters)-1]
}

// Images returns every image referenced by the work's chapters followed by
// the cover. A source shared by several file names is listed once per name,
// so each name the document or script refers to can be written.
func (w *Work) Images() []ImageRef {
	var refs []ImageRef
	for _, c := range w.Chapters {
		refs = append(refs, c.Images...)
	}
	if w.HasCover() {
		refs = append(refs, *w.Cover)
	}
	return DistinctImages(refs)
}

// Validate checks that chapter sequence indices are contiguous and start at zero.
func (w *Work) Validate() error {
	for i, c := range w.Chapters {
		if c == nil {
			return fmt.Errorf("work %q: chapter %d is nil", w.Title, i)
		}
		if c.Seq != i {
			return fmt.Errorf("work %q: chapter at position %d has sequence %d", w.Title, i, c.Seq)
		}
	}
	return nil
}

// String returns a short human readable label like "Name - Title (12 chapters)".
func (w *Work) String() string {
	if w.Kind == UnitStandalone {
		return fmt.Sprintf("%s - %s", w.Name, w.Title)
	}
	return fmt.Sprintf("%s - %s (%d chapters)", w.Name, w.Title, len(w.Chapters))
}

// PathConfig holds path formatting settings for assembled works.
//
// FolderFormat supports the placeholders {name}, {title} and {seq}; each
// placeholder value is sanitized before substitution so a title can never
// introduce extra path segments.
//
// Example configuration:
//
//	cfg := &PathConfig{
//	    FolderFormat:     "{name}/{title}",
//	    DocumentFileName: "article.md",
//	    MetaFileName:     "meta.json",
//	}
type PathConfig struct {
	// FolderFormat is the folder template relative to the output root.
	FolderFormat string

	// DocumentFileName is the file name of the assembled markdown document.
	DocumentFileName string

	// MetaFileName is the file name of the metadata record. Its existence
	// marks the work as complete.
	MetaFileName string
}

// DefaultPathConfig returns the default layout:
// <root>/<name>/<title>/{article.md,meta.json}.
func DefaultPathConfig() *PathConfig {
	return &PathConfig{
		FolderFormat:     "{name}/{title}",
		DocumentFileName: "article.md",
		MetaFileName:     "meta.json",
	}
}

// maxFolderPath is the longest folder path produced, below the Windows
// folder length limit of 248.
const maxFolderPath = 247

// FolderPath computes the output directory of the work under root.
//
// A path longer than maxFolderPath has its last segment cut on a rune
// boundary and suffixed with "~<seq>", so works of one collection whose
// titles only differ past the cut still get distinct folders.
func (w *Work) FolderPath(root string, cfg *PathConfig) string {
	format := cfg.FolderFormat
	if format == "" {
		format = "{name}/{title}"
	}

	segments := strings.Split(filepath.ToSlash(format), "/")
	for i, seg := range segments {
		seg = strings.ReplaceAll(seg, "{name}", ioutils.SanitizeFileName(w.Name))
		seg = strings.ReplaceAll(seg, "{title}", ioutils.SanitizeFileName(w.Title))
		seg = strings.ReplaceAll(seg, "{seq}", strconv.Itoa(w.Seq))
		if seg == "" {
			seg = "_"
		}
		segments[i] = seg
	}

	path := filepath.Join(append([]string{root}, segments...)...)
	if len(path) <= maxFolderPath {
		return path
	}

	parent, last := filepath.Split(path)
	suffix := "~" + strconv.Itoa(w.Seq)
	budget := maxFolderPath - len(parent) - len(suffix)
	if budget <= 0 {
		// The parent alone is too long; let the file system reject it.
		return path
	}
	last = strings.TrimRight(ioutils.TruncateName(last, budget), " .")
	return parent + last + suffix
}

// DocumentPath returns the path of the assembled markdown document.
func (w *Work) DocumentPath(root string, cfg *PathConfig) string {
	name := cfg.DocumentFileName
	if name == "" {
		name = "article.md"
	}
	return filepath.Join(w.FolderPath(root, cfg), name)
}

// MetaPath returns the path of the metadata record (the completion marker).
func (w *Work) MetaPath(root string, cfg *PathConfig) string {
	name := cfg.MetaFileName
	if name == "" {
		name = "meta.json"
	}
	return filepath.Join(w.FolderPath(root, cfg), name)
}
