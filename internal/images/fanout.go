package images

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	ioutils "github.com/handiism/novel-downloader/internal/io"
	"github.com/handiism/novel-downloader/internal/model"
	"github.com/handiism/novel-downloader/internal/progress"
)

// DefaultLimit is the default number of concurrent image downloads.
const DefaultLimit = 3

// Downloader streams one image to a local path.
type Downloader interface {
	Download(ctx context.Context, ref model.ImageRef, destPath string, onProgress func(written, total int64)) error
}

// Options configures a FanOut.
type Options struct {
	// Limit caps concurrent downloads; values <= 0 use DefaultLimit.
	Limit int

	// OnAdmit is called when a download takes a slot.
	OnAdmit func(ref model.ImageRef)

	// OnRelease is called when a download gives its slot back.
	OnRelease func(ref model.ImageRef, err error)

	// OnBytes receives the number of bytes written since the last call.
	OnBytes func(n int64)

	OnProgress progress.Func
}

// Result is the outcome of one image download.
type Result struct {
	Ref  model.ImageRef
	Path string

	// Aliases are further paths the same source was requested under. They
	// receive a copy of Path once the download succeeds.
	Aliases []string

	Err error
}

// FanOut runs image downloads.
type FanOut struct {
	downloader Downloader
	opts       Options
}

// New creates a FanOut that downloads through d.
func New(d Downloader, opts Options) *FanOut {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &FanOut{downloader: d, opts: opts}
}

// Limit returns the concurrency cap.
func (f *FanOut) Limit() int {
	return f.opts.Limit
}

// FetchAll downloads refs into dir. One result is returned per distinct
// source address, in first-seen order.
//
// Every destination file is written by exactly one download: a source whose
// file name is already taken by another source is saved under a numbered
// name ("a-2.jpg"), and further names of an already planned source become
// aliases.
func (f *FanOut) FetchAll(ctx context.Context, refs []model.ImageRef, dir string) []Result {
	results := f.plan(refs, dir)

	var g errgroup.Group
	g.SetLimit(f.opts.Limit)

	for i := range results {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			results[i].Err = f.fetch(ctx, results[i])
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// plan assigns every distinct source a destination path of its own.
func (f *FanOut) plan(refs []model.ImageRef, dir string) []Result {
	var results []Result
	bySource := make(map[string]int, len(refs))
	taken := make(map[string]bool, len(refs))

	for _, ref := range refs {
		name := ioutils.SanitizeFileName(ref.FileName)

		if i, ok := bySource[ref.Address]; ok {
			if taken[strings.ToLower(name)] {
				continue
			}
			taken[strings.ToLower(name)] = true
			results[i].Aliases = append(results[i].Aliases, filepath.Join(dir, name))
			continue
		}

		if taken[strings.ToLower(name)] {
			unique := uniqueName(name, taken)
			f.opts.OnProgress.Emit(progress.LevelWarning, "Image file name already used by another source", progress.Fields{
				"file":    name,
				"renamed": unique,
				"address": ref.Address,
			})
			name = unique
		}
		taken[strings.ToLower(name)] = true

		bySource[ref.Address] = len(results)
		results = append(results, Result{Ref: ref, Path: filepath.Join(dir, name)})
	}
	return results
}

// uniqueName numbers name until it is not taken. Names compare case
// insensitively.
func uniqueName(name string, taken map[string]bool) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
		if !taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

func (f *FanOut) fetch(ctx context.Context, r Result) (err error) {
	if f.opts.OnAdmit != nil {
		f.opts.OnAdmit(r.Ref)
	}
	defer func() {
		if f.opts.OnRelease != nil {
			f.opts.OnRelease(r.Ref, err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	f.opts.OnProgress.Emit(progress.LevelVerbose, "Downloading image", progress.Fields{
		"file":    r.Ref.FileName,
		"address": r.Ref.Address,
	})

	var last int64
	err = f.downloader.Download(ctx, r.Ref, r.Path, func(written, _ int64) {
		if f.opts.OnBytes != nil {
			f.opts.OnBytes(written - last)
		}
		last = written
	})
	if err == nil {
		for _, alias := range r.Aliases {
			if err = ioutils.CopyFile(ctx, r.Path, alias); err != nil {
				break
			}
		}
	}
	if err != nil {
		f.opts.OnProgress.Emit(progress.LevelWarning, "Image download failed", progress.Fields{
			"file":    r.Ref.FileName,
			"address": r.Ref.Address,
			"error":   err.Error(),
		})
	}
	return err
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Refs returns the image references of results, for re-invoking FetchAll
// with a failed subset.
func Refs(results []Result) []model.ImageRef {
	refs := make([]model.ImageRef, 0, len(results))
	for _, r := range results {
		ref := r.Ref
		ref.FileName = filepath.Base(r.Path)
		refs = append(refs, ref)
		for _, alias := range r.Aliases {
			ref.FileName = filepath.Base(alias)
			refs = append(refs, ref)
		}
	}
	return refs
}

// Err joins the errors of all failed results.
func Err(results []Result) error {
	var errs []error
	for _, r := range Failed(results) {
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}
