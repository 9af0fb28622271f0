package resolve

import (
	"context"
	"errors"
	"time"

	"github.com/handiism/novel-downloader/internal/model"
	"github.com/handiism/novel-downloader/internal/progress"
	"github.com/handiism/novel-downloader/internal/provider"
)

// DefaultMaxRetries is the number of consecutive failed fetches of the same
// page after which a chapter walk stops.
const DefaultMaxRetries = 5

// Options configures a Resolver.
type Options struct {
	// MaxRetries is the retry ceiling per page; values <= 0 use DefaultMaxRetries.
	MaxRetries int

	// Bridge enables walking the last chapter of an unwalked preceding work
	// to discover the address of a work's first chapter.
	Bridge bool

	// OnProgress receives progress events.
	OnProgress progress.Func

	// OnChapter is called after every chapter reaches a final status.
	OnChapter func(workIndex int, c *model.Chapter)

	// Sleep pauses between successful fetches. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Resolver resolves the chapters of chained works.
type Resolver struct {
	provider provider.Provider
	fetcher  provider.Fetcher
	opts     Options
}

// New creates a Resolver that fetches pages through f and parses them with p.
func New(p provider.Provider, f provider.Fetcher, opts Options) *Resolver {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	return &Resolver{provider: p, fetcher: f, opts: opts}
}

// Resolve resolves every chapter of works[workIndex] in sequence order.
// Earlier works are read as repair sources and may be walked by the bridge.
// The only error returned is the context's.
func (r *Resolver) Resolve(ctx context.Context, works []*model.Work, workIndex int) error {
	work := works[workIndex]

	for ci, chapter := range work.Chapters {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !chapter.Fetchable() {
			if err := r.repair(ctx, works, workIndex, ci); err != nil {
				return err
			}
		}

		if !chapter.Fetchable() {
			chapter.MarkFailed()
			r.opts.OnProgress.Emit(progress.LevelError, "Chapter address could not be resolved", chapterFields(work, chapter))
			r.chapterDone(workIndex, chapter)
			continue
		}

		if chapter.Status != model.StatusReady {
			continue
		}

		r.opts.OnProgress.Emit(progress.LevelInfo, "Downloading chapter", chapterFields(work, chapter))
		if err := r.walk(ctx, chapter, false); err != nil {
			return err
		}

		if chapter.Truncated {
			fields := chapterFields(work, chapter)
			fields["retries"] = r.opts.MaxRetries
			r.opts.OnProgress.Emit(progress.LevelWarning, "Chapter truncated after repeated fetch failures", fields)
		}
		r.chapterDone(workIndex, chapter)
	}

	return nil
}

// repair sets the chapter address from the provider's repair rule, bridging
// through the preceding work when it was never walked.
func (r *Resolver) repair(ctx context.Context, works []*model.Work, wi, ci int) error {
	chapter := works[wi].Chapters[ci]

	if addr := r.provider.RepairAddress(works, wi, ci); chapter.SetAddress(addr) {
		r.emitRepaired(works[wi], chapter)
		return nil
	}

	if !r.opts.Bridge || ci != 0 || wi == 0 {
		return nil
	}

	bridged, err := r.bridge(ctx, works, wi-1)
	if err != nil || !bridged {
		return err
	}

	if addr := r.provider.RepairAddress(works, wi, ci); chapter.SetAddress(addr) {
		r.emitRepaired(works[wi], chapter)
	}
	return nil
}

// bridge walks the last chapter of works[wi] without keeping its content so
// that its successor address becomes known. It reports whether a walk
// happened.
func (r *Resolver) bridge(ctx context.Context, works []*model.Work, wi int) (bool, error) {
	prev := works[wi]
	last := prev.LastChapter()
	if last == nil || last.Status != model.StatusReady || last.NextAddress != "" {
		return false, nil
	}

	if !last.Fetchable() {
		last.SetAddress(r.provider.RepairAddress(works, wi, len(prev.Chapters)-1))
	}
	if !last.Fetchable() {
		return false, nil
	}

	r.opts.OnProgress.Emit(progress.LevelVerbose, "Walking last chapter of previous volume to find the next address", chapterFields(prev, last))
	if err := r.walk(ctx, last, true); err != nil {
		return false, err
	}
	return true, nil
}

// walk follows the pages of one chapter. In analyze-only mode only the
// navigation addresses are recorded and the status is left unchanged.
func (r *Resolver) walk(ctx context.Context, chapter *model.Chapter, analyzeOnly bool) error {
	cursor := chapter.Address
	hasNext := true
	retries := 0

	for hasNext && retries < r.opts.MaxRetries {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.opts.OnProgress.Emit(progress.LevelVerbose, "Fetching page", progress.Fields{"address": cursor})

		page, err := r.fetchPage(ctx, cursor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			retries++
			r.opts.OnProgress.Emit(progress.LevelVerbose, "Page fetch failed", progress.Fields{
				"address": cursor,
				"attempt": retries,
				"error":   err.Error(),
			})
			continue
		}

		if page.PrevAddress != "" {
			chapter.PrevAddress = page.PrevAddress
		}
		if !analyzeOnly {
			chapter.AppendPage(page)
		}

		retries = 0
		hasNext = page.HasNext
		cursor = page.NextAddress

		if err := r.opts.Sleep(ctx, r.provider.Delay()); err != nil {
			return err
		}
	}

	chapter.NextAddress = cursor
	if analyzeOnly {
		return nil
	}

	chapter.Truncated = retries >= r.opts.MaxRetries
	chapter.MarkSuccess()
	return nil
}

func (r *Resolver) fetchPage(ctx context.Context, address string) (model.PageResult, error) {
	body, err := r.fetcher.Fetch(ctx, address)
	if err != nil {
		return model.PageResult{}, err
	}
	return r.provider.ParsePage(body)
}

func (r *Resolver) emitRepaired(work *model.Work, chapter *model.Chapter) {
	r.opts.OnProgress.Emit(progress.LevelVerbose, "Chapter address repaired", chapterFields(work, chapter))
}

func (r *Resolver) chapterDone(workIndex int, chapter *model.Chapter) {
	if r.opts.OnChapter != nil {
		r.opts.OnChapter(workIndex, chapter)
	}
}

func chapterFields(work *model.Work, chapter *model.Chapter) progress.Fields {
	return progress.Fields{
		"work":    work.Title,
		"chapter": chapter.Name,
		"seq":     chapter.Seq,
		"address": chapter.Address,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsCancellation reports whether err came from context cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
