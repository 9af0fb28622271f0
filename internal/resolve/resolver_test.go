package resolve

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/novel-downloader/internal/model"
	"github.com/handiism/novel-downloader/internal/progress"
	"github.com/handiism/novel-downloader/internal/provider/providertest"
)

var errNetwork = errors.New("connection reset")

// scriptedFetcher serves queued responses per address. An address without
// queued responses fails.
type scriptedFetcher struct {
	mu        sync.Mutex
	responses map[string][]response
	requested []string
}

type response struct {
	body string
	err  error
}

func newFetcher() *scriptedFetcher {
	return &scriptedFetcher{responses: make(map[string][]response)}
}

func (f *scriptedFetcher) page(address string, p model.PageResult) *scriptedFetcher {
	f.responses[address] = append(f.responses[address], response{body: providertest.Page(p)})
	return f
}

func (f *scriptedFetcher) fail(address string, times int) *scriptedFetcher {
	for i := 0; i < times; i++ {
		f.responses[address] = append(f.responses[address], response{err: errNetwork})
	}
	return f
}

func (f *scriptedFetcher) Fetch(_ context.Context, address string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, address)

	queue := f.responses[address]
	if len(queue) == 0 {
		return "", errNetwork
	}
	next := queue[0]
	if len(queue) > 1 {
		f.responses[address] = queue[1:]
	}
	return next.body, next.err
}

func (f *scriptedFetcher) count(address string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.requested {
		if a == address {
			n++
		}
	}
	return n
}

func noSleep(context.Context, time.Duration) error { return nil }

func newResolver(f *scriptedFetcher, opts Options) *Resolver {
	if opts.Sleep == nil {
		opts.Sleep = noSleep
	}
	return New(&providertest.Fake{Base: "http://x", Kind: model.UnitChained}, f, opts)
}

func TestResolver_ChainScenario(t *testing.T) {
	work := model.NewWork(0, "http://x/0", "Novel", "Vol 1")
	a := work.AddChapter("bad", "A")
	b := work.AddChapter("http://x/2", "B")
	c := work.AddChapter("", "C")

	f := newFetcher().
		page("http://x/2", model.PageResult{NextAddress: "http://x/3", Text: "b text\n"}).
		page("http://x/3", model.PageResult{NextAddress: "http://x/4", Text: "c text\n"})

	err := newResolver(f, Options{}).Resolve(context.Background(), []*model.Work{work}, 0)
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, a.Status)
	assert.Equal(t, "bad", a.Address)
	assert.Empty(t, a.Text())

	assert.Equal(t, model.StatusSuccess, b.Status)
	assert.Equal(t, "b text\n", b.Text())
	assert.Equal(t, "http://x/3", b.NextAddress)

	assert.Equal(t, "http://x/3", c.Address)
	assert.Equal(t, model.StatusSuccess, c.Status)
	assert.Equal(t, "c text\n", c.Text())
	assert.Equal(t, "http://x/4", c.NextAddress)
}

func TestResolver_MultiPageChapter(t *testing.T) {
	work := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	ch := work.AddChapter("http://x/1", "One")

	img := model.ImageRef{FileName: "a.png", Address: "http://img/a.png"}
	f := newFetcher().
		page("http://x/1", model.PageResult{HasNext: true, NextAddress: "http://x/1_2", PrevAddress: "http://x/0", Text: "p1\n"}).
		page("http://x/1_2", model.PageResult{HasNext: false, NextAddress: "http://x/2", Text: "p2\n", Images: []model.ImageRef{img}})

	require.NoError(t, newResolver(f, Options{}).Resolve(context.Background(), []*model.Work{work}, 0))

	assert.Equal(t, "p1\np2\n", ch.Text())
	assert.Equal(t, []model.ImageRef{img}, ch.Images)
	assert.Equal(t, "http://x/0", ch.PrevAddress)
	assert.Equal(t, "http://x/2", ch.NextAddress)
	assert.False(t, ch.Truncated)
}

func TestResolver_SameWorkRepairUsesPredecessorOnly(t *testing.T) {
	work := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	work.AddChapter("http://x/1", "One")
	work.AddChapter("http://x/2", "Two")
	third := work.AddChapter("javascript:cid(0)", "Three")

	f := newFetcher().
		page("http://x/1", model.PageResult{NextAddress: "http://x/from-one"}).
		page("http://x/2", model.PageResult{NextAddress: "http://x/from-two"}).
		page("http://x/from-two", model.PageResult{NextAddress: "http://x/end"})

	require.NoError(t, newResolver(f, Options{}).Resolve(context.Background(), []*model.Work{work}, 0))

	assert.Equal(t, "http://x/from-two", third.Address)
	assert.Equal(t, 0, f.count("http://x/from-one"))
}

func TestResolver_CrossWorkRepair(t *testing.T) {
	first := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	first.AddChapter("http://x/1", "One")
	first.AddChapter("http://x/2", "Two")

	second := model.NewWork(1, "", "Novel", "Vol 2")
	opening := second.AddChapter("", "Opening")
	second.AddChapter("", "Next")

	f := newFetcher().
		page("http://x/1", model.PageResult{NextAddress: "http://x/2"}).
		page("http://x/2", model.PageResult{NextAddress: "http://x/10"}).
		page("http://x/10", model.PageResult{NextAddress: "http://x/11", Text: "vol 2\n"}).
		page("http://x/11", model.PageResult{NextAddress: "http://x/12"})

	works := []*model.Work{first, second}
	r := newResolver(f, Options{})
	require.NoError(t, r.Resolve(context.Background(), works, 0))
	require.NoError(t, r.Resolve(context.Background(), works, 1))

	assert.Equal(t, "http://x/10", opening.Address)
	assert.Equal(t, "vol 2\n", opening.Text())
	assert.Equal(t, "http://x/11", second.Chapters[1].Address)
}

func TestResolver_BridgeWalksUnresolvedPreviousWork(t *testing.T) {
	first := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	first.AddChapter("http://x/1", "One")
	last := first.AddChapter("http://x/2", "Two")

	second := model.NewWork(1, "", "Novel", "Vol 2")
	opening := second.AddChapter("", "Opening")

	f := newFetcher().
		page("http://x/2", model.PageResult{HasNext: true, NextAddress: "http://x/2_2", Text: "skipped\n"}).
		page("http://x/2_2", model.PageResult{NextAddress: "http://x/10", Text: "skipped\n"}).
		page("http://x/10", model.PageResult{NextAddress: "http://x/11", Text: "vol 2\n"})

	works := []*model.Work{first, second}
	require.NoError(t, newResolver(f, Options{Bridge: true}).Resolve(context.Background(), works, 1))

	assert.Equal(t, 0, f.count("http://x/1"), "only the last chapter is walked")
	assert.Equal(t, "http://x/10", opening.Address)
	assert.Equal(t, "vol 2\n", opening.Text())

	assert.Empty(t, last.Text(), "bridged chapter keeps no content")
	assert.Equal(t, model.StatusReady, last.Status)
	assert.Equal(t, "http://x/10", last.NextAddress)
}

func TestResolver_NoBridgeMarksFailed(t *testing.T) {
	first := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	first.AddChapter("http://x/1", "One")

	second := model.NewWork(1, "", "Novel", "Vol 2")
	opening := second.AddChapter("", "Opening")

	var events []progress.Event
	f := newFetcher()
	err := newResolver(f, Options{OnProgress: func(e progress.Event) { events = append(events, e) }}).
		Resolve(context.Background(), []*model.Work{first, second}, 1)
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, opening.Status)
	assert.Empty(t, f.requested)
	require.NotEmpty(t, events)
	assert.Equal(t, progress.LevelError, events[len(events)-1].Level)
}

func TestResolver_RetryExhaustionKeepsSuccess(t *testing.T) {
	work := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	ch := work.AddChapter("http://x/1", "One")

	f := newFetcher().
		page("http://x/1", model.PageResult{HasNext: true, NextAddress: "http://x/1_2", Text: "before\n"}).
		fail("http://x/1_2", DefaultMaxRetries)

	var warnings int
	opts := Options{OnProgress: func(e progress.Event) {
		if e.Level == progress.LevelWarning {
			warnings++
		}
	}}
	require.NoError(t, newResolver(f, opts).Resolve(context.Background(), []*model.Work{work}, 0))

	assert.Equal(t, model.StatusSuccess, ch.Status)
	assert.True(t, ch.Truncated)
	assert.Equal(t, "before\n", ch.Text())
	assert.Equal(t, DefaultMaxRetries, f.count("http://x/1_2"))
	assert.Equal(t, "http://x/1_2", ch.NextAddress)
	assert.Equal(t, 1, warnings)
}

func TestResolver_RetryCounterResetsOnSuccess(t *testing.T) {
	work := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	ch := work.AddChapter("http://x/1", "One")

	f := newFetcher().
		fail("http://x/1", 2).
		page("http://x/1", model.PageResult{HasNext: true, NextAddress: "http://x/1_2", Text: "a\n"}).
		fail("http://x/1_2", 2).
		page("http://x/1_2", model.PageResult{NextAddress: "http://x/2", Text: "b\n"})

	require.NoError(t, newResolver(f, Options{MaxRetries: 3}).Resolve(context.Background(), []*model.Work{work}, 0))

	assert.False(t, ch.Truncated)
	assert.Equal(t, "a\nb\n", ch.Text())
	assert.Equal(t, 3, f.count("http://x/1"))
	assert.Equal(t, 3, f.count("http://x/1_2"))
}

func TestResolver_ParseErrorCountsAsRetry(t *testing.T) {
	work := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	ch := work.AddChapter("http://x/1", "One")

	f := newFetcher()
	f.responses["http://x/1"] = []response{{body: "not json"}}

	require.NoError(t, newResolver(f, Options{MaxRetries: 2}).Resolve(context.Background(), []*model.Work{work}, 0))

	assert.True(t, ch.Truncated)
	assert.Equal(t, model.StatusSuccess, ch.Status)
	assert.Equal(t, 2, f.count("http://x/1"))
}

func TestResolver_AppliesDelayAfterSuccess(t *testing.T) {
	work := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	work.AddChapter("http://x/1", "One")

	f := newFetcher().
		fail("http://x/1", 1).
		page("http://x/1", model.PageResult{NextAddress: "http://x/2"})

	var pauses []time.Duration
	p := &providertest.Fake{Base: "http://x", Kind: model.UnitChained, Pause: 700 * time.Millisecond}
	r := New(p, f, Options{Sleep: func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}})

	require.NoError(t, r.Resolve(context.Background(), []*model.Work{work}, 0))
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, pauses)
}

func TestResolver_Cancellation(t *testing.T) {
	work := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	first := work.AddChapter("http://x/1", "One")
	second := work.AddChapter("http://x/2", "Two")

	ctx, cancel := context.WithCancel(context.Background())
	f := newFetcher().page("http://x/1", model.PageResult{NextAddress: "http://x/2"})

	r := newResolver(f, Options{Sleep: func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}})

	err := r.Resolve(ctx, []*model.Work{work}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsCancellation(err))
	assert.Equal(t, model.StatusReady, first.Status)
	assert.Equal(t, model.StatusReady, second.Status)
	assert.Equal(t, 0, f.count("http://x/2"))
}

func TestResolver_OnChapter(t *testing.T) {
	work := model.NewWork(0, "http://x/1", "Novel", "Vol 1")
	work.AddChapter("", "Lost")
	work.AddChapter("http://x/1", "One")

	f := newFetcher().page("http://x/1", model.PageResult{NextAddress: "http://x/2"})

	var done []string
	r := newResolver(f, Options{OnChapter: func(wi int, c *model.Chapter) {
		done = append(done, c.Name+":"+c.Status.String())
	}})
	require.NoError(t, r.Resolve(context.Background(), []*model.Work{work}, 0))

	assert.Equal(t, []string{"Lost:failed", "One:success"}, done)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), 0))
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}
