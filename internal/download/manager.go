package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/handiism/novel-downloader/internal/assemble"
	"github.com/handiism/novel-downloader/internal/config"
	"github.com/handiism/novel-downloader/internal/http"
	"github.com/handiism/novel-downloader/internal/images"
	ioutils "github.com/handiism/novel-downloader/internal/io"
	"github.com/handiism/novel-downloader/internal/model"
	"github.com/handiism/novel-downloader/internal/progress"
	"github.com/handiism/novel-downloader/internal/provider"
	"github.com/handiism/novel-downloader/internal/resolve"
)

// Progress is a snapshot of the download counters.
type Progress struct {
	ChaptersDone  int
	ChaptersTotal int
	ImagesDone    int
	ImagesTotal   int
	BytesReceived int64
}

// Manager coordinates novel downloads.
//
// A Manager handles one address at a time: Initialize enumerates the works
// of the address, Download processes a selection of them. Works are
// processed one after another in their original order.
type Manager struct {
	settings     *config.Settings
	registry     provider.Registry
	httpClient   *http.Client
	imageService *ioutils.ImageService

	provider provider.Provider
	session  *provider.Session
	works    []*model.Work

	chaptersDone  atomic.Int32
	chaptersTotal atomic.Int32
	imagesDone    atomic.Int32
	imagesTotal   atomic.Int32
	receivedBytes atomic.Int64

	onProgress progress.Func
	mu         sync.RWMutex
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, registry provider.Registry, onProgress progress.Func) *Manager {
	return &Manager{
		settings:     settings,
		registry:     registry,
		httpClient:   http.NewClient(settings.RequestTimeout()),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}
}

// Initialize selects the provider for address and enumerates its works.
func (m *Manager) Initialize(ctx context.Context, address string) error {
	p, err := m.registry.Find(address)
	if err != nil {
		return err
	}

	cookie, err := http.LoadCookie(m.settings.Cookie)
	if err != nil {
		return fmt.Errorf("load cookie: %w", err)
	}

	session := provider.NewSession(p, m.httpClient, cookie).WithUserAgent(m.settings.UserAgent)

	m.onProgress.Emit(progress.LevelVerbose, "Fetching catalog", progress.Fields{"provider": p.Name(), "address": address})
	works, err := p.Enumerate(ctx, session, address)
	if err != nil {
		return fmt.Errorf("enumerate %s: %w", address, err)
	}

	for _, w := range works {
		if err := w.Validate(); err != nil {
			return err
		}
		m.onProgress.Emit(progress.LevelInfo, fmt.Sprintf("Found: %s", w), nil)
	}

	m.mu.Lock()
	m.provider = p
	m.session = session
	m.works = works
	m.mu.Unlock()

	return nil
}

// Works returns the enumerated works.
func (m *Manager) Works() []*model.Work {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.works
}

// WorkNames returns a label for every enumerated work.
func (m *Manager) WorkNames() []string {
	works := m.Works()
	names := make([]string, len(works))
	for i, w := range works {
		names[i] = w.String()
	}
	return names
}

// Run initializes the manager for address and downloads selection.
func (m *Manager) Run(ctx context.Context, address string, selection []int) error {
	if err := m.Initialize(ctx, address); err != nil {
		return err
	}
	return m.Download(ctx, selection)
}

// Download processes the works at the given indices. A nil selection means
// every work. Every index is validated before anything is fetched.
func (m *Manager) Download(ctx context.Context, selection []int) error {
	m.mu.RLock()
	p, session, works := m.provider, m.session, m.works
	m.mu.RUnlock()

	if p == nil {
		return ErrNotInitialized
	}

	selected, err := selectWorks(works, selection)
	if err != nil {
		return err
	}

	switch p.UnitType() {
	case model.UnitChained:
		return m.processChained(ctx, p, session, works, selected)
	default:
		if len(works) == 0 {
			return ErrEmptyList
		}
		return ErrStandaloneNotImplemented
	}
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() Progress {
	return Progress{
		ChaptersDone:  int(m.chaptersDone.Load()),
		ChaptersTotal: int(m.chaptersTotal.Load()),
		ImagesDone:    int(m.imagesDone.Load()),
		ImagesTotal:   int(m.imagesTotal.Load()),
		BytesReceived: m.receivedBytes.Load(),
	}
}

// selectWorks validates selection and returns a membership mask over works.
func selectWorks(works []*model.Work, selection []int) ([]bool, error) {
	mask := make([]bool, len(works))
	if selection == nil {
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	}

	for _, i := range selection {
		if i < 0 || i >= len(works) {
			return nil, &SelectionError{Index: i, Count: len(works)}
		}
		mask[i] = true
	}
	return mask, nil
}

func (m *Manager) processChained(ctx context.Context, p provider.Provider, session *provider.Session, works []*model.Work, selected []bool) error {
	if len(works) == 0 || !anySelected(selected) {
		return ErrEmptyList
	}

	for i, w := range works {
		if selected[i] {
			m.chaptersTotal.Add(int32(len(w.Chapters)))
		}
	}

	writer := m.newWriter(p)
	resolver := resolve.New(p, session, resolve.Options{
		MaxRetries: m.settings.ChapterMaxRetries,
		Bridge:     m.settings.BridgeVolumes,
		OnProgress: m.onProgress,
		OnChapter: func(int, *model.Chapter) {
			m.chaptersDone.Add(1)
		},
	})
	fan := images.New(session, images.Options{
		Limit:      m.settings.MaxConcurrentImages,
		OnProgress: m.onProgress,
		OnRelease: func(model.ImageRef, error) {
			m.imagesDone.Add(1)
		},
		OnBytes: func(n int64) {
			m.receivedBytes.Add(n)
		},
	})

	for i := range works {
		if !selected[i] {
			continue
		}
		if err := m.processWork(ctx, writer, resolver, fan, works, i); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) newWriter(p provider.Provider) *assemble.Writer {
	opts := assemble.Options{
		Paths:      m.settings.ToPathConfig(),
		Render:     p.RenderMetadata,
		OnProgress: m.onProgress,
	}
	if m.settings.WriteConversionScript {
		opts.Script = assemble.NativeScriptCreator()
	}
	if m.settings.ConvertCoverToJPG {
		opts.CoverFileName = ioutils.CoverFileName
	}
	return assemble.NewWriter(m.settings.OutputDir, opts)
}

// processWork runs gate, resolution, assembly and image download for
// works[index]. Only cancellation and write failures are returned.
func (m *Manager) processWork(ctx context.Context, writer *assemble.Writer, resolver *resolve.Resolver, fan *images.FanOut, works []*model.Work, index int) error {
	work := works[index]
	fields := progress.Fields{"work": work.Title, "dir": writer.Dir(work)}

	if writer.Completed(work) {
		m.chaptersDone.Add(int32(len(work.Chapters)))
		m.onProgress.Emit(progress.LevelInfo, fmt.Sprintf("Already downloaded: %s", work.Title), fields)
		return nil
	}

	m.onProgress.Emit(progress.LevelInfo, fmt.Sprintf("Downloading: %s", work), fields)

	if err := resolver.Resolve(ctx, works, index); err != nil {
		return err
	}

	out, err := writer.Assemble(ctx, work)
	if err != nil {
		m.onProgress.Emit(progress.LevelError, fmt.Sprintf("Error writing %s: %v", work.Title, err), fields)
		return err
	}

	m.imagesTotal.Add(int32(len(model.DedupImages(out.Images))))
	results := fan.FetchAll(ctx, out.Images, out.Dir)
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.settings.ConvertCoverToJPG && work.HasCover() && coverDownloaded(results, work.Cover.Address) {
		m.normalizeCover(ctx, out.Dir, work)
	}

	m.report(work, results)
	return nil
}

func (m *Manager) normalizeCover(ctx context.Context, dir string, work *model.Work) {
	name := ioutils.SanitizeFileName(work.Cover.FileName)
	path, err := m.imageService.NormalizeCover(ctx, dir, name, m.settings.CoverMaxSize)
	if err != nil {
		m.onProgress.Emit(progress.LevelWarning, fmt.Sprintf("Error converting cover: %v", err), progress.Fields{"work": work.Title})
		return
	}
	m.onProgress.Emit(progress.LevelVerbose, "Cover saved", progress.Fields{"path": filepath.Base(path)})
}

func (m *Manager) report(work *model.Work, results []images.Result) {
	var failed, truncated int
	for _, c := range work.Chapters {
		switch {
		case c.Status == model.StatusFailed:
			failed++
		case c.Truncated:
			truncated++
		}
	}
	imageErr := images.Err(results)

	if failed == 0 && truncated == 0 && imageErr == nil {
		m.onProgress.Emit(progress.LevelSuccess, fmt.Sprintf("Successfully downloaded: %s", work.Title), nil)
		return
	}

	fields := progress.Fields{
		"work":            work.Title,
		"failed_chapters": failed,
		"truncated":       truncated,
		"failed_images":   len(images.Failed(results)),
	}
	if imageErr != nil {
		fields["error"] = imageErr.Error()
	}
	m.onProgress.Emit(progress.LevelWarning, fmt.Sprintf("Finished %s, some parts failed", work.Title), fields)
}

func coverDownloaded(results []images.Result, address string) bool {
	for _, r := range results {
		if r.Ref.Address == address {
			return r.Err == nil
		}
	}
	return false
}

func anySelected(selected []bool) bool {
	for _, s := range selected {
		if s {
			return true
		}
	}
	return false
}
