package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/novel-downloader/internal/assemble"
	"github.com/handiism/novel-downloader/internal/config"
	"github.com/handiism/novel-downloader/internal/model"
	"github.com/handiism/novel-downloader/internal/progress"
	"github.com/handiism/novel-downloader/internal/provider"
	"github.com/handiism/novel-downloader/internal/provider/providertest"
)

// site serves a two volume novel:
//
//	Vol 1: One (/1, /1_2) -> Two ("" repaired to /2) -> Three (/3)
//	Vol 2: Opening ("" repaired to /4)
type site struct {
	srv *httptest.Server

	mu      sync.Mutex
	hits    map[string]int
	cookies []string
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{hits: make(map[string]int)}

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.cookies = append(s.cookies, r.Header.Get("Cookie"))
		s.mu.Unlock()

		if strings.HasPrefix(r.URL.Path, "/img/") {
			_, _ = w.Write([]byte("image:" + r.URL.Path))
			return
		}

		page, ok := s.pages()[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(providertest.Page(page)))
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *site) url(path string) string {
	return s.srv.URL + path
}

func (s *site) pages() map[string]model.PageResult {
	img := model.ImageRef{FileName: "a.png", Address: s.url("/img/a.png")}
	return map[string]model.PageResult{
		"/1":   {HasNext: true, NextAddress: s.url("/1_2"), Text: "one, page one\n", Images: []model.ImageRef{img}},
		"/1_2": {NextAddress: s.url("/2"), Text: "one, page two\n", Images: []model.ImageRef{img}},
		"/2":   {NextAddress: s.url("/3"), Text: "two\n"},
		"/3":   {NextAddress: s.url("/4"), Text: "three\n"},
		"/4":   {NextAddress: s.url("/5"), Text: "opening\n"},
	}
}

func (s *site) works() []*model.Work {
	v1 := model.NewWork(0, s.url("/1"), "Novel", "Vol 1")
	v1.Author = "Author"
	v1.Cover = &model.ImageRef{FileName: "cover.png", Address: s.url("/img/cover.png")}
	v1.AddChapter(s.url("/1"), "One")
	v1.AddChapter("", "Two")
	v1.AddChapter(s.url("/3"), "Three")

	v2 := model.NewWork(1, "", "Novel", "Vol 2")
	v2.AddChapter("", "Opening")

	return []*model.Work{v1, v2}
}

func (s *site) totalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.hits {
		n += c
	}
	return n
}

func (s *site) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

type recorder struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recorder) record(e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) messages(level progress.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func testSettings(t *testing.T) *config.Settings {
	s := config.DefaultSettings()
	s.OutputDir = t.TempDir()
	s.ConvertCoverToJPG = false
	s.RequestTimeoutSeconds = 5
	s.Cookie = "sid=1"
	return s
}

func newTestManager(t *testing.T, s *site, settings *config.Settings, kind model.UnitType) (*Manager, *recorder) {
	t.Helper()
	rec := &recorder{}
	fake := &providertest.Fake{Base: s.srv.URL, Kind: kind, Works: s.works}
	return NewManager(settings, provider.Registry{fake}, rec.record), rec
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestManager_Run(t *testing.T) {
	s := newSite(t)
	settings := testSettings(t)
	m, rec := newTestManager(t, s, settings, model.UnitChained)

	require.NoError(t, m.Run(context.Background(), s.url("/novel"), nil))

	vol1 := filepath.Join(settings.OutputDir, "Novel", "Vol 1")
	vol2 := filepath.Join(settings.OutputDir, "Novel", "Vol 2")

	doc, err := os.ReadFile(filepath.Join(vol1, "article.md"))
	require.NoError(t, err)
	assert.Equal(t,
		"# 0. One\n\none, page one\none, page two\n\n\n\n"+
			"# 1. Two\n\ntwo\n\n\n\n"+
			"# 2. Three\n\nthree\n\n\n\n",
		string(doc))

	doc2, err := os.ReadFile(filepath.Join(vol2, "article.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc2), "# 0. Opening\n\nopening\n")

	for _, name := range []string{"meta.json", "a.png", "cover.png", assemble.NativeScriptCreator().FileName()} {
		assert.FileExists(t, filepath.Join(vol1, name))
	}
	assert.FileExists(t, filepath.Join(vol2, "meta.json"))

	assert.Equal(t, 1, s.hitCount("/img/a.png"), "an image cited twice is fetched once")
	assert.Equal(t, 0, s.hitCount("/5"), "no fetch past the last page")

	p := m.GetProgress()
	assert.Equal(t, 4, p.ChaptersTotal)
	assert.Equal(t, 4, p.ChaptersDone)
	assert.Equal(t, 2, p.ImagesTotal)
	assert.Equal(t, 2, p.ImagesDone)
	assert.Equal(t, int64(len("image:/img/a.png")+len("image:/img/cover.png")), p.BytesReceived)

	assert.Len(t, rec.messages(progress.LevelSuccess), 2)
	assert.Empty(t, rec.messages(progress.LevelError))

	s.mu.Lock()
	for _, c := range s.cookies {
		assert.Equal(t, "sid=1", c)
	}
	s.mu.Unlock()

	assert.Equal(t, []string{"Novel - Vol 1 (3 chapters)", "Novel - Vol 2 (1 chapters)"}, m.WorkNames())
}

func TestManager_CompletedWorkIsSkippedWithoutFetching(t *testing.T) {
	s := newSite(t)
	settings := testSettings(t)

	first, _ := newTestManager(t, s, settings, model.UnitChained)
	require.NoError(t, first.Run(context.Background(), s.url("/novel"), nil))
	before := readTree(t, settings.OutputDir)
	hits := s.totalHits()

	second, rec := newTestManager(t, s, settings, model.UnitChained)
	require.NoError(t, second.Run(context.Background(), s.url("/novel"), nil))

	assert.Equal(t, hits, s.totalHits(), "no request for completed works")
	assert.Equal(t, before, readTree(t, settings.OutputDir))
	assert.Len(t, rec.messages(progress.LevelInfo), 4, "two found, two already downloaded")

	p := second.GetProgress()
	assert.Equal(t, p.ChaptersTotal, p.ChaptersDone)
}

func TestManager_DownloadSelectionBridgesPreviousVolume(t *testing.T) {
	s := newSite(t)
	settings := testSettings(t)
	m, _ := newTestManager(t, s, settings, model.UnitChained)

	require.NoError(t, m.Initialize(context.Background(), s.url("/novel")))
	require.NoError(t, m.Download(context.Background(), []int{1}))

	assert.NoDirExists(t, filepath.Join(settings.OutputDir, "Novel", "Vol 1"))
	doc, err := os.ReadFile(filepath.Join(settings.OutputDir, "Novel", "Vol 2", "article.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "opening\n")

	assert.Equal(t, 0, s.hitCount("/1"), "only the last chapter of the previous volume is walked")
	assert.Equal(t, 1, s.hitCount("/3"))
}

func TestManager_DownloadSelectionWithoutBridgeMarksFailed(t *testing.T) {
	s := newSite(t)
	settings := testSettings(t)
	settings.BridgeVolumes = false
	m, rec := newTestManager(t, s, settings, model.UnitChained)

	require.NoError(t, m.Run(context.Background(), s.url("/novel"), []int{1}))

	doc, err := os.ReadFile(filepath.Join(settings.OutputDir, "Novel", "Vol 2", "article.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "## [Opening]() DOWNLOAD FAILED")
	assert.FileExists(t, filepath.Join(settings.OutputDir, "Novel", "Vol 2", "meta.json"), "a partial work is still marked complete")
	assert.NotEmpty(t, rec.messages(progress.LevelWarning))
	assert.Equal(t, 0, s.totalHits())
}

func TestManager_SelectionOutOfRange(t *testing.T) {
	s := newSite(t)
	settings := testSettings(t)
	m, _ := newTestManager(t, s, settings, model.UnitChained)
	require.NoError(t, m.Initialize(context.Background(), s.url("/novel")))

	err := m.Download(context.Background(), []int{0, 2})

	var selErr *SelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Equal(t, 2, selErr.Index)
	assert.Equal(t, 2, selErr.Count)
	assert.ErrorIs(t, err, ErrOutOfRange)

	entries, err := os.ReadDir(settings.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written for an invalid selection")
	assert.Equal(t, 0, s.totalHits())
}

func TestManager_Errors(t *testing.T) {
	s := newSite(t)

	t.Run("not initialized", func(t *testing.T) {
		m, _ := newTestManager(t, s, testSettings(t), model.UnitChained)
		assert.ErrorIs(t, m.Download(context.Background(), nil), ErrNotInitialized)
	})

	t.Run("unsupported address", func(t *testing.T) {
		m, _ := newTestManager(t, s, testSettings(t), model.UnitChained)
		assert.ErrorIs(t, m.Run(context.Background(), "https://elsewhere.example.com/novel", nil), provider.ErrUnsupported)
	})

	t.Run("empty selection", func(t *testing.T) {
		m, _ := newTestManager(t, s, testSettings(t), model.UnitChained)
		assert.ErrorIs(t, m.Run(context.Background(), s.url("/novel"), []int{}), ErrEmptyList)
	})

	t.Run("empty work list", func(t *testing.T) {
		fake := &providertest.Fake{Base: s.srv.URL, Kind: model.UnitChained}
		m := NewManager(testSettings(t), provider.Registry{fake}, nil)
		assert.ErrorIs(t, m.Run(context.Background(), s.url("/novel"), nil), ErrEmptyList)
	})

	t.Run("standalone", func(t *testing.T) {
		m, _ := newTestManager(t, s, testSettings(t), model.UnitStandalone)
		assert.ErrorIs(t, m.Run(context.Background(), s.url("/novel"), nil), ErrStandaloneNotImplemented)
	})

	t.Run("enumeration failure", func(t *testing.T) {
		boom := errors.New("catalog unavailable")
		fake := &providertest.Fake{Base: s.srv.URL, Kind: model.UnitChained, EnumerateErr: boom}
		m := NewManager(testSettings(t), provider.Registry{fake}, nil)
		assert.ErrorIs(t, m.Run(context.Background(), s.url("/novel"), nil), boom)
	})
}

func TestManager_CancelledContextWritesNoMarker(t *testing.T) {
	s := newSite(t)
	settings := testSettings(t)
	m, _ := newTestManager(t, s, settings, model.UnitChained)
	require.NoError(t, m.Initialize(context.Background(), s.url("/novel")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Download(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(settings.OutputDir, "Novel", "Vol 1", "meta.json"))
}

func TestManager_CoverSharingIllustrationIsWritten(t *testing.T) {
	s := newSite(t)
	settings := testSettings(t)
	settings.ConvertCoverToJPG = true

	works := func() []*model.Work {
		ws := s.works()
		ws[0].Cover = &model.ImageRef{FileName: "cover.jpg", Address: s.url("/img/a.png")}
		return ws
	}
	rec := &recorder{}
	fake := &providertest.Fake{Base: s.srv.URL, Kind: model.UnitChained, Works: works}
	m := NewManager(settings, provider.Registry{fake}, rec.record)

	require.NoError(t, m.Run(context.Background(), s.url("/novel"), []int{0}))

	vol1 := filepath.Join(settings.OutputDir, "Novel", "Vol 1")
	for _, name := range []string{"a.png", "cover.jpg"} {
		data, err := os.ReadFile(filepath.Join(vol1, name))
		require.NoError(t, err)
		assert.Equal(t, "image:/img/a.png", string(data))
	}
	assert.Equal(t, 1, s.hitCount("/img/a.png"))

	p := m.GetProgress()
	assert.Equal(t, 1, p.ImagesTotal)
	assert.Equal(t, 1, p.ImagesDone)
	assert.Empty(t, rec.messages(progress.LevelWarning))
}
