package assemble

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	ioutils "github.com/handiism/novel-downloader/internal/io"
	"github.com/handiism/novel-downloader/internal/model"
	"github.com/handiism/novel-downloader/internal/progress"
)

// RenderFunc serializes the metadata record of a work.
type RenderFunc func(work *model.Work, downloaded time.Time) ([]byte, error)

// Options configures a Writer.
type Options struct {
	// Paths controls the folder and file names. Nil uses model.DefaultPathConfig.
	Paths *model.PathConfig

	// Render produces the metadata record. Nil uses model.Metadata JSON.
	Render RenderFunc

	// Script, when set, writes the EPUB conversion script next to the document.
	Script *ScriptCreator

	// CoverFileName is the cover file the script refers to. Empty uses the
	// work's cover file name.
	CoverFileName string

	// Now returns the download timestamp. Nil uses time.Now.
	Now func() time.Time

	OnProgress progress.Func
}

// Output describes the files produced for one work.
type Output struct {
	Dir      string
	Document string
	Meta     string
	Script   string

	// Images are the images of the work, cover included, to be downloaded
	// into Dir. A source may appear under several file names.
	Images []model.ImageRef
}

// Writer writes works under a root directory.
type Writer struct {
	root string
	opts Options
}

// NewWriter creates a Writer rooted at root.
func NewWriter(root string, opts Options) *Writer {
	if opts.Paths == nil {
		opts.Paths = model.DefaultPathConfig()
	}
	if opts.Render == nil {
		opts.Render = func(work *model.Work, downloaded time.Time) ([]byte, error) {
			return model.NewMetadata(work, downloaded).JSON()
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Writer{root: root, opts: opts}
}

// Dir returns the output folder of work.
func (w *Writer) Dir(work *model.Work) string {
	return work.FolderPath(w.root, w.opts.Paths)
}

// Completed reports whether the completion marker of work exists.
func (w *Writer) Completed(work *model.Work) bool {
	return ioutils.Exists(work.MetaPath(w.root, w.opts.Paths))
}

// Prepare creates the output folder of work and returns it.
func (w *Writer) Prepare(work *model.Work) (string, error) {
	dir := w.Dir(work)
	if err := ioutils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create folder %s: %w", dir, err)
	}
	return dir, nil
}

// Assemble writes the document, then the metadata record, then the
// conversion script. Chapter text is released once the document is on disk.
// The returned error is set only when the document or the metadata record
// could not be written; a script failure is reported as a warning.
func (w *Writer) Assemble(ctx context.Context, work *model.Work) (Output, error) {
	dir, err := w.Prepare(work)
	if err != nil {
		return Output{}, err
	}

	out := Output{
		Dir:      dir,
		Document: work.DocumentPath(w.root, w.opts.Paths),
		Meta:     work.MetaPath(w.root, w.opts.Paths),
		Images:   work.Images(),
	}

	err = ioutils.WriteFileAtomic(ctx, out.Document, func(dst io.Writer) error {
		return WriteDocument(dst, work)
	})
	if err != nil {
		return Output{}, fmt.Errorf("write document %s: %w", out.Document, err)
	}
	for _, c := range work.Chapters {
		c.ClearContent()
	}
	w.opts.OnProgress.Emit(progress.LevelVerbose, "Document written", progress.Fields{"path": out.Document})

	meta, err := w.opts.Render(work, w.opts.Now())
	if err != nil {
		return Output{}, fmt.Errorf("render metadata: %w", err)
	}
	err = ioutils.WriteFileAtomic(ctx, out.Meta, func(dst io.Writer) error {
		_, err := dst.Write(meta)
		return err
	})
	if err != nil {
		return Output{}, fmt.Errorf("write metadata %s: %w", out.Meta, err)
	}

	if w.opts.Script != nil {
		path, err := w.writeScript(ctx, dir, work)
		if err != nil {
			w.opts.OnProgress.Emit(progress.LevelWarning, "Could not write conversion script", progress.Fields{"error": err.Error()})
		} else {
			out.Script = path
		}
	}

	return out, nil
}

func (w *Writer) writeScript(ctx context.Context, dir string, work *model.Work) (string, error) {
	cover := w.opts.CoverFileName
	if !work.HasCover() {
		cover = ""
	} else if cover == "" {
		cover = work.Cover.FileName
	}

	path := filepath.Join(dir, w.opts.Script.FileName())
	content := w.opts.Script.CreateScript(work, w.opts.Paths.DocumentFileName, cover)
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

// WriteDocument writes the chapters of work in sequence order. Each chapter
// is a level one heading "<seq>. <name>" followed by its text; a failed
// chapter is replaced by a link to the work and a failure notice.
func WriteDocument(dst io.Writer, work *model.Work) error {
	bw := bufio.NewWriter(dst)
	for _, c := range work.Chapters {
		fmt.Fprintf(bw, "# %d. %s\n\n", c.Seq, c.Name)
		if c.Status == model.StatusFailed {
			fmt.Fprintf(bw, "## [%s](%s) DOWNLOAD FAILED\n", c.Name, work.Address)
		} else {
			bw.WriteString(c.Text())
			bw.WriteString("\n")
		}
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}
