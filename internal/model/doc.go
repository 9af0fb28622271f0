// Package model defines the core data structures used throughout
// the novel-downloader application.
//
// # Work
//
// Work represents one downloadable unit (usually a volume) with its
// ordered chapter chain:
//
//	work := model.NewWork(0, firstChapterURL, "Novel", "Volume 1")
//	work.AddChapter(firstChapterURL, "Prologue")
//	work.AddChapter("", "Chapter 1") // repaired during resolution
//
// # Chapter
//
// Chapter is one node of the chain. It accumulates page text and image
// references and records the successor address discovered on its last page:
//
//	chapter.AppendPage(page)
//	chapter.NextAddress // repair source for the following chapter
//
// # Path Configuration
//
// PathConfig controls where a work is assembled using placeholders:
//
//	cfg := &model.PathConfig{
//	    FolderFormat:     "{name}/{title}",
//	    DocumentFileName: "article.md",
//	    MetaFileName:     "meta.json",
//	}
//	work.FolderPath("/books", cfg) // "/books/Novel/Volume 1"
//
// Available placeholders: {name}, {title}, {seq}
package model
