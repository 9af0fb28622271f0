// Package assemble writes resolved works to disk.
//
// Each work gets its own folder holding the markdown document, the metadata
// record and, optionally, a shell or batch script with the pandoc command
// that turns the document into an EPUB. The metadata record doubles as the
// completion marker: it is written only after the document is durably on
// disk, and a folder that has it is never written again.
//
// # Layout
//
//	<root>/<name>/<title>/
//	    article.md
//	    meta.json
//	    pandoc2epub.sh   (pandoc2epub.bat on Windows)
//	    cover.jpg, images...
//
// # Usage
//
//	w := assemble.NewWriter(root, assemble.Options{Render: p.RenderMetadata})
//	if w.Completed(work) {
//	    return // skip before any page is fetched
//	}
//	out, err := w.Assemble(ctx, work)
package assemble
