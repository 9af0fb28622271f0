// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Atomic file writes (temp file, fsync, rename)
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Cover image resizing and format conversion
//
// # File Operations
//
//	// Write a document so readers never observe a partial file
//	err := ioutils.WriteFileAtomic(ctx, "/books/Novel/Vol 1/article.md", render)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/books/Novel/Vol 1")
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("3/3077/1.jpg") // Returns "3_3077_1.jpg"
//
// # Image Processing
//
// The ImageService turns whatever cover a site serves into "cover.jpg":
//
//	svc := ioutils.NewImageService()
//	path, err := svc.NormalizeCover(ctx, dir, "cover.webp", 1000)
package ioutils
