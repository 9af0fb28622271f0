// Package ioutils provides file system utilities for the novel-downloader.
package ioutils

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	err := WriteFile(ctx, "/books/Novel/Vol 1/pandoc2epub.sh", script)
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteFileAtomic streams the output of write into path so that path either
// keeps its previous content or holds the complete new content.
//
// The data goes to a temporary file in the same directory, which is synced
// to disk and then renamed over path.
//
// Example:
//
//	err := WriteFileAtomic(ctx, "/books/Novel/Vol 1/article.md", func(w io.Writer) error {
//	    _, err := io.WriteString(w, "# 0. Prologue\n")
//	    return err
//	})
func WriteFileAtomic(ctx context.Context, path string, write func(w io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := write(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Exists reports whether a regular file or directory exists at path. Any
// stat error, permission errors included, counts as absent.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyFile copies src to dst atomically.
func CopyFile(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return WriteFileAtomic(ctx, dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Runs of whitespace → single space, then leading/trailing whitespace trimmed
//   - Trailing dots → removed (Windows limitation)
//   - An empty result, "." or ".." → "_"
//
// Example:
//
//	SanitizeFileName("3/3077/1.jpg") // Returns "3_3077_1.jpg"
//	SanitizeFileName("cover...")     // Returns "cover"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = trailingDots.ReplaceAllString(name, "")
	name = strings.TrimRight(name, " ")
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}

// TruncateName cuts name to at most n bytes without splitting a UTF-8
// sequence.
func TruncateName(name string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(name) <= n {
		return name
	}
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n]
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
