package assemble

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/handiism/novel-downloader/internal/model"
)

// ScriptFormat selects the shell dialect of the conversion script.
type ScriptFormat int

const (
	// FormatShell writes a POSIX shell script, pandoc2epub.sh.
	FormatShell ScriptFormat = iota

	// FormatBatch writes a Windows batch file, pandoc2epub.bat.
	FormatBatch
)

// ScriptFormatFor returns the script format native to goos.
func ScriptFormatFor(goos string) ScriptFormat {
	if goos == "windows" {
		return FormatBatch
	}
	return FormatShell
}

// ScriptCreator renders the pandoc command that converts an assembled
// document into an EPUB. The script is only written, never executed.
//
// Example:
//
//	creator := NewScriptCreator(FormatShell)
//	content := creator.CreateScript(work, "article.md", "cover.jpg")
//
//	// Result:
//	// #!/bin/sh
//	// cd "$(dirname "$0")" || exit 1
//	// pandoc "article.md" -o "Novel Vol 1.epub" --epub-cover-image="cover.jpg" ...
type ScriptCreator struct {
	format ScriptFormat
}

// NewScriptCreator creates a ScriptCreator for format.
func NewScriptCreator(format ScriptFormat) *ScriptCreator {
	return &ScriptCreator{format: format}
}

// NativeScriptCreator creates a ScriptCreator for the running platform.
func NativeScriptCreator() *ScriptCreator {
	return NewScriptCreator(ScriptFormatFor(runtime.GOOS))
}

// FileName returns the script file name.
func (s *ScriptCreator) FileName() string {
	if s.format == FormatBatch {
		return "pandoc2epub.bat"
	}
	return "pandoc2epub.sh"
}

// CreateScript renders the script for work. document is the document file
// name and cover the cover file name, or "" to omit the cover option.
func (s *ScriptCreator) CreateScript(work *model.Work, document, cover string) string {
	if document == "" {
		document = "article.md"
	}
	title := strings.TrimSpace(work.Name + " " + work.Title)

	args := []string{
		"pandoc",
		s.quote(document),
		"-o", s.quote(title + ".epub"),
	}
	if cover != "" {
		args = append(args, "--epub-cover-image="+s.quote(cover))
	}
	args = append(args,
		"--from", "markdown+hard_line_breaks",
		"--metadata", "title="+s.quote(title),
		"--metadata", "author="+s.quote(work.Author),
	)
	command := strings.Join(args, " ")

	switch s.format {
	case FormatBatch:
		return fmt.Sprintf("@echo off\r\ncd /d \"%%~dp0\"\r\n%s\r\n", command)
	default:
		return fmt.Sprintf("#!/bin/sh\ncd \"$(dirname \"$0\")\" || exit 1\n%s\n", command)
	}
}

// quote wraps s in double quotes, escaping what the target shell would
// otherwise expand.
func (s *ScriptCreator) quote(v string) string {
	switch s.format {
	case FormatBatch:
		v = strings.ReplaceAll(v, `"`, `'`)
		v = strings.ReplaceAll(v, "%", "%%")
	default:
		v = shellEscaper.Replace(v)
	}
	return `"` + v + `"`
}

var shellEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
