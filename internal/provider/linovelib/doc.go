// Package linovelib implements the provider for www.linovelib.com.
//
// A novel on linovelib is a catalog of volumes. Each volume becomes one
// chained work whose chapters are walked page by page. Chapter links hidden
// behind "javascript:" placeholders are left empty and repaired during
// resolution from the previous chapter's successor address.
//
// Page text is delivered with a private-use glyph substitution applied to
// the most common characters. ParsePage reverses it.
package linovelib
