package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Metadata is the record written next to an assembled work. Its presence on
// disk marks the work as complete.
type Metadata struct {
	DownloadTime time.Time `json:"downloadTime"`
	Name         string    `json:"name"`
	Seq          int       `json:"seq"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description,omitempty"`
}

// NewMetadata builds the metadata record of a work.
func NewMetadata(w *Work, downloaded time.Time) Metadata {
	return Metadata{
		DownloadTime: downloaded,
		Name:         w.Name,
		Seq:          w.Seq,
		Title:        w.Title,
		Author:       w.Author,
		Description:  w.Description,
	}
}

// JSON encodes the record without HTML escaping so titles stay readable.
func (m Metadata) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
