// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Image is a single image payload selected by the user.
type Image struct {
	Name string // Base file name, sent as the multipart filename
	Data []byte
}

// SearchQuery is the input to one search request.
// Either field may be absent; both may be present at the same time.
type SearchQuery struct {
	Image *Image
	Text  string
}

// HasText reports whether the query carries non-blank text.
func (q SearchQuery) HasText() bool {
	return strings.TrimSpace(q.Text) != ""
}

// HasImage reports whether the query carries an image payload.
func (q SearchQuery) HasImage() bool {
	return q.Image != nil && len(q.Image.Data) > 0
}

// IsEmpty reports whether there is nothing to search for.
func (q SearchQuery) IsEmpty() bool {
	return !q.HasText() && !q.HasImage()
}

// Label returns a short human readable description of the query.
func (q SearchQuery) Label() string {
	switch {
	case q.HasText() && q.HasImage():
		return strings.TrimSpace(q.Text) + " + " + q.Image.Name
	case q.HasText():
		return strings.TrimSpace(q.Text)
	case q.HasImage():
		return q.Image.Name
	default:
		return ""
	}
}
