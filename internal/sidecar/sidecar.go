// Package sidecar reads and rewrites Jellyfin-style NFO documents: XML
// sidecar files carrying album or track metadata next to the media files.
// Fields are addressed by tag name anywhere in the tree, not by schema
// position, because NFO producers disagree on document structure.
package sidecar

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Ext is the sidecar file extension.
const Ext = ".nfo"

// IsSidecarFile returns true if the path has the sidecar extension.
func IsSidecarFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), Ext)
}

// Document is a parsed sidecar file.
type Document struct {
	path string
	doc  *etree.Document
}

// Load parses the sidecar document at path.
func Load(path string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("read %s: no root element", path)
	}
	return &Document{path: path, doc: doc}, nil
}

// Path returns the on-disk location of the document.
func (d *Document) Path() string {
	return d.path
}

// FieldValues returns the trimmed text of every element with the given tag
// name, in document order. Empty elements are skipped.
func (d *Document) FieldValues(name string) []string {
	var values []string
	for _, el := range d.doc.FindElements("//" + name) {
		if text := strings.TrimSpace(el.Text()); text != "" {
			values = append(values, text)
		}
	}
	return values
}

// SetField writes value into the index-th non-empty element with the
// given tag name, counting in document order. Empty elements are skipped
// so indexes line up with FieldValues.
func (d *Document) SetField(name string, index int, value string) {
	n := 0
	for _, el := range d.doc.FindElements("//" + name) {
		if strings.TrimSpace(el.Text()) == "" {
			continue
		}
		if n == index {
			el.SetText(value)
			return
		}
		n++
	}
}

// Genres returns the text of every genre element, skipping empty ones.
func (d *Document) Genres() []string {
	return d.FieldValues("genre")
}

// ReplaceGenres removes every existing genre element and appends one new
// element per value under the root. Replacement, never a merge.
func (d *Document) ReplaceGenres(genres []string) {
	root := d.doc.Root()
	for _, el := range d.doc.FindElements("//genre") {
		if parent := el.Parent(); parent != nil {
			parent.RemoveChild(el)
		}
	}
	for _, g := range genres {
		el := root.CreateElement("genre")
		el.SetText(g)
	}
}

// MusicBrainzID returns the release-group id, falling back to the album
// id, or empty when the document carries neither.
func (d *Document) MusicBrainzID() string {
	for _, name := range []string{"musicbrainzreleasegroupid", "musicbrainzalbumid"} {
		if values := d.FieldValues(name); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// AlbumTitle returns the first title element's text.
func (d *Document) AlbumTitle() string {
	if values := d.FieldValues("title"); len(values) > 0 {
		return values[0]
	}
	return ""
}

// PrimaryArtist returns the first artist element's text.
func (d *Document) PrimaryArtist() string {
	if values := d.FieldValues("artist"); len(values) > 0 {
		return values[0]
	}
	return ""
}

// Save rewrites the document in place: UTF-8, XML declaration, 2-space
// indentation.
func (d *Document) Save() error {
	d.ensureDeclaration()
	d.doc.Indent(2)
	if err := d.doc.WriteToFile(d.path); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// ensureDeclaration prepends an XML declaration when the source document
// had none.
func (d *Document) ensureDeclaration() {
	for _, tok := range d.doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			return
		}
	}
	pi := d.doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	d.doc.RemoveChild(pi)
	d.doc.InsertChildAt(0, pi)
}
