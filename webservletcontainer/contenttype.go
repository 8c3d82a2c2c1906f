package webservletcontainer

import "path/filepath"

// defaultContentType is returned for an extension with no registered
// mapping.
const defaultContentType = "application/octet-stream"

// ContentTypePatterns maps a file path's extension to a MIME content
// type, grounded on ContentTypePatterns.hpp's extension->type map.
type ContentTypePatterns struct {
	defaultType string
	byExtension map[string]string
}

// NewContentTypePatterns builds an empty pattern set.
func NewContentTypePatterns() *ContentTypePatterns {
	return &ContentTypePatterns{defaultType: defaultContentType, byExtension: make(map[string]string)}
}

// DefaultContentTypePatterns mirrors get_default_patterns: css, html, htm,
// js, json, svg, png, jpg and txt pre-registered, the set FileStore uses
// when none is supplied.
func DefaultContentTypePatterns() *ContentTypePatterns {
	p := NewContentTypePatterns()
	p.AddExtension("css", "text/css")
	p.AddExtension("html", "text/html")
	p.AddExtension("htm", "text/html")
	p.AddExtension("js", "application/javascript")
	p.AddExtension("json", "application/json")
	p.AddExtension("svg", "image/svg+xml")
	p.AddExtension("png", "image/png")
	p.AddExtension("jpg", "image/jpeg")
	p.AddExtension("txt", "text/plain")
	return p
}

// AddExtension associates extension (without its leading dot) with
// contentType.
func (p *ContentTypePatterns) AddExtension(extension, contentType string) {
	p.byExtension["."+extension] = contentType
}

// ContentType returns the content type registered for path's extension,
// or the default type if none matches.
func (p *ContentTypePatterns) ContentType(path string) string {
	if ct, ok := p.byExtension[filepath.Ext(path)]; ok {
		return ct
	}
	return p.defaultType
}
