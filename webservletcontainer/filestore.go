// FileStore is the minimal static-file fallback SPEC_FULL.md names but
// explicitly defers the design of (supplement C.9): just enough to
// exercise Container's slot-miss fallback path, not a general-purpose
// file-serving subsystem.
package webservletcontainer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beamtrade/beam/cmn/nlog"
	"github.com/beamtrade/beam/httpmsg"
	"github.com/beamtrade/beam/sessionstore"
)

// FileStore serves files under root, rendering a simple directory
// listing for a path that resolves to a directory.
type FileStore struct {
	root     string
	patterns *ContentTypePatterns
}

// NewFileStore builds a FileStore rooted at root using patterns (or
// DefaultContentTypePatterns if nil) to set each response's Content-Type.
func NewFileStore(root string, patterns *ContentTypePatterns) *FileStore {
	if patterns == nil {
		patterns = DefaultContentTypePatterns()
	}
	return &FileStore{root: root, patterns: patterns}
}

// FileStoreHandler adapts fs into a Handler[S] ignoring the resolved
// session - a Container is generic over the session payload, so the
// fallback slot is built with this free function rather than a method,
// letting one FileStore serve Containers with any session type.
func FileStoreHandler[S any](fs *FileStore) Handler[S] {
	return func(_ *sessionstore.Entry[S], req *httpmsg.HttpRequest, resp *httpmsg.HttpResponse) {
		fs.serve(req.URI.Path, resp)
	}
}

// Serve resolves path directly against the store, useful for tests or
// callers that do not go through a Container.
func (fs *FileStore) Serve(path string, resp *httpmsg.HttpResponse) {
	fs.serve(path, resp)
}

func (fs *FileStore) serve(path string, resp *httpmsg.HttpResponse) {
	rel := filepath.Clean("/" + path)
	full := filepath.Join(fs.root, rel)
	if !strings.HasPrefix(full, filepath.Clean(fs.root)+string(filepath.Separator)) && full != filepath.Clean(fs.root) {
		resp.StatusCode = httpmsg.StatusForbidden
		return
	}

	info, err := os.Stat(full)
	if err != nil {
		resp.StatusCode = httpmsg.StatusNotFound
		return
	}

	if info.IsDir() {
		fs.serveDirListing(full, rel, resp)
		return
	}

	data, err := os.ReadFile(full)
	if err != nil {
		nlog.Errorf("webservletcontainer: reading %s: %v", full, err)
		resp.StatusCode = httpmsg.StatusInternalServerError
		return
	}
	resp.SetHeader("Content-Type", fs.patterns.ContentType(full))
	resp.SetBody(data)
}

func (fs *FileStore) serveDirListing(full, rel string, resp *httpmsg.HttpResponse) {
	entries, err := os.ReadDir(full)
	if err != nil {
		resp.StatusCode = httpmsg.StatusInternalServerError
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<html><body><h1>%s</h1><ul>\n", rel)
	for _, name := range names {
		fmt.Fprintf(&sb, "<li><a href=\"%s\">%s</a></li>\n", name, name)
	}
	sb.WriteString("</ul></body></html>\n")

	resp.SetHeader("Content-Type", "text/html")
	resp.SetBody([]byte(sb.String()))
}
