package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticHandler serves the rendered output tree. Directories resolve to
// their index.html; bare directory listings are never produced. Responses
// carry no-cache headers so previews always show the latest build.
type StaticHandler struct {
	root string
}

// NewStaticHandler creates a handler rooted at the output directory.
func NewStaticHandler(root string) *StaticHandler {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &StaticHandler{root: root}
}

// resolve maps a URL path onto a file below root, or "" when nothing
// servable exists there.
func (h *StaticHandler) resolve(urlPath string) string {
	cleaned := path.Clean("/" + urlPath)
	abs := filepath.Join(h.root, filepath.FromSlash(cleaned))
	if abs != h.root && !strings.HasPrefix(abs, h.root+string(os.PathSeparator)) {
		return ""
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		abs = filepath.Join(abs, "index.html")
		if info, err = os.Stat(abs); err != nil || info.IsDir() {
			return ""
		}
	}
	return abs
}

// ServeHTTP handles GET requests for rendered pages and copied assets.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	abs := h.resolve(r.URL.Path)
	if abs == "" {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(abs)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
