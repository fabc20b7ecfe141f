package server

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"portfolioos/pkg/router"
)

// StaticFileHandler serves the built frontend. Unknown paths without a file
// extension get index.html so client-side routes survive a reload.
type StaticFileHandler struct {
	dir          string
	cacheControl string
	indexFile    string
	useETag      bool
	spa          bool
	apiPrefix    string
}

// NewStaticFileHandler creates a static file handler with SPA fallback
// enabled for everything outside /api/.
func NewStaticFileHandler(dir string) *StaticFileHandler {
	return &StaticFileHandler{
		dir:          dir,
		cacheControl: "public, max-age=3600",
		indexFile:    "index.html",
		useETag:      true,
		spa:          true,
		apiPrefix:    "/api/",
	}
}

// SetCacheControl sets the Cache-Control header value for assets.
func (h *StaticFileHandler) SetCacheControl(value string) {
	h.cacheControl = value
}

// EnableETag enables or disables ETag generation.
func (h *StaticFileHandler) EnableETag(enabled bool) {
	h.useETag = enabled
}

// EnableSPA enables or disables the index.html fallback.
func (h *StaticFileHandler) EnableSPA(enabled bool) {
	h.spa = enabled
}

// mimeTypes overrides the platform MIME table, which is often missing
// web font and module types in minimal containers.
var mimeTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".json":  "application/json",
	".map":   "application/json",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".txt":   "text/plain; charset=utf-8",
}

func contentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := mimeTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ServeHTTP implements http.Handler interface.
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.apiPrefix != "" && strings.HasPrefix(r.URL.Path, h.apiPrefix) {
		router.WriteMessage(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		router.WriteMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	// path.Clean on a rooted path drops any "..", keeping lookups inside dir.
	clean := path.Clean("/" + r.URL.Path)
	full := filepath.Join(h.dir, filepath.FromSlash(clean))

	fi, err := os.Stat(full)
	if err == nil && fi.IsDir() {
		full = filepath.Join(full, h.indexFile)
		fi, err = os.Stat(full)
	}
	if err == nil && !fi.IsDir() {
		h.serveFile(w, r, full, fi, filepath.Base(full) == h.indexFile)
		return
	}
	if err != nil && !os.IsNotExist(err) {
		router.WriteMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}

	if h.spa && filepath.Ext(clean) == "" {
		index := filepath.Join(h.dir, h.indexFile)
		if fi, err := os.Stat(index); err == nil && !fi.IsDir() {
			h.serveFile(w, r, index, fi, true)
			return
		}
	}
	http.NotFound(w, r)
}

// serveFile serves one file. Conditional and range requests are handled by
// http.ServeContent. The HTML shell is never cached so new deploys show up.
func (h *StaticFileHandler) serveFile(w http.ResponseWriter, r *http.Request, name string, fi os.FileInfo, shell bool) {
	f, err := os.Open(name)
	if err != nil {
		router.WriteMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType(name))
	if shell {
		w.Header().Set("Cache-Control", "no-cache")
	} else if h.cacheControl != "" {
		w.Header().Set("Cache-Control", h.cacheControl)
	}
	if h.useETag {
		w.Header().Set("ETag", fmt.Sprintf(`"%x-%x"`, fi.ModTime().UnixNano(), fi.Size()))
	}

	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
