// Package site serves the embedded prediction form and its assets.
package site

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// Register attaches the index page and static asset routes to mux.
//
//	GET /          -> index.html
//	GET /static/*  -> script.js, style.css
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	root := NewRootHandler()
	mux.HandleFunc("GET /{$}", root.HandleRoot)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// RootHandler handles root path requests
type RootHandler struct {
	index []byte
	err   error
}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	index, err := fs.ReadFile(staticFS, "static/index.html")
	return &RootHandler{index: index, err: err}
}

// HandleRoot handles GET / requests with the prediction form.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	if h.err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.index)
}
