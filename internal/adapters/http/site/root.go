// Package site serves the embedded browser game.
package site

import (
	"context"
	"net/http"
)

// Register attaches the game page and its assets to mux. Only the exact root
// path is claimed so API routes keep their own 404s.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("GET /{$}", files)
	mux.Handle("GET /assets/", files)
}
