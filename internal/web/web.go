// Package web serves the single-page chat UI. The page is embedded in
// the binary; all conversation state lives in the browser session and
// is gone on reload.
package web

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var indexHTML []byte

// Index serves the chat page.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
