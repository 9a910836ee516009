package greet

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/dalemusser/portico/internal/app/system/htmlsanitize"
	"go.uber.org/zap"
)

const maxNameRunes = 64

// Handler greets a visitor by name.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeHello handles GET /hello?name=.
//
// The name is reduced to plain text and then truncated; a missing or empty
// name greets "world".
func (h *Handler) ServeHello(w http.ResponseWriter, r *http.Request) {
	name := htmlsanitize.PlainText(r.URL.Query().Get("name"))
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}
	if name == "" {
		name = "world"
	}
	h.Log.Debug("greeting", zap.String("name", name))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Hello, %s!\n", name)
}
