package home

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.gohtml
var FS embed.FS

var pages = template.Must(template.ParseFS(FS, "templates/*.gohtml"))

// Handler serves the landing page.
type Handler struct {
	AppName string
	Log     *zap.Logger
}

func NewHandler(appName string, logger *zap.Logger) *Handler {
	return &Handler{
		AppName: appName,
		Log:     logger,
	}
}

type pageData struct {
	Title   string
	AppName string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:   "Welcome",
		AppName: h.AppName,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "home", data); err != nil {
		h.Log.Error("render home", zap.Error(err))
	}
}
