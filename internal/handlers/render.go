package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/product-catalog/internal/models"
)

//go:embed templates
var templatesFS embed.FS

// inputTimeLayout is what a datetime-local input with step=1 submits.
const inputTimeLayout = "2006-01-02T15:04:05"

var templateFuncs = template.FuncMap{
	"displayTime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"inputTime":   func(t time.Time) string { return t.UTC().Format(inputTimeLayout) },
	"statusText":  http.StatusText,
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"auth_form.html", "products.html", "create_form.html", "edit_form.html", "error.html"} {
		pages[name] = template.Must(
			template.New(name).Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name),
		)
	}
}

// page carries what the layout needs on every page.
type page struct {
	CurrentUser *models.User
	Error       string
}

// renderTemplate executes the named page inside the layout. Output is
// buffered so a template error still yields a clean 500.
func renderTemplate(w http.ResponseWriter, status int, name string, data any) {
	t, ok := pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("template execute", "template", name, "error", err)
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
