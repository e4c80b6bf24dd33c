// Package render turns session state into HTML: the search page, the result
// fragment pushed to live pages, and the printable profile.
package render

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/rubiojr/stusearch/pkg/notify"
	"github.com/rubiojr/stusearch/pkg/student"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(
	template.New("stusearch").Funcs(withCSS(GetTemplateFuncs())).ParseFS(templatesFS, "templates/*.html"),
)

func withCSS(fm template.FuncMap) template.FuncMap {
	fm["safeCSS"] = func(s string) template.CSS { return template.CSS(s) }
	return fm
}

// PageData is passed to the full page template.
type PageData struct {
	Title   string
	Version string
	State   controller.State
}

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

// Page renders the whole search page.
func Page(data PageData) templ.Component {
	if data.Title == "" {
		data.Title = "Talabalar qidiruvi"
	}
	return component("page", data)
}

// App renders only the page body so live clients can swap it in place.
func App(s controller.State) templ.Component {
	return component("app", s)
}

// Notification renders a single banner.
func Notification(n notify.Notification) templ.Component {
	return component("notification", n)
}

// Print renders the standalone printable profile document.
func Print(p student.Profile) templ.Component {
	return component("print", p)
}
