// Package views renders the site's pages. Templates are embedded
// html/template files exposed as templ components.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/pejamp/spacetraveling/blog"
	"github.com/pejamp/spacetraveling/i18n"
	"github.com/pejamp/spacetraveling/richtext"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"richtext": func(rt richtext.RichText) template.HTML {
		// AsHTML escapes all content and filters link schemes.
		return template.HTML(richtext.AsHTML(rt, blog.ResolveLink))
	},
	"postPath":      blog.PostPath,
	"websiteJSONLD": WebsiteJSONLD,
	"postingJSONLD": BlogPostingJSONLD,
}

var pages = mustParse("home.html", "post.html", "status.html")

// mustParse builds one template set per page, each combining the shared
// layout and partials with the page's own blocks.
func mustParse(names ...string) map[string]*template.Template {
	base := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html"))
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(base.Clone())
		out[name] = template.Must(t.ParseFS(templateFS, "templates/"+name))
	}
	return out
}

func execute(page, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages[page].ExecuteTemplate(w, name, data)
	})
}

// Home renders the listing page.
func Home(data HomePage) templ.Component {
	return execute("home.html", "layout", data)
}

// PostsPartial renders the entries appended by "load more" and, when
// another page exists, a fresh button carrying the next cursor.
func PostsPartial(l *i18n.Localizer, feed blog.Feed) templ.Component {
	return execute("home.html", "posts", struct {
		L    *i18n.Localizer
		Feed blog.Feed
	}{l, feed})
}

// Post renders an article page.
func Post(data PostPage) templ.Component {
	return execute("post.html", "layout", data)
}

type statusPage struct {
	Page
	Heading string
	Body    string
}

// NotFound renders the 404 page.
func NotFound(p Page) templ.Component {
	p.Meta.Title = p.L.T(i18n.KeyNotFound)
	return execute("status.html", "layout", statusPage{Page: p, Heading: p.L.T(i18n.KeyNotFound), Body: p.L.T(i18n.KeyNotFoundBody)})
}

// ServerError renders the 5xx page.
func ServerError(p Page) templ.Component {
	p.Meta.Title = p.L.T(i18n.KeyServerError)
	return execute("status.html", "layout", statusPage{Page: p, Heading: p.L.T(i18n.KeyServerError), Body: p.L.T(i18n.KeyServerErrBody)})
}
