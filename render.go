package spacetraveling

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pejamp/spacetraveling/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// page builds the layout data shared by every HTML response.
func (a *App) page(c echo.Context, meta views.PageMeta) views.Page {
	if meta.Title == "" {
		meta.Title = a.Config.Name
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	if meta.URL == "" {
		meta.URL = strings.TrimSuffix(a.Config.URL, "/") + c.Request().URL.Path
	}
	p := views.Page{
		Site: a.siteView(),
		L:    a.L,
		Meta: meta,
	}
	if PreviewRef(c) != "" {
		p.Preview = views.Preview{
			Active:  true,
			ExitURL: "/api/exit-preview?redirect=" + url.QueryEscape(c.Request().URL.RequestURI()),
		}
	}
	return p
}

func (a *App) siteView() views.SiteConfig {
	s := views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
	if !a.Config.Comments.Disabled {
		s.Comments = views.CommentsConfig{
			Repo:      a.Config.Comments.Repo,
			Theme:     a.Config.Comments.Theme,
			IssueTerm: a.Config.Comments.IssueTerm,
			Label:     a.Config.Comments.Label,
		}
	}
	return s
}
