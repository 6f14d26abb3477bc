package spacetraveling

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pejamp/spacetraveling/blog"
	"github.com/pejamp/spacetraveling/i18n"
	"github.com/pejamp/spacetraveling/prismic"
	"github.com/pejamp/spacetraveling/views"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		feed blog.Feed
		err  error
	)
	if ref := PreviewRef(c); ref != "" {
		feed, err = a.Blog.FirstPage(ctx, ref)
	} else {
		feed, err = a.Cache.Home(ctx)
	}
	if err != nil {
		return err
	}
	return Render(c, views.Home(views.HomePage{
		Page: a.page(c, views.PageMeta{Title: a.L.T(i18n.KeyPostsTitle)}),
		Feed: feed,
	}))
}

// handleMore serves the next listing page as an HTML fragment for the
// "load more" button.
func (a *App) handleMore(c echo.Context) error {
	if !a.limiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}
	cursor := c.QueryParam("cursor")
	if cursor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing cursor")
	}
	feed, err := a.Blog.NextPage(c.Request().Context(), cursor)
	if err != nil {
		if errors.Is(err, prismic.ErrForeignCursor) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor")
		}
		return err
	}
	return Render(c, views.PostsPartial(a.L, feed))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	var (
		page PostPage
		err  error
	)
	if ref := PreviewRef(c); ref != "" {
		page, err = LoadPostPage(ctx, a.Blog, slug, ref)
	} else {
		page, err = a.Cache.Post(ctx, slug)
	}
	if err != nil {
		if errors.Is(err, prismic.ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	meta := views.PageMeta{
		Title:       page.Post.Title,
		Description: page.Post.Subtitle,
		OGType:      "article",
		Image:       page.Post.BannerURL,
	}
	return Render(c, views.Post(views.PostPage{
		Page:        a.page(c, meta),
		Post:        page.Post,
		ReadingTime: page.ReadingTime,
		Adjacency:   page.Adjacency,
	}))
}

// handlePreview enters preview mode with the ref given by the CMS and
// redirects to the previewed document.
func (a *App) handlePreview(c echo.Context) error {
	if !a.limiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}
	ref := c.QueryParam("token")
	if ref == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing preview token")
	}
	uid, err := a.Blog.ResolvePreview(c.Request().Context(), c.QueryParam("documentId"), ref)
	if err != nil {
		return err
	}
	if err := setPreviewSession(c, ref); err != nil {
		return err
	}
	location := "/"
	if uid != "" {
		location = blog.PostPath(uid)
	}
	return c.Redirect(http.StatusTemporaryRedirect, location)
}

func (a *App) handleExitPreview(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, localRedirect(c.QueryParam("redirect")))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	sitemap := strings.TrimSuffix(a.Config.URL, "/") + "/sitemap.xml"
	return c.String(http.StatusOK, fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s\n", sitemap))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

// handleAPI and handleSearch expose the local repository with the same
// contract as the remote document API.
func (a *App) handleAPI(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Store.API())
}

func (a *App) handleSearch(c echo.Context) error {
	resp, err := a.Store.Search(c.Request().Context(), c.QueryParams())
	if err != nil {
		if errors.Is(err, ErrBadQuery) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) renderNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, views.NotFound(a.page(c, views.PageMeta{})))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError(a.page(c, views.PageMeta{})))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// localRedirect returns target when it is a path on this site, "/" otherwise.
func localRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
