// Package spacetraveling serves a blog whose posts live in a Prismic
// repository: a paged listing with "load more", post pages with reading
// time, neighbours and comments, and a CMS preview mode.
//
// Content comes from the remote document API or, for offline work, from a
// local SQLite repository that answers the same queries.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pejamp/spacetraveling/blog"
	"github.com/pejamp/spacetraveling/i18n"
	"github.com/pejamp/spacetraveling/prismic"
)

// App is the central application. It wires together the content backend,
// cache, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Blog   *blog.Service
	Cache  *PageCache
	Store  *Store // local repository, nil when serving the remote API
	L      *i18n.Localizer

	limiter    *RateLimiter
	backend    blog.Backend
	staticDir  string
	httpClient *http.Client
	ready      bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup validates the configuration, opens the content backend and
// registers middleware and routes. Start calls it; tests call it directly
// and drive a.Echo with httptest.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("spacetraveling: SessionSecret is required")
	}

	loc, err := time.LoadLocation(a.Config.TimeZone)
	if err != nil {
		return fmt.Errorf("spacetraveling: load time zone: %w", err)
	}
	a.L = i18n.New(a.Config.Locale, loc)

	if err := a.openBackend(); err != nil {
		return err
	}
	a.Blog = blog.NewService(a.backend, a.Config.DocumentType, a.Config.PageSize)
	a.Cache = NewPageCache(a.Blog, a.Config.Revalidate)
	a.limiter = NewRateLimiter(60, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	a.ready = true
	return nil
}

func (a *App) openBackend() error {
	if a.backend != nil {
		if s, ok := a.backend.(*Store); ok {
			a.Store = s
		}
		return nil
	}
	if a.Config.PrismicEndpoint != "" {
		opts := []prismic.ClientOption{prismic.WithTimeout(a.Config.HTTPTimeout)}
		if a.httpClient != nil {
			opts = append(opts, prismic.WithHTTPClient(a.httpClient))
		}
		client, err := prismic.NewClient(a.Config.PrismicEndpoint, a.Config.PrismicAccessToken, opts...)
		if err != nil {
			return fmt.Errorf("spacetraveling: init api client: %w", err)
		}
		a.backend = client
		return nil
	}
	store, err := NewStore(a.Config.LocalDatabasePath, a.Config.URL)
	if err != nil {
		return fmt.Errorf("spacetraveling: init store: %w", err)
	}
	a.Store = store
	a.backend = store
	return nil
}

// Start sets the app up, warms the page cache and serves until ctx is
// cancelled or the server fails.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(); err != nil {
		return err
	}

	if n, err := a.Cache.Warm(ctx, a.Config.WarmupWorkers); err != nil {
		// Pages are still rendered on demand.
		a.Echo.Logger.Warnf("cache warm-up failed: %v", err)
	} else {
		a.Echo.Logger.Infof("cache warmed with %d posts", n)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets, then the user's static dir for everything else.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "assets")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/app.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/style.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/more", a.handleMore)
	e.GET("/post/:slug/", a.handlePost)

	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/exit-preview", a.handleExitPreview)

	if a.Store != nil {
		e.GET(APIPath, a.handleAPI)
		e.GET(SearchPath, a.handleSearch)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
