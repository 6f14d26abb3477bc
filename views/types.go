package views

import (
	"github.com/pejamp/spacetraveling/blog"
	"github.com/pejamp/spacetraveling/i18n"
)

// SiteConfig holds the site-wide settings templates read.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	Comments    CommentsConfig
}

// CommentsConfig configures the utterances widget.
type CommentsConfig struct {
	Repo      string
	Theme     string
	IssueTerm string
	Label     string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Preview describes the preview session of the current request.
type Preview struct {
	Active  bool
	ExitURL string
}

// Page is the data every full page shares.
type Page struct {
	Site    SiteConfig
	L       *i18n.Localizer
	Meta    PageMeta
	Preview Preview
}

// HomePage is the listing page.
type HomePage struct {
	Page
	Feed blog.Feed
}

// PostPage is the article page.
type PostPage struct {
	Page
	Post        blog.PostDetail
	ReadingTime int
	Adjacency   blog.Adjacency
}
