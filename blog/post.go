// Package blog turns content-API documents into the posts the site renders:
// listing summaries, full articles, reading time, and previous/next links.
package blog

import (
	"time"

	"github.com/pejamp/spacetraveling/prismic"
	"github.com/pejamp/spacetraveling/richtext"
)

// PostSummary is one entry of the listing page.
type PostSummary struct {
	UID                  string
	FirstPublicationDate *time.Time
	Title                string
	Subtitle             string
	Author               string
}

// Section is a titled block of article content.
type Section struct {
	Heading string
	Body    richtext.RichText
}

// PostDetail is a full article.
type PostDetail struct {
	UID                  string
	FirstPublicationDate *time.Time
	LastPublicationDate  *time.Time
	Title                string
	Subtitle             string
	BannerURL            string
	BannerAlt            string
	Author               string
	Sections             []Section
}

// Edited reports whether the post was republished after its first publication.
func (p PostDetail) Edited() bool {
	if p.FirstPublicationDate == nil || p.LastPublicationDate == nil {
		return false
	}
	return !p.LastPublicationDate.Equal(*p.FirstPublicationDate)
}

// PostLink points at a neighbouring post.
type PostLink struct {
	UID   string
	Title string
}

// Adjacency holds the posts published immediately before and after a post.
// Either side is nil when no such post exists.
type Adjacency struct {
	Prev *PostLink
	Next *PostLink
}

// postFields mirrors the custom type's data.
type postFields struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
	Banner   struct {
		URL string `json:"url"`
		Alt string `json:"alt"`
	} `json:"banner"`
	Content []postSection `json:"content"`
}

type postSection struct {
	Heading string            `json:"heading"`
	Body    richtext.RichText `json:"body"`
}

func timePtr(t *prismic.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
