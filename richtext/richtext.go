// Package richtext models Prismic structured text and serializes it to plain
// text or sanitized HTML.
package richtext

import (
	"strings"
	"unicode/utf16"
)

// Block types.
const (
	Heading1     = "heading1"
	Heading2     = "heading2"
	Heading3     = "heading3"
	Heading4     = "heading4"
	Heading5     = "heading5"
	Heading6     = "heading6"
	Paragraph    = "paragraph"
	Preformatted = "preformatted"
	ListItem     = "list-item"
	OListItem    = "o-list-item"
	Image        = "image"
	Embed        = "embed"
)

// Span types.
const (
	Strong    = "strong"
	Em        = "em"
	Hyperlink = "hyperlink"
	Label     = "label"
)

// RichText is an ordered sequence of blocks as returned by the content API.
type RichText []Block

// Block is one structured-text element. Text blocks carry Text and Spans;
// image and embed blocks carry their media fields instead.
type Block struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Spans []Span `json:"spans"`

	URL        string      `json:"url,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	LinkTo     *LinkData   `json:"linkTo,omitempty"`

	Oembed *Oembed `json:"oembed,omitempty"`
}

// Span marks a range of a block's text. Start and End are UTF-16 offsets.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *LinkData `json:"data,omitempty"`
}

// LinkData is the payload of hyperlink spans and linked images.
type LinkData struct {
	LinkType string `json:"link_type"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	ID       string `json:"id,omitempty"`
	UID      string `json:"uid,omitempty"`
	Type     string `json:"type,omitempty"`
	Label    string `json:"label,omitempty"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Oembed struct {
	Type     string `json:"type"`
	EmbedURL string `json:"embed_url"`
	Title    string `json:"title,omitempty"`
}

// AsText flattens rich text to plain text, joining block texts with sep.
// Media blocks contribute nothing.
func AsText(rt RichText, sep string) string {
	parts := make([]string, 0, len(rt))
	for _, b := range rt {
		if b.Type == Image || b.Type == Embed {
			continue
		}
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, sep)
}

// utf16Slice returns text[start:end] where the bounds are UTF-16 offsets,
// clamped to the text length.
func utf16Slice(units []uint16, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(units) {
		end = len(units)
	}
	if start >= end {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}
