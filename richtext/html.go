package richtext

import (
	"bytes"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LinkResolver maps a link to another document onto a site path.
type LinkResolver func(link LinkData) string

var headingTags = map[string]atom.Atom{
	Heading1: atom.H1,
	Heading2: atom.H2,
	Heading3: atom.H3,
	Heading4: atom.H4,
	Heading5: atom.H5,
	Heading6: atom.H6,
}

// AsHTML serializes rich text to HTML. All text and attribute values are
// escaped, links are limited to safe schemes, and embeds are reduced to a
// plain link; provider markup is never emitted.
func AsHTML(rt RichText, resolve LinkResolver) string {
	var buf bytes.Buffer
	if err := Render(&buf, rt, resolve); err != nil {
		return ""
	}
	return buf.String()
}

// Render writes the HTML serialization of rt to w.
func Render(w io.Writer, rt RichText, resolve LinkResolver) error {
	for _, n := range Nodes(rt, resolve) {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// Nodes builds the HTML node tree for rt. Consecutive list items are grouped
// into a single <ul> or <ol>.
func Nodes(rt RichText, resolve LinkResolver) []*html.Node {
	var out []*html.Node
	var list *html.Node
	for _, b := range rt {
		if b.Type == ListItem || b.Type == OListItem {
			tag := atom.Ul
			if b.Type == OListItem {
				tag = atom.Ol
			}
			if list == nil || list.DataAtom != tag {
				list = element(tag)
				out = append(out, list)
			}
			li := element(atom.Li)
			appendSpans(li, b, resolve)
			list.AppendChild(li)
			continue
		}
		list = nil

		switch b.Type {
		case Image:
			if n := imageNode(b, resolve); n != nil {
				out = append(out, n)
			}
		case Embed:
			if n := embedNode(b); n != nil {
				out = append(out, n)
			}
		case Preformatted:
			pre := element(atom.Pre)
			appendSpans(pre, b, resolve)
			out = append(out, pre)
		default:
			tag, ok := headingTags[b.Type]
			if !ok {
				tag = atom.P
			}
			n := element(tag)
			appendSpans(n, b, resolve)
			out = append(out, n)
		}
	}
	return out
}

func imageNode(b Block, resolve LinkResolver) *html.Node {
	src := safeURL(b.URL)
	if src == "" {
		return nil
	}
	attrs := []html.Attribute{{Key: "src", Val: src}, {Key: "alt", Val: b.Alt}}
	if b.Dimensions != nil {
		attrs = append(attrs,
			html.Attribute{Key: "width", Val: strconv.Itoa(b.Dimensions.Width)},
			html.Attribute{Key: "height", Val: strconv.Itoa(b.Dimensions.Height)},
		)
	}
	attrs = append(attrs, html.Attribute{Key: "loading", Val: "lazy"})
	img := element(atom.Img, attrs...)

	p := element(atom.P, html.Attribute{Key: "class", Val: "block-img"})
	if b.LinkTo != nil {
		if a := anchor(b.LinkTo, resolve); a != nil {
			a.AppendChild(img)
			p.AppendChild(a)
			return p
		}
	}
	p.AppendChild(img)
	return p
}

func embedNode(b Block) *html.Node {
	if b.Oembed == nil {
		return nil
	}
	href := safeURL(b.Oembed.EmbedURL)
	if href == "" {
		return nil
	}
	div := element(atom.Div,
		html.Attribute{Key: "data-oembed", Val: href},
		html.Attribute{Key: "data-oembed-type", Val: b.Oembed.Type},
	)
	a := element(atom.A,
		html.Attribute{Key: "href", Val: href},
		html.Attribute{Key: "target", Val: "_blank"},
		html.Attribute{Key: "rel", Val: "noopener noreferrer"},
	)
	label := b.Oembed.Title
	if label == "" {
		label = href
	}
	appendText(a, label)
	div.AppendChild(a)
	return div
}

// appendSpans renders the block's text under parent, nesting span elements.
// Spans are ordered by start, widest first; a span that overlaps the end of
// its enclosing span is clipped to it.
func appendSpans(parent *html.Node, b Block, resolve LinkResolver) {
	units := utf16.Encode([]rune(b.Text))
	spans := make([]Span, len(b.Spans))
	copy(spans, b.Spans)
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
	inline(parent, units, 0, len(units), spans, resolve)
}

func inline(parent *html.Node, units []uint16, start, end int, spans []Span, resolve LinkResolver) {
	pos := start
	for len(spans) > 0 {
		s := spans[0]
		spans = spans[1:]
		sStart, sEnd := max(s.Start, pos), min(s.End, end)
		if sStart >= sEnd {
			continue
		}
		var inner []Span
		for len(spans) > 0 && spans[0].Start < sEnd {
			inner = append(inner, spans[0])
			spans = spans[1:]
		}
		appendText(parent, utf16Slice(units, pos, sStart))
		el := spanElement(s, resolve)
		parent.AppendChild(el)
		inline(el, units, sStart, sEnd, inner, resolve)
		pos = sEnd
	}
	appendText(parent, utf16Slice(units, pos, end))
}

func spanElement(s Span, resolve LinkResolver) *html.Node {
	switch s.Type {
	case Strong:
		return element(atom.Strong)
	case Em:
		return element(atom.Em)
	case Hyperlink:
		if a := anchor(s.Data, resolve); a != nil {
			return a
		}
	case Label:
		if s.Data != nil && s.Data.Label != "" {
			return element(atom.Span, html.Attribute{Key: "class", Val: s.Data.Label})
		}
	}
	return element(atom.Span)
}

func anchor(link *LinkData, resolve LinkResolver) *html.Node {
	if link == nil {
		return nil
	}
	var href string
	switch link.LinkType {
	case "Document":
		if resolve != nil {
			href = safeURL(resolve(*link))
		}
	default:
		href = safeURL(link.URL)
	}
	if href == "" {
		return nil
	}
	attrs := []html.Attribute{{Key: "href", Val: href}}
	if link.Target != "" {
		attrs = append(attrs,
			html.Attribute{Key: "target", Val: link.Target},
			html.Attribute{Key: "rel", Val: "noopener noreferrer"},
		)
	}
	return element(atom.A, attrs...)
}

// appendText adds text to parent, turning line breaks into <br>.
func appendText(parent *html.Node, text string) {
	if text == "" {
		return
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			parent.AppendChild(element(atom.Br))
		}
		if line != "" {
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		}
	}
}

func element(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String(), Attr: attrs}
}

// safeURL returns raw if it is a relative path, a fragment, or an absolute
// URL with an allowed scheme, and "" otherwise.
func safeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		if strings.HasPrefix(val, "//") {
			return ""
		}
		return val
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return val
	default:
		return ""
	}
}
