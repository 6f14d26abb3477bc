package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/pejamp/spacetraveling/blog"
	"github.com/pejamp/spacetraveling/i18n"
	"github.com/pejamp/spacetraveling/richtext"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testPage(preview bool) Page {
	p := Page{
		Site: SiteConfig{Name: "spacetraveling", URL: "http://localhost:3000"},
		L:    i18n.New("pt-BR", nil),
		Meta: PageMeta{Title: "Posts", OGType: "website"},
	}
	if preview {
		p.Preview = Preview{Active: true, ExitURL: "/api/exit-preview?redirect=%2F"}
	}
	return p
}

func TestHomeExitPreviewGate(t *testing.T) {
	off := renderString(t, Home(HomePage{Page: testPage(false)}))
	if strings.Contains(off, "exit-preview") || strings.Contains(off, "Sair do modo Preview") {
		t.Errorf("exit control rendered without preview:\n%s", off)
	}

	on := renderString(t, Home(HomePage{Page: testPage(true)}))
	if !strings.Contains(on, "Sair do modo Preview") {
		t.Errorf("exit control missing in preview:\n%s", on)
	}
	if !strings.Contains(on, `href="/api/exit-preview?redirect=%2F"`) {
		t.Errorf("exit link missing in preview:\n%s", on)
	}
}

func TestHomeListsPostsAndLoadMore(t *testing.T) {
	published := time.Date(2021, 3, 25, 19, 25, 28, 0, time.UTC)
	feed := blog.Feed{
		Posts: []blog.PostSummary{
			{UID: "como-utilizar-hooks", Title: "Como utilizar Hooks", Subtitle: "Pensando em sincronização", Author: "Joseph Oliveira", FirstPublicationDate: &published},
		},
		NextPage: "https://repo.cdn.prismic.io/api/v2/documents/search?page=2&pageSize=1",
	}
	out := renderString(t, Home(HomePage{Page: testPage(false), Feed: feed}))

	for _, want := range []string{
		`href="/post/como-utilizar-hooks/"`,
		"Como utilizar Hooks",
		"Pensando em sincronização",
		"Joseph Oliveira",
		"25 mar 2021",
		"Carregar mais posts",
		`data-cursor="https://repo.cdn.prismic.io/api/v2/documents/search?page=2&amp;pageSize=1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("home output missing %q", want)
		}
	}
}

func TestHomeHidesLoadMoreWithoutCursor(t *testing.T) {
	out := renderString(t, Home(HomePage{Page: testPage(false)}))
	if strings.Contains(out, "data-load-more") {
		t.Errorf("load more rendered without cursor")
	}
}

func TestPostsPartial(t *testing.T) {
	feed := blog.Feed{Posts: []blog.PostSummary{{UID: "a", Title: "A"}, {UID: "b", Title: "B"}}}
	out := renderString(t, PostsPartial(i18n.New("pt-BR", nil), feed))
	if strings.Count(out, `class="post-item"`) != 2 {
		t.Errorf("partial should contain two items:\n%s", out)
	}
	if strings.Contains(out, "<html") {
		t.Errorf("partial should not contain the layout")
	}
	if strings.Contains(out, "data-load-more") {
		t.Errorf("partial should not offer load more without cursor")
	}
}

func TestPostPage(t *testing.T) {
	first := time.Date(2021, 3, 25, 19, 25, 28, 0, time.UTC)
	last := first.Add(48 * time.Hour)
	post := blog.PostDetail{
		UID:                  "hello-world",
		Title:                "Hello <World>",
		Author:               "Ana",
		BannerURL:            "https://images.prismic.io/banner.png",
		FirstPublicationDate: &first,
		LastPublicationDate:  &last,
		Sections: []blog.Section{
			{Heading: "Intro", Body: richtext.RichText{{Type: richtext.Paragraph, Text: "Body text"}}},
		},
	}
	page := PostPage{
		Page:        testPage(false),
		Post:        post,
		ReadingTime: 4,
		Adjacency:   blog.Adjacency{Next: &blog.PostLink{UID: "next-one", Title: "Next One"}},
	}
	page.Site.Comments = CommentsConfig{Repo: "pejamp/spacetraveling-utterance-comments", Theme: "photon-dark", IssueTerm: "pathname", Label: "comment :speech_balloon:"}

	out := renderString(t, Post(page))
	for _, want := range []string{
		"Hello &lt;World&gt;",
		"4 min",
		"<h2>Intro</h2>",
		"<p>Body text</p>",
		"* editado em 27 mar 2021, às 19:25",
		`href="/post/next-one/" rel="next"`,
		`data-repo="pejamp/spacetraveling-utterance-comments"`,
		`data-theme="photon-dark"`,
		`"@type":"BlogPosting"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("post output missing %q", want)
		}
	}
	if strings.Contains(out, `rel="prev"`) {
		t.Errorf("previous link rendered without a previous post")
	}
}

func TestNotFoundPage(t *testing.T) {
	out := renderString(t, NotFound(testPage(false)))
	if !strings.Contains(out, "Post não encontrado") {
		t.Errorf("not found output:\n%s", out)
	}
}
