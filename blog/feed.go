package blog

import (
	"context"

	"github.com/pejamp/spacetraveling/prismic"
)

// PageFetcher follows a pagination cursor.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string) (*prismic.Response, error)
}

// Feed is the listing state of one page view: the posts shown so far and
// the cursor of the next page. It is never shared between requests.
type Feed struct {
	Posts    []PostSummary
	NextPage string
}

// HasMore reports whether another page can be loaded.
func (f *Feed) HasMore() bool {
	return f.NextPage != ""
}

// LoadMore fetches the page behind the current cursor, appends its posts and
// replaces the cursor with the one returned. Without a cursor it does
// nothing. On error the feed is left unchanged.
func (f *Feed) LoadMore(ctx context.Context, fetcher PageFetcher) error {
	if !f.HasMore() {
		return nil
	}
	resp, err := fetcher.FetchPage(ctx, f.NextPage)
	if err != nil {
		return err
	}
	posts, next := ProjectSummaries(resp)
	f.Posts = append(f.Posts, posts...)
	f.NextPage = next
	return nil
}
