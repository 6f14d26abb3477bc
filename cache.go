package spacetraveling

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pejamp/spacetraveling/blog"
	"github.com/pejamp/spacetraveling/prismic"
)

// PostPage is everything a post page needs besides the layout.
type PostPage struct {
	Post        blog.PostDetail
	ReadingTime int
	Adjacency   blog.Adjacency
}

type cacheEntry[T any] struct {
	value   T
	fetched time.Time
}

// PageCache is an in-memory cache of published listing and post data with
// a TTL. Preview requests never go through it.
type PageCache struct {
	mu      sync.RWMutex
	home    *cacheEntry[blog.Feed]
	all     *cacheEntry[[]blog.PostSummary]
	posts   map[string]cacheEntry[PostPage]
	missing map[string]time.Time
	ttl     time.Duration
	blog    *blog.Service
	now     func() time.Time
}

// NewPageCache creates a PageCache backed by the given Service.
func NewPageCache(s *blog.Service, ttl time.Duration) *PageCache {
	return &PageCache{
		blog:    s,
		ttl:     ttl,
		posts:   make(map[string]cacheEntry[PostPage]),
		missing: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (c *PageCache) fresh(fetched time.Time) bool {
	return c.now().Sub(fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.home = nil
	c.all = nil
	c.posts = make(map[string]cacheEntry[PostPage])
	c.missing = make(map[string]time.Time)
	c.mu.Unlock()
}

// Home returns the first listing page. The returned Feed shares no slice
// with the cache, so callers may extend it.
func (c *PageCache) Home(ctx context.Context) (blog.Feed, error) {
	c.mu.RLock()
	if e := c.home; e != nil && c.fresh(e.fetched) {
		feed := cloneFeed(e.value)
		c.mu.RUnlock()
		return feed, nil
	}
	c.mu.RUnlock()

	// Fetch outside the lock; concurrent misses may both fetch, the last
	// write wins.
	feed, err := c.blog.FirstPage(ctx, "")
	if err != nil {
		return blog.Feed{}, err
	}
	c.mu.Lock()
	c.home = &cacheEntry[blog.Feed]{value: feed, fetched: c.now()}
	c.mu.Unlock()
	return cloneFeed(feed), nil
}

// AllPosts returns every published post summary in listing order.
func (c *PageCache) AllPosts(ctx context.Context) ([]blog.PostSummary, error) {
	c.mu.RLock()
	if e := c.all; e != nil && c.fresh(e.fetched) {
		posts := e.value
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	posts, err := c.blog.AllPosts(ctx, "")
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.all = &cacheEntry[[]blog.PostSummary]{value: posts, fetched: c.now()}
	c.mu.Unlock()
	return posts, nil
}

// Post returns the page data for uid, or prismic.ErrNotFound. Unknown
// uids are remembered for one TTL so repeated misses do not hit the
// backend.
func (c *PageCache) Post(ctx context.Context, uid string) (PostPage, error) {
	c.mu.RLock()
	if e, ok := c.posts[uid]; ok && c.fresh(e.fetched) {
		c.mu.RUnlock()
		return e.value, nil
	}
	if at, ok := c.missing[uid]; ok && c.fresh(at) {
		c.mu.RUnlock()
		return PostPage{}, prismic.ErrNotFound
	}
	c.mu.RUnlock()

	page, err := LoadPostPage(ctx, c.blog, uid, "")
	if errors.Is(err, prismic.ErrNotFound) {
		c.mu.Lock()
		c.missing[uid] = c.now()
		c.mu.Unlock()
		return PostPage{}, err
	}
	if err != nil {
		return PostPage{}, err
	}
	c.mu.Lock()
	c.posts[uid] = cacheEntry[PostPage]{value: page, fetched: c.now()}
	delete(c.missing, uid)
	c.mu.Unlock()
	return page, nil
}

// Warm loads the listing and every post page, at most workers at a time.
// It returns the number of posts loaded.
func (c *PageCache) Warm(ctx context.Context, workers int) (int, error) {
	if _, err := c.Home(ctx); err != nil {
		return 0, err
	}
	posts, err := c.AllPosts(ctx)
	if err != nil {
		return 0, err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, p := range posts {
		if p.UID == "" {
			continue
		}
		g.Go(func() error {
			_, err := c.Post(ctx, p.UID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(posts), nil
}

// LoadPostPage fetches a post, its reading time and its neighbours under
// ref.
func LoadPostPage(ctx context.Context, s *blog.Service, uid, ref string) (PostPage, error) {
	post, err := s.GetPost(ctx, uid, ref)
	if err != nil {
		return PostPage{}, err
	}
	adj, err := s.Adjacent(ctx, post.FirstPublicationDate, ref)
	if err != nil {
		return PostPage{}, err
	}
	return PostPage{
		Post:        post,
		ReadingTime: blog.ReadingTime(post.Sections),
		Adjacency:   adj,
	}, nil
}

func cloneFeed(f blog.Feed) blog.Feed {
	f.Posts = append([]blog.PostSummary(nil), f.Posts...)
	return f
}
