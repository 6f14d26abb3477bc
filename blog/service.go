package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pejamp/spacetraveling/prismic"
)

// DefaultDocumentType is the custom type holding blog posts.
const DefaultDocumentType = "posts"

// Backend is the content query surface the site depends on. Both the
// remote API client and the local SQLite repository implement it.
type Backend interface {
	PageFetcher
	Query(ctx context.Context, preds []prismic.Predicate, opts prismic.QueryOptions) (*prismic.Response, error)
	GetByUID(ctx context.Context, docType, uid string, opts prismic.QueryOptions) (*prismic.Document, error)
}

// Service runs the listing and article queries. The ref argument of each
// method selects preview content; "" means published content.
type Service struct {
	backend  Backend
	docType  string
	pageSize int
}

// NewService returns a Service querying docType in pages of pageSize.
func NewService(backend Backend, docType string, pageSize int) *Service {
	if docType == "" {
		docType = DefaultDocumentType
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return &Service{backend: backend, docType: docType, pageSize: pageSize}
}

// Backend returns the underlying content backend.
func (s *Service) Backend() Backend {
	return s.backend
}

func (s *Service) typePredicate() prismic.Predicate {
	return prismic.At(prismic.PathType, s.docType)
}

func (s *Service) field(name string) string {
	return s.docType + "." + name
}

// FirstPage returns the first listing page in the backend's default order.
func (s *Service) FirstPage(ctx context.Context, ref string) (Feed, error) {
	resp, err := s.backend.Query(ctx, []prismic.Predicate{s.typePredicate()}, prismic.QueryOptions{
		Ref:      ref,
		Fetch:    []string{s.field("title"), s.field("subtitle"), s.field("author")},
		PageSize: s.pageSize,
	})
	if err != nil {
		return Feed{}, fmt.Errorf("list posts: %w", err)
	}
	posts, next := ProjectSummaries(resp)
	return Feed{Posts: posts, NextPage: next}, nil
}

// NextPage loads the page behind cursor on its own, as the listing page
// does when the reader asks for more posts.
func (s *Service) NextPage(ctx context.Context, cursor string) (Feed, error) {
	feed := Feed{NextPage: cursor}
	if err := feed.LoadMore(ctx, s.backend); err != nil {
		return Feed{}, fmt.Errorf("load more posts: %w", err)
	}
	return feed, nil
}

// AllPosts walks every listing page by following cursors.
func (s *Service) AllPosts(ctx context.Context, ref string) ([]PostSummary, error) {
	feed, err := s.FirstPage(ctx, ref)
	if err != nil {
		return nil, err
	}
	for feed.HasMore() {
		if err := feed.LoadMore(ctx, s.backend); err != nil {
			return nil, fmt.Errorf("load more posts: %w", err)
		}
	}
	return feed.Posts, nil
}

// GetPost returns the article with the given uid, or prismic.ErrNotFound.
func (s *Service) GetPost(ctx context.Context, uid, ref string) (PostDetail, error) {
	doc, err := s.backend.GetByUID(ctx, s.docType, uid, prismic.QueryOptions{Ref: ref})
	if err != nil {
		if errors.Is(err, prismic.ErrNotFound) {
			return PostDetail{}, err
		}
		return PostDetail{}, fmt.Errorf("get post %q: %w", uid, err)
	}
	return ProjectDetail(doc), nil
}

// Adjacent resolves the posts published immediately before and after
// published. A nil timestamp has no neighbours.
func (s *Service) Adjacent(ctx context.Context, published *time.Time, ref string) (Adjacency, error) {
	var adj Adjacency
	if published == nil {
		return adj, nil
	}
	prev, err := s.neighbour(ctx, prismic.DateBefore(prismic.PathFirstPublicationDate, *published), true, ref)
	if err != nil {
		return Adjacency{}, fmt.Errorf("previous post: %w", err)
	}
	next, err := s.neighbour(ctx, prismic.DateAfter(prismic.PathFirstPublicationDate, *published), false, ref)
	if err != nil {
		return Adjacency{}, fmt.Errorf("next post: %w", err)
	}
	adj.Prev, adj.Next = prev, next
	return adj, nil
}

// neighbour returns the closest post matching the date predicate. For the
// previous post the ordering is reversed so the closest one comes first.
func (s *Service) neighbour(ctx context.Context, date prismic.Predicate, desc bool, ref string) (*PostLink, error) {
	resp, err := s.backend.Query(ctx, []prismic.Predicate{s.typePredicate(), date}, prismic.QueryOptions{
		Ref:       ref,
		Fetch:     []string{s.field("title")},
		PageSize:  1,
		Orderings: []prismic.Ordering{{Field: prismic.PathFirstPublicationDate, Desc: desc}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	posts, _ := ProjectSummaries(&prismic.Response{Results: resp.Results[:1]})
	return &PostLink{UID: posts[0].UID, Title: posts[0].Title}, nil
}

// ResolvePreview finds the uid of the document being previewed under ref.
// It returns "" when the document is not a post or does not exist.
func (s *Service) ResolvePreview(ctx context.Context, documentID, ref string) (string, error) {
	if documentID == "" {
		return "", nil
	}
	resp, err := s.backend.Query(ctx, []prismic.Predicate{prismic.At(prismic.PathID, documentID)}, prismic.QueryOptions{
		Ref:      ref,
		PageSize: 1,
	})
	if err != nil {
		return "", fmt.Errorf("resolve preview: %w", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].Type != s.docType {
		return "", nil
	}
	return resp.Results[0].UID, nil
}
