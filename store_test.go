package spacetraveling

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pejamp/spacetraveling/blog"
	"github.com/pejamp/spacetraveling/prismic"
)

const testBaseURL = "http://localhost:3000"

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "content.db"), testBaseURL)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := setupTestStore(t)
	docs, err := LoadSeedFile(filepath.Join("testdata", "posts.json"))
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	if err := s.Seed(context.Background(), docs); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return s
}

func typePosts() []prismic.Predicate {
	return []prismic.Predicate{prismic.At(prismic.PathType, "posts")}
}

func TestStorePagingFollowsCursors(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	resp, err := s.Query(ctx, typePosts(), prismic.QueryOptions{PageSize: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp.TotalPages != 3 || resp.TotalResultsSize != 3 || resp.Page != 1 {
		t.Fatalf("paging = page %d of %d (%d results)", resp.Page, resp.TotalPages, resp.TotalResultsSize)
	}
	if len(resp.Results) != 1 || resp.Results[0].UID != "como-utilizar-hooks" {
		t.Fatalf("first page = %+v", resp.Results)
	}
	if resp.PrevPage != nil {
		t.Errorf("first page should have no prev_page")
	}

	var uids []string
	uids = append(uids, resp.Results[0].UID)
	for resp.Next() != "" {
		u, err := url.Parse(resp.Next())
		if err != nil {
			t.Fatalf("parse cursor: %v", err)
		}
		if u.Host != "localhost:3000" || u.Path != SearchPath {
			t.Fatalf("cursor %q does not point at the local search endpoint", resp.Next())
		}
		resp, err = s.FetchPage(ctx, resp.Next())
		if err != nil {
			t.Fatalf("FetchPage: %v", err)
		}
		for _, d := range resp.Results {
			uids = append(uids, d.UID)
		}
	}
	want := []string{"como-utilizar-hooks", "criando-um-app-cra-do-zero", "descobrindo-o-go"}
	if len(uids) != len(want) {
		t.Fatalf("uids = %v, want %v", uids, want)
	}
	for i := range want {
		if uids[i] != want[i] {
			t.Errorf("uids[%d] = %q, want %q", i, uids[i], want[i])
		}
	}
}

func TestStoreFetchProjection(t *testing.T) {
	s := seededStore(t)

	resp, err := s.Query(context.Background(), typePosts(), prismic.QueryOptions{
		PageSize: 1,
		Fetch:    []string{"posts.title", "posts.author"},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(resp.Results[0].Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data) != 2 || data["title"] == nil || data["author"] == nil {
		t.Errorf("projected data = %s", resp.Results[0].Data)
	}

	next, err := url.Parse(resp.Next())
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if got := next.Query().Get("fetch"); got != "posts.title,posts.author" {
		t.Errorf("cursor fetch = %q", got)
	}
}

func TestStoreDatesRoundTrip(t *testing.T) {
	s := seededStore(t)

	doc, err := s.GetByUID(context.Background(), "posts", "criando-um-app-cra-do-zero", prismic.QueryOptions{})
	if err != nil {
		t.Fatalf("GetByUID: %v", err)
	}
	first := time.Date(2021, 3, 19, 19, 25, 28, 0, time.UTC)
	last := time.Date(2021, 3, 25, 10, 2, 11, 0, time.UTC)
	if doc.FirstPublicationDate == nil || !doc.FirstPublicationDate.Equal(first) {
		t.Errorf("first_publication_date = %v, want %v", doc.FirstPublicationDate, first)
	}
	if doc.LastPublicationDate == nil || !doc.LastPublicationDate.Equal(last) {
		t.Errorf("last_publication_date = %v, want %v", doc.LastPublicationDate, last)
	}
	if doc.ID != "YFzPtBIAACMAm0jc" {
		t.Errorf("ID = %q", doc.ID)
	}
}

func TestStoreGetByUIDNotFound(t *testing.T) {
	s := seededStore(t)

	_, err := s.GetByUID(context.Background(), "posts", "hello-world", prismic.QueryOptions{})
	if !errors.Is(err, prismic.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreDateOrderingFindsNeighbours(t *testing.T) {
	s := seededStore(t)
	svc := blog.NewService(s, "posts", 1)

	middle := time.Date(2021, 3, 19, 19, 25, 28, 0, time.UTC)
	adj, err := svc.Adjacent(context.Background(), &middle, "")
	if err != nil {
		t.Fatalf("Adjacent: %v", err)
	}
	if adj.Prev == nil || adj.Prev.UID != "como-utilizar-hooks" {
		t.Errorf("Prev = %+v, want como-utilizar-hooks", adj.Prev)
	}
	if adj.Next == nil || adj.Next.UID != "descobrindo-o-go" {
		t.Errorf("Next = %+v, want descobrindo-o-go", adj.Next)
	}

	last := time.Date(2021, 3, 25, 19, 25, 28, 0, time.UTC)
	adj, err = svc.Adjacent(context.Background(), &last, "")
	if err != nil {
		t.Fatalf("Adjacent: %v", err)
	}
	if adj.Prev == nil || adj.Prev.UID != "criando-um-app-cra-do-zero" {
		t.Errorf("Prev = %+v, want criando-um-app-cra-do-zero", adj.Prev)
	}
	if adj.Next != nil {
		t.Errorf("Next = %+v, want nil", adj.Next)
	}
}

func TestStoreServiceWalksAllPosts(t *testing.T) {
	s := seededStore(t)
	svc := blog.NewService(s, "posts", 2)

	posts, err := svc.AllPosts(context.Background(), "")
	if err != nil {
		t.Fatalf("AllPosts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	if posts[2].Title != "Descobrindo o Go" || posts[2].Author != "Ana Souza" {
		t.Errorf("last post = %+v", posts[2])
	}
}

func TestStoreRejectsForeignCursor(t *testing.T) {
	s := seededStore(t)

	for _, cursor := range []string{
		"https://evil.example/api/v2/documents/search?q=%5B%5D",
		"http://localhost:3000/somewhere-else?q=%5B%5D",
		"https://localhost:3000/api/v2/documents/search?q=%5B%5D",
	} {
		if _, err := s.FetchPage(context.Background(), cursor); !errors.Is(err, prismic.ErrForeignCursor) {
			t.Errorf("FetchPage(%q) err = %v, want ErrForeignCursor", cursor, err)
		}
	}
}

func TestStoreSearchBadQuery(t *testing.T) {
	s := seededStore(t)

	for _, v := range []url.Values{
		{"q": {"not a query"}},
		{"q": {`[[at(document.tags,"go")]]`}},
		{"q": {"[]"}, "pageSize": {"-1"}},
		{"q": {"[]"}, "orderings": {"[my.posts.title]"}},
	} {
		if _, err := s.Search(context.Background(), v); !errors.Is(err, ErrBadQuery) {
			t.Errorf("Search(%v) err = %v, want ErrBadQuery", v, err)
		}
	}
}

func TestStoreSeedUpsertsAndAssignsIDs(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	docs, err := LoadSeedFile(filepath.Join("testdata", "posts.json"))
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	docs[0].Data = json.RawMessage(`{"title":"Renamed"}`)
	if err := s.Seed(ctx, docs[:1]); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	if err := s.Seed(ctx, []prismic.Document{{UID: "new-post", Type: "posts"}}); err != nil {
		t.Fatalf("seed without id: %v", err)
	}

	resp, err := s.Query(ctx, typePosts(), prismic.QueryOptions{PageSize: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp.TotalResultsSize != 4 {
		t.Fatalf("total = %d, want 4", resp.TotalResultsSize)
	}
	if resp.Results[0].UID != "como-utilizar-hooks" || string(resp.Results[0].Data) != `{"title":"Renamed"}` {
		t.Errorf("upserted document = %s %s", resp.Results[0].UID, resp.Results[0].Data)
	}
	added := resp.Results[3]
	if _, err := uuid.Parse(added.ID); err != nil {
		t.Errorf("generated id %q is not a uuid: %v", added.ID, err)
	}
	if added.FirstPublicationDate != nil {
		t.Errorf("undated document got a date: %v", added.FirstPublicationDate)
	}
}

func TestStoreSeedRequiresType(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Seed(context.Background(), []prismic.Document{{UID: "x"}}); err == nil {
		t.Fatal("expected error for document without type")
	}
}
