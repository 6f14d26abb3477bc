package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeAPI serves a minimal repository with one master ref and records the
// last search query it received.
type fakeAPI struct {
	srv       *httptest.Server
	lastQuery map[string]string
	search    func(w http.ResponseWriter, r *http.Request)
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"refs":[{"id":"master","ref":"MASTER","label":"Master","isMasterRef":true}]}`))
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		f.lastQuery = map[string]string{}
		for k := range r.URL.Query() {
			f.lastQuery[k] = r.URL.Query().Get(k)
		}
		f.search(w, r)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) client(t *testing.T, token string) *Client {
	t.Helper()
	c, err := NewClient(f.srv.URL+"/api/v2", token)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRejectsRelativeEndpoint(t *testing.T) {
	if _, err := NewClient("/api/v2", ""); err == nil {
		t.Fatal("expected error for relative endpoint")
	}
}

func TestQueryEncodesParameters(t *testing.T) {
	f := newFakeAPI(t)
	f.search = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"results_per_page":1,"next_page":null,"results":[]}`))
	}
	c := f.client(t, "secret")

	_, err := c.Query(context.Background(), []Predicate{At(PathType, "posts")}, QueryOptions{
		Fetch:     []string{"posts.title", "posts.author"},
		PageSize:  1,
		Orderings: []Ordering{{Field: PathFirstPublicationDate, Desc: true}},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := map[string]string{
		"ref":          "MASTER",
		"q":            `[[at(document.type,"posts")]]`,
		"fetch":        "posts.title,posts.author",
		"pageSize":     "1",
		"orderings":    "[document.first_publication_date desc]",
		"access_token": "secret",
	}
	for k, v := range want {
		if f.lastQuery[k] != v {
			t.Errorf("param %s = %q, want %q", k, f.lastQuery[k], v)
		}
	}
}

func TestQueryUsesPreviewRef(t *testing.T) {
	f := newFakeAPI(t)
	f.search = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}
	c := f.client(t, "")
	if _, err := c.Query(context.Background(), nil, QueryOptions{Ref: "PREVIEW"}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if f.lastQuery["ref"] != "PREVIEW" {
		t.Errorf("ref = %q, want PREVIEW", f.lastQuery["ref"])
	}
	if _, ok := f.lastQuery["access_token"]; ok {
		t.Error("access_token should be omitted without a token")
	}
}

func TestQueryDecodesDocuments(t *testing.T) {
	f := newFakeAPI(t)
	f.search = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"page": 1,
			"next_page": "` + f.srv.URL + `/api/v2/documents/search?page=2",
			"results": [{
				"id": "X1", "uid": "hello-world", "type": "posts",
				"first_publication_date": "2021-03-25T19:25:28+0000",
				"last_publication_date": null,
				"data": {"title": "Hello"}
			}]
		}`))
	}
	resp, err := f.client(t, "").Query(context.Background(), nil, QueryOptions{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp.Next() != f.srv.URL+"/api/v2/documents/search?page=2" {
		t.Errorf("Next() = %q", resp.Next())
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	doc := resp.Results[0]
	want := time.Date(2021, 3, 25, 19, 25, 28, 0, time.UTC)
	if doc.FirstPublicationDate == nil || !doc.FirstPublicationDate.Equal(want) {
		t.Errorf("FirstPublicationDate = %v, want %v", doc.FirstPublicationDate, want)
	}
	if doc.LastPublicationDate != nil {
		t.Errorf("LastPublicationDate = %v, want nil", doc.LastPublicationDate)
	}
	var data struct {
		Title string `json:"title"`
	}
	if err := doc.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if data.Title != "Hello" {
		t.Errorf("Title = %q, want Hello", data.Title)
	}
}

func TestGetByUIDNotFound(t *testing.T) {
	f := newFakeAPI(t)
	f.search = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[],"next_page":null}`))
	}
	_, err := f.client(t, "").GetByUID(context.Background(), "posts", "hello-world", QueryOptions{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if f.lastQuery["q"] != `[[at(my.posts.uid,"hello-world")]]` {
		t.Errorf("q = %q", f.lastQuery["q"])
	}
	if f.lastQuery["pageSize"] != "1" {
		t.Errorf("pageSize = %q, want 1", f.lastQuery["pageSize"])
	}
}

func TestAPIErrorCarriesStatus(t *testing.T) {
	f := newFakeAPI(t)
	f.search = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad predicate"})
	}
	_, err := f.client(t, "").Query(context.Background(), nil, QueryOptions{Ref: "R"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "bad predicate" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestFetchPageFollowsCursor(t *testing.T) {
	f := newFakeAPI(t)
	f.search = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":2,"next_page":null,"results":[{"id":"B","uid":"b","type":"posts","data":{}}]}`))
	}
	c := f.client(t, "secret")
	resp, err := c.FetchPage(context.Background(), f.srv.URL+"/api/v2/documents/search?ref=MASTER&page=2")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if resp.Next() != "" || len(resp.Results) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if f.lastQuery["page"] != "2" || f.lastQuery["access_token"] != "secret" {
		t.Errorf("query = %v", f.lastQuery)
	}
}

func TestCursorsOmitAccessToken(t *testing.T) {
	f := newFakeAPI(t)
	f.search = func(w http.ResponseWriter, r *http.Request) {
		next := "http://" + r.Host + r.URL.Path + "?" + r.URL.RawQuery + "&page=9"
		json.NewEncoder(w).Encode(map[string]any{
			"page":      1,
			"next_page": next,
			"prev_page": next,
			"results":   []any{},
		})
	}
	c := f.client(t, "secret")
	ctx := context.Background()

	resp, err := c.Query(ctx, []Predicate{At(PathType, "posts")}, QueryOptions{PageSize: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, cur := range []string{resp.Next(), *resp.PrevPage} {
		if cur == "" || strings.Contains(cur, "secret") || strings.Contains(cur, "access_token") {
			t.Errorf("cursor = %q", cur)
		}
	}

	more, err := c.FetchPage(ctx, resp.Next())
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if f.lastQuery["access_token"] != "secret" {
		t.Errorf("FetchPage sent query %v without token", f.lastQuery)
	}
	if strings.Contains(more.Next(), "secret") {
		t.Errorf("next cursor = %q", more.Next())
	}
}

func TestFetchPageRejectsForeignHost(t *testing.T) {
	f := newFakeAPI(t)
	f.search = func(w http.ResponseWriter, r *http.Request) {
		t.Error("search should not be called")
	}
	_, err := f.client(t, "").FetchPage(context.Background(), "http://169.254.169.254/latest/meta-data")
	if !errors.Is(err, ErrForeignCursor) {
		t.Fatalf("err = %v, want ErrForeignCursor", err)
	}
}

func TestPredicateString(t *testing.T) {
	ts := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		p        Predicate
		expected string
	}{
		{At(PathType, "posts"), `[at(document.type,"posts")]`},
		{DateBefore(PathFirstPublicationDate, ts), "[date.before(document.first_publication_date,1609556645000)]"},
		{DateAfter(PathFirstPublicationDate, ts), "[date.after(document.first_publication_date,1609556645000)]"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
	if got := EncodeOrderings([]Ordering{{Field: "a"}, {Field: "b", Desc: true}}); got != "[a,b desc]" {
		t.Errorf("EncodeOrderings = %q", got)
	}
	if !strings.HasPrefix(EncodeQuery(nil), "[") {
		t.Error("EncodeQuery should wrap in brackets")
	}
}
