package spacetraveling

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pejamp/spacetraveling/prismic"
)

// Paths where the local repository serves the document API.
const (
	APIPath    = "/api/v2"
	SearchPath = APIPath + "/documents/search"
)

// MasterRef is the single ref of the local repository.
const MasterRef = "master"

const defaultPageSize = 20

// Store is a local content repository backed by SQLite. It answers the same
// queries as the remote API and mints its own cursor URLs, so the site runs
// offline against seeded documents.
type Store struct {
	db      *sql.DB
	baseURL *url.URL
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations. Cursors point at baseURL.
func NewStore(path, baseURL string) (*Store, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("store: parse base url: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets page renders read while a seed writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, baseURL: base}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    uid TEXT,
    type TEXT NOT NULL,
    lang TEXT NOT NULL DEFAULT 'pt-br',
    tags TEXT NOT NULL DEFAULT '',
    first_publication_date INTEGER,
    last_publication_date INTEGER,
    data TEXT NOT NULL DEFAULT '{}'
);
CREATE UNIQUE INDEX IF NOT EXISTS documents_type_uid ON documents(type, uid);
CREATE INDEX IF NOT EXISTS documents_type_published ON documents(type, first_publication_date);
`)
	return err
}

// Seed upserts documents. Documents without an id get a random one;
// existing documents keep their position in the default ordering.
func (s *Store) Seed(ctx context.Context, docs []prismic.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO documents (id, uid, type, lang, tags, first_publication_date, last_publication_date, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    uid = excluded.uid,
    type = excluded.type,
    lang = excluded.lang,
    tags = excluded.tags,
    first_publication_date = excluded.first_publication_date,
    last_publication_date = excluded.last_publication_date,
    data = excluded.data`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		if d.Type == "" {
			return fmt.Errorf("store: document %q has no type", d.ID)
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.Lang == "" {
			d.Lang = "pt-br"
		}
		data := string(d.Data)
		if data == "" {
			data = "{}"
		}
		var uid any
		if d.UID != "" {
			uid = d.UID
		}
		if _, err := stmt.ExecContext(ctx, d.ID, uid, d.Type, d.Lang, strings.Join(d.Tags, ","),
			millis(d.FirstPublicationDate), millis(d.LastPublicationDate), data); err != nil {
			return fmt.Errorf("store: save document %q: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// LoadSeedFile reads a JSON array of documents in the API's format.
func LoadSeedFile(path string) ([]prismic.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []prismic.Document
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return docs, nil
}

// API describes the local repository: one master ref.
func (s *Store) API() prismic.API {
	return prismic.API{Refs: []prismic.Ref{{ID: MasterRef, Ref: MasterRef, Label: "Master", IsMasterRef: true}}}
}

// Query runs a search. The ref is accepted but ignored: the local
// repository has a single release.
func (s *Store) Query(ctx context.Context, preds []prismic.Predicate, opts prismic.QueryOptions) (*prismic.Response, error) {
	where, args, err := whereClause(preds)
	if err != nil {
		return nil, err
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	order, err := orderClause(opts.Orderings)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, uid, type, lang, tags, first_publication_date, last_publication_date, data FROM documents` +
		where + order + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []prismic.Document{}
	for rows.Next() {
		var (
			d           prismic.Document
			uid         sql.NullString
			tags, data  string
			first, last sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &uid, &d.Type, &d.Lang, &tags, &first, &last, &data); err != nil {
			return nil, err
		}
		d.UID = uid.String
		d.Tags = splitTags(tags)
		d.FirstPublicationDate = fromMillis(first)
		d.LastPublicationDate = fromMillis(last)
		d.Data = projectFields(d.Type, json.RawMessage(data), opts.Fetch)
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	resp := &prismic.Response{
		Page:             page,
		ResultsPerPage:   pageSize,
		ResultsSize:      len(results),
		TotalResultsSize: total,
		TotalPages:       totalPages,
		Results:          results,
	}
	if page < totalPages {
		next := s.cursor(preds, opts, pageSize, page+1)
		resp.NextPage = &next
	}
	if page > 1 {
		prev := s.cursor(preds, opts, pageSize, page-1)
		resp.PrevPage = &prev
	}
	return resp, nil
}

// GetByUID returns the document of docType with the given uid, or
// prismic.ErrNotFound.
func (s *Store) GetByUID(ctx context.Context, docType, uid string, opts prismic.QueryOptions) (*prismic.Document, error) {
	opts.PageSize = 1
	opts.Page = 1
	resp, err := s.Query(ctx, []prismic.Predicate{prismic.At(prismic.UIDPath(docType), uid)}, opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, prismic.ErrNotFound
	}
	return &resp.Results[0], nil
}

// FetchPage follows a cursor minted by this store.
func (s *Store) FetchPage(ctx context.Context, cursor string) (*prismic.Response, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return nil, fmt.Errorf("store: parse cursor: %w", err)
	}
	if !sameOrigin(cursor, s.baseURL) || u.Path != s.baseURL.Path+SearchPath {
		return nil, prismic.ErrForeignCursor
	}
	return s.Search(ctx, u.Query())
}

// Search answers a query expressed as search endpoint parameters.
func (s *Store) Search(ctx context.Context, v url.Values) (*prismic.Response, error) {
	var preds []prismic.Predicate
	var err error
	if q := v.Get("q"); q != "" {
		if preds, err = prismic.ParseQuery(q); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadQuery, err)
		}
	}
	opts := prismic.QueryOptions{
		Ref:       v.Get("ref"),
		Orderings: prismic.ParseOrderings(v.Get("orderings")),
	}
	if f := v.Get("fetch"); f != "" {
		opts.Fetch = strings.Split(f, ",")
	}
	if opts.PageSize, err = intParam(v, "pageSize"); err != nil {
		return nil, err
	}
	if opts.Page, err = intParam(v, "page"); err != nil {
		return nil, err
	}
	return s.Query(ctx, preds, opts)
}

func (s *Store) cursor(preds []prismic.Predicate, opts prismic.QueryOptions, pageSize, page int) string {
	v := url.Values{}
	v.Set("q", prismic.EncodeQuery(preds))
	v.Set("pageSize", strconv.Itoa(pageSize))
	v.Set("page", strconv.Itoa(page))
	if opts.Ref != "" {
		v.Set("ref", opts.Ref)
	}
	if len(opts.Fetch) > 0 {
		v.Set("fetch", strings.Join(opts.Fetch, ","))
	}
	if len(opts.Orderings) > 0 {
		v.Set("orderings", prismic.EncodeOrderings(opts.Orderings))
	}
	u := *s.baseURL
	u.Path += SearchPath
	u.RawQuery = v.Encode()
	return u.String()
}

// ErrBadQuery is returned for queries the local repository cannot parse
// or answer.
var ErrBadQuery = errors.New("store: bad query")

func whereClause(preds []prismic.Predicate) (string, []any, error) {
	var conds []string
	var args []any
	for _, p := range preds {
		switch {
		case p.Op == prismic.OpAt && p.Path == prismic.PathType:
			conds = append(conds, "type = ?")
			args = append(args, p.Value)
		case p.Op == prismic.OpAt && p.Path == prismic.PathID:
			conds = append(conds, "id = ?")
			args = append(args, p.Value)
		case p.Op == prismic.OpAt && strings.HasPrefix(p.Path, "my.") && strings.HasSuffix(p.Path, ".uid"):
			conds = append(conds, "type = ? AND uid = ?")
			args = append(args, strings.TrimSuffix(strings.TrimPrefix(p.Path, "my."), ".uid"), p.Value)
		case (p.Op == prismic.OpDateBefore || p.Op == prismic.OpDateAfter) && p.Path == prismic.PathFirstPublicationDate:
			t, ok := p.Value.(time.Time)
			if !ok {
				return "", nil, fmt.Errorf("%w: %s needs a time value", ErrBadQuery, p)
			}
			op := "<"
			if p.Op == prismic.OpDateAfter {
				op = ">"
			}
			conds = append(conds, "first_publication_date "+op+" ?")
			args = append(args, t.UnixMilli())
		default:
			return "", nil, fmt.Errorf("%w: %s", ErrBadQuery, p)
		}
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func orderClause(orderings []prismic.Ordering) (string, error) {
	var parts []string
	for _, o := range orderings {
		if o.Field != prismic.PathFirstPublicationDate {
			return "", fmt.Errorf("%w: ordering on %s", ErrBadQuery, o.Field)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, "first_publication_date "+dir)
	}
	// rowid is the default order: seeding order.
	parts = append(parts, "rowid ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// projectFields keeps only the data fields named in fetch ("type.field").
func projectFields(docType string, data json.RawMessage, fetch []string) json.RawMessage {
	if len(fetch) == 0 {
		return data
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return data
	}
	keep := make(map[string]json.RawMessage)
	for _, f := range fetch {
		name, ok := strings.CutPrefix(f, docType+".")
		if !ok {
			continue
		}
		if v, ok := fields[name]; ok {
			keep[name] = v
		}
	}
	b, err := json.Marshal(keep)
	if err != nil {
		return data
	}
	return b
}

func intParam(v url.Values, key string) (int, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadQuery, key, raw)
	}
	return n, nil
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func millis(t *prismic.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

func fromMillis(v sql.NullInt64) *prismic.Time {
	if !v.Valid {
		return nil
	}
	return &prismic.Time{Time: time.UnixMilli(v.Int64).UTC()}
}
