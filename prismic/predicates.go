package prismic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Predicate names understood by this client.
const (
	OpAt         = "at"
	OpDateBefore = "date.before"
	OpDateAfter  = "date.after"
)

// Common document paths.
const (
	PathType                 = "document.type"
	PathID                   = "document.id"
	PathFirstPublicationDate = "document.first_publication_date"
)

// Predicate is one query filter. Value is a string, or a time.Time for
// date predicates.
type Predicate struct {
	Op    string
	Path  string
	Value any
}

// At matches documents where path equals value.
func At(path, value string) Predicate {
	return Predicate{Op: OpAt, Path: path, Value: value}
}

// DateBefore matches documents where the date at path is strictly before t.
func DateBefore(path string, t time.Time) Predicate {
	return Predicate{Op: OpDateBefore, Path: path, Value: t}
}

// DateAfter matches documents where the date at path is strictly after t.
func DateAfter(path string, t time.Time) Predicate {
	return Predicate{Op: OpDateAfter, Path: path, Value: t}
}

// UIDPath is the path of the uid field of a custom type.
func UIDPath(docType string) string {
	return "my." + docType + ".uid"
}

// String renders the predicate in query syntax, e.g. [at(document.type,"posts")].
func (p Predicate) String() string {
	var v string
	switch val := p.Value.(type) {
	case time.Time:
		// date predicates take epoch milliseconds
		v = strconv.FormatInt(val.UnixMilli(), 10)
	case string:
		v = strconv.Quote(val)
	default:
		v = fmt.Sprint(val)
	}
	return "[" + p.Op + "(" + p.Path + "," + v + ")]"
}

// EncodeQuery joins predicates into the q parameter value.
func EncodeQuery(preds []Predicate) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, p := range preds {
		b.WriteString(p.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Ordering sorts results on a field.
type Ordering struct {
	Field string
	Desc  bool
}

// EncodeOrderings renders orderings as [field desc,field].
func EncodeOrderings(orderings []Ordering) string {
	parts := make([]string, len(orderings))
	for i, o := range orderings {
		parts[i] = o.Field
		if o.Desc {
			parts[i] += " desc"
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// QueryOptions shape a search request. A zero value queries the master ref
// with the API's default page size.
type QueryOptions struct {
	Ref       string
	Fetch     []string
	PageSize  int
	Page      int
	Orderings []Ordering
}
