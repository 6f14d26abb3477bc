package prismic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseQuery reads a q parameter produced by EncodeQuery. String values
// are quoted; bare values are epoch milliseconds and decode to time.Time.
func ParseQuery(q string) ([]Predicate, error) {
	q = strings.TrimSpace(q)
	if len(q) < 2 || q[0] != '[' || q[len(q)-1] != ']' {
		return nil, fmt.Errorf("prismic: malformed query %q", q)
	}
	body := q[1 : len(q)-1]
	var preds []Predicate
	for body != "" {
		open := strings.IndexByte(body, '(')
		comma := strings.IndexByte(body, ',')
		if body[0] != '[' || open < 0 || comma < open {
			return nil, fmt.Errorf("prismic: malformed predicate in %q", q)
		}
		p := Predicate{Op: body[1:open], Path: body[open+1 : comma]}
		rest := body[comma+1:]
		if strings.HasPrefix(rest, `"`) {
			lit, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, fmt.Errorf("prismic: malformed value in %q: %w", q, err)
			}
			v, _ := strconv.Unquote(lit)
			p.Value = v
			rest = rest[len(lit):]
		} else {
			end := strings.IndexByte(rest, ')')
			if end < 0 {
				return nil, fmt.Errorf("prismic: malformed predicate in %q", q)
			}
			ms, err := strconv.ParseInt(rest[:end], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("prismic: malformed value in %q: %w", q, err)
			}
			p.Value = time.UnixMilli(ms).UTC()
			rest = rest[end:]
		}
		if !strings.HasPrefix(rest, ")]") {
			return nil, fmt.Errorf("prismic: malformed predicate in %q", q)
		}
		body = rest[2:]
		preds = append(preds, p)
	}
	return preds, nil
}

// ParseOrderings reads an orderings parameter such as [field desc,other].
func ParseOrderings(s string) []Ordering {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil
	}
	var out []Ordering
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		out = append(out, Ordering{Field: fields[0], Desc: len(fields) > 1 && fields[1] == "desc"})
	}
	return out
}
