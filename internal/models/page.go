package models

import (
	"fmt"
	"sort"
	"strings"
)

// Page is the list envelope every collection endpoint returns.
type Page[T Entity] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// WithAppended returns a copy of the snapshot with v appended, when v is of
// the page's element type. Snapshots are never mutated in place so readers
// holding an older pointer always see a consistent list. Duplicate ids are
// kept as-is; the notification merge path relies on that.
func (p *Page[T]) WithAppended(v any) (any, bool) {
	item, ok := v.(T)
	if !ok {
		return nil, false
	}
	next := &Page[T]{
		Items:       make([]T, 0, len(p.Items)+1),
		Total:       p.Total + 1,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
	}
	next.Items = append(next.Items, p.Items...)
	next.Items = append(next.Items, item)
	return next, true
}

// WithoutID returns a copy of the snapshot with every item matching id
// dropped, or ok=false when the id is not present.
func (p *Page[T]) WithoutID(id string) (any, bool) {
	removed := 0
	for _, item := range p.Items {
		if item.GetID() == id {
			removed++
		}
	}
	if removed == 0 {
		return nil, false
	}
	next := &Page[T]{
		Items:       make([]T, 0, len(p.Items)-removed),
		Total:       p.Total - removed,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
	}
	for _, item := range p.Items {
		if item.GetID() != id {
			next.Items = append(next.Items, item)
		}
	}
	return next, true
}

// ListParams are the query options accepted by every list endpoint.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Query renders the params as URL query values.
func (p ListParams) Query() map[string]string {
	q := make(map[string]string, len(p.Filters)+3)
	if p.Page > 0 {
		q["page"] = fmt.Sprintf("%d", p.Page)
	}
	if p.Limit > 0 {
		q["limit"] = fmt.Sprintf("%d", p.Limit)
	}
	if p.Search != "" {
		q["search"] = p.Search
	}
	for k, v := range p.Filters {
		q[k] = v
	}
	return q
}

// CacheKey renders the params deterministically so that equal queries map to
// the same cache entry regardless of filter map iteration order.
func (p ListParams) CacheKey() string {
	q := p.Query()
	if len(q) == 0 {
		return "all"
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(q[k])
	}
	return b.String()
}
