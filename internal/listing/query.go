package listing

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Query parameter names sent to the listing endpoint.
const (
	ParamPage      = "page"
	ParamPageSize  = "page_size"
	ParamLang      = "lang"
	ParamFilterIDs = "filter_ids"
	SearchPrefix   = "search_"
)

// Query is the listing request state. Page is zero-based; Values converts it
// to the backend's one-based numbering.
type Query struct {
	Page     int
	PageSize int
	Locale   string
	FilterID string
	Search   map[string]string
}

// NewQuery returns the first page of an unfiltered listing. A non-positive
// pageSize selects types.DefaultPageSize.
func NewQuery(pageSize int, locale string) Query {
	if pageSize <= 0 {
		pageSize = types.DefaultPageSize
	}
	return Query{PageSize: pageSize, Locale: locale}
}

// SetPage moves to page p; negative pages clamp to 0.
func (q *Query) SetPage(p int) {
	if p < 0 {
		p = 0
	}
	q.Page = p
}

// SetPageSize changes the page size and returns to the first page.
func (q *Query) SetPageSize(n int) {
	if n <= 0 {
		n = types.DefaultPageSize
	}
	q.PageSize = n
	q.Page = 0
}

// SetSearch stores the search term for slug. Changing the search returns
// to the first page.
func (q *Query) SetSearch(slug, term string) {
	if q.Search == nil {
		q.Search = make(map[string]string)
	}
	if q.Search[slug] == term {
		return
	}
	q.Search[slug] = term
	q.Page = 0
}

// SetFilter applies a saved filter group by id; "" removes it.
func (q *Query) SetFilter(id string) {
	if q.FilterID == id {
		return
	}
	q.FilterID = id
	q.Page = 0
}

// Clone returns a deep copy.
func (q Query) Clone() Query {
	out := q
	if q.Search != nil {
		out.Search = make(map[string]string, len(q.Search))
		for k, v := range q.Search {
			out.Search[k] = v
		}
	}
	return out
}

// Terms returns the trimmed, non-empty search terms keyed by slug.
func (q Query) Terms() map[string]string {
	out := make(map[string]string)
	for slug, term := range q.Search {
		if t := strings.TrimSpace(term); t != "" {
			out[slug] = t
		}
	}
	return out
}

// Values encodes the query for the listing endpoint.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(q.Page+1))
	v.Set(ParamPageSize, strconv.Itoa(q.PageSize))
	if q.Locale != "" {
		v.Set(ParamLang, q.Locale)
	}
	terms := q.Terms()
	slugs := make([]string, 0, len(terms))
	for s := range terms {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	for _, s := range slugs {
		v.Set(SearchPrefix+s, terms[s])
	}
	if q.FilterID != "" {
		v.Set(ParamFilterIDs, q.FilterID)
	}
	return v
}

// Pages returns the number of pages needed for count rows.
func (q Query) Pages(count int) int {
	if count <= 0 || q.PageSize <= 0 {
		return 0
	}
	return (count + q.PageSize - 1) / q.PageSize
}
