package models

import (
	"net/url"
	"strconv"
	"strings"
)

// Default page size of browse queries.
const DefaultBrowseLimit = 20

// FilterState holds browse and search filters.
//
// Zero values mean "not filtered"; Page and Limit default to 1 and [DefaultBrowseLimit].
type FilterState struct {
	Query         string
	Genres        []string
	Excludes      []string
	Type          string
	Demographic   []int
	Country       []string
	Status        int
	ContentRating string
	From          int
	To            int
	Minimum       int
	Sort          string
	Completed     bool
	Page          int
	Limit         int
	ShowAll       bool
}

// NewFilterState returns filters with the catalog's default paging.
func NewFilterState() FilterState {
	return FilterState{Page: 1, Limit: DefaultBrowseLimit, ShowAll: true}
}

// Values encodes the filters as catalog search query parameters.
func (f FilterState) Values() url.Values {
	v := url.Values{}

	if q := strings.TrimSpace(f.Query); q != "" {
		v.Set("q", q)
	}

	page, limit := f.Page, f.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultBrowseLimit
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	v.Set("showall", strconv.FormatBool(f.ShowAll))
	v.Set("t", "false")

	for _, g := range f.Genres {
		v.Add("genres", g)
	}
	for _, g := range f.Excludes {
		v.Add("excludes", g)
	}
	for _, d := range f.Demographic {
		v.Add("demographic", strconv.Itoa(d))
	}
	for _, c := range f.Country {
		v.Add("country", c)
	}
	if f.Type != "" {
		v.Set("type", f.Type)
	}
	if f.Status > 0 {
		v.Set("status", strconv.Itoa(f.Status))
	}
	if f.ContentRating != "" {
		v.Set("content_rating", f.ContentRating)
	}
	if f.From > 0 {
		v.Set("from", strconv.Itoa(f.From))
	}
	if f.To > 0 {
		v.Set("to", strconv.Itoa(f.To))
	}
	if f.Minimum > 0 {
		v.Set("minimum", strconv.Itoa(f.Minimum))
	}
	if f.Sort != "" {
		v.Set("sort", f.Sort)
	}
	if f.Completed {
		v.Set("completed", "true")
	}

	return v
}

// SearchPath is the catalog path for the filters, including the encoded query.
func (f FilterState) SearchPath() string {
	return "/v1.0/search/?" + f.Values().Encode()
}
