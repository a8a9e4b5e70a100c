package transform

import (
	"net/url"
	"strconv"
)

// Page is the limit/offset envelope returned by paginated lists.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage wraps one page of results. self is the absolute URL of the current
// request; next and previous keep its other query parameters and only
// rewrite limit and offset.
func NewPage[T any](results []T, count int, self *url.URL, limit, offset int) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}

	if offset+limit < count {
		next := withPaging(self, limit, offset+limit)
		page.Next = &next
	}
	if offset > 0 {
		prev := withPaging(self, limit, offset-limit)
		page.Previous = &prev
	}
	return page
}

// withPaging sets limit and offset on a copy of u. A non-positive offset is
// dropped from the query entirely.
func withPaging(u *url.URL, limit, offset int) string {
	c := *u
	q := c.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	c.RawQuery = q.Encode()
	return c.String()
}
