package http

import (
	"net/url"
	"strconv"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type PaginationMeta struct {
	Count int `json:"count"`
}

type PaginationLinks struct {
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
}

type PaginatedResponse struct {
	Meta  PaginationMeta  `json:"meta"`
	Links PaginationLinks `json:"links"`
	Data  interface{}     `json:"data"`
}

// parsePaginationParams reads offset and limit, falling back to defaults on
// missing or invalid values and capping limit at maxLimit.
func parsePaginationParams(u *url.URL) (int, int) {
	query := u.Query()

	offset := 0
	if v, err := strconv.Atoi(query.Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	limit := defaultLimit
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return offset, limit
}

func buildPaginatedResponse(u *url.URL, offset, limit, total int, data interface{}) PaginatedResponse {
	return PaginatedResponse{
		Meta:  PaginationMeta{Count: total},
		Links: buildNavigationLinks(u, offset, limit, total),
		Data:  data,
	}
}

func buildNavigationLinks(u *url.URL, offset, limit, total int) PaginationLinks {
	if total == 0 {
		return PaginationLinks{}
	}

	lastOffset := calculateOffsetOfLastPage(total, limit)
	links := PaginationLinks{
		First: pageLink(u, 0, limit),
		Last:  pageLink(u, lastOffset, limit),
	}

	if offset+limit < total {
		links.Next = pageLink(u, offset+limit, limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		links.Prev = pageLink(u, prev, limit)
	}

	return links
}

func calculateOffsetOfLastPage(total, limit int) int {
	if total == 0 || limit <= 0 {
		return 0
	}
	return ((total - 1) / limit) * limit
}

func pageLink(u *url.URL, offset, limit int) string {
	link := *u
	query := link.Query()
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	link.RawQuery = query.Encode()
	return link.RequestURI()
}
