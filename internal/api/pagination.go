package api

import (
	"net/http"
	"strconv"
)

// pageParams holds parsed pagination values from query params.
type pageParams struct {
	Page   int
	Limit  int
	Offset int
}

// pageMeta describes which slice of a collection a list response covers.
type pageMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// parsePageParams extracts page and limit from query params. The limit is
// clamped to maxLimit so a client cannot request unbounded result sets.
func parsePageParams(r *http.Request, defaultLimit, maxLimit int) pageParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return pageParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// meta builds the pagination metadata for a response covering total rows.
func (p pageParams) meta(total int) pageMeta {
	totalPages := (total + p.Limit - 1) / p.Limit
	if totalPages < 1 {
		totalPages = 1
	}
	return pageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    p.Page < totalPages,
	}
}
