package models

// Page is the pagination envelope returned by every list endpoint.
type Page struct {
	Docs        any   `json:"docs"`
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	NextPage    *int  `json:"nextPage"`
	PrevPage    *int  `json:"prevPage"`
}

// NewPage computes the derived pagination fields for the provided docs slice.
// Pages are 1-based; totalPages == ceil(total/limit).
func NewPage(docs any, total int64, page, limit int) Page {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	p := Page{
		Docs:       docs,
		TotalDocs:  total,
		Limit:      limit,
		Page:       page,
		TotalPages: totalPages,
	}

	if page < totalPages {
		next := page + 1
		p.HasNextPage = true
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.HasPrevPage = true
		p.PrevPage = &prev
	}

	return p
}
