// Package pagination implements the list-slicing and metadata contract
// shared by every list endpoint: optional case-insensitive substring
// search, page/per_page windowing and total/total_pages computation.
package pagination

import (
	"math"
	"strconv"
	"strings"

	restful "github.com/emicklei/go-restful/v3"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Params is the normalized pagination query contract.
type Params struct {
	Search  string
	Page    int
	PerPage int
}

// Meta is the pagination metadata block returned alongside list items.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// FromRequest parses search/page/per_page query parameters, applying
// defaults and clamping per_page to [1, MaxPerPage].
func FromRequest(req *restful.Request) Params {
	p := Params{Search: req.QueryParameter("search")}
	p.Page, _ = strconv.Atoi(req.QueryParameter("page"))
	p.PerPage, _ = strconv.Atoi(req.QueryParameter("per_page"))
	return p.normalize()
}

func (p Params) normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// NewMeta computes metadata for a total row count. An empty result
// still reports one page.
func NewMeta(total int64, p Params) Meta {
	totalPages := 1
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.PerPage)))
	}
	return Meta{Total: total, Page: p.Page, PerPage: p.PerPage, TotalPages: totalPages}
}

// Paginate applies the search filter across searchColumns (logical OR),
// counts matches, and loads the requested window into dest ordered by
// primary key for a stable slice. Pages past the end yield an empty
// dest with correct metadata; no upper bound on page is enforced.
func Paginate(query *gorm.DB, p Params, searchColumns []string, dest interface{}) (Meta, error) {
	p = p.normalize()

	if p.Search != "" && len(searchColumns) > 0 {
		pattern := "%" + strings.ToLower(p.Search) + "%"
		var clauses []string
		var args []interface{}
		for _, col := range searchColumns {
			clauses = append(clauses, "LOWER("+col+") LIKE ?")
			args = append(args, pattern)
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Meta{}, err
	}

	offset := (p.Page - 1) * p.PerPage
	if err := query.Order("id").Offset(offset).Limit(p.PerPage).Find(dest).Error; err != nil {
		return Meta{}, err
	}

	return NewMeta(total, p), nil
}
