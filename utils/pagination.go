package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams carries page, limit and a resolved ORDER BY clause.
type ListParams struct {
	Page    int
	Limit   int
	SortBy  string
	OrderBy string
}

type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// ParseListParams reads page, limit, sortBy and sortOrder from the query.
// sortColumns maps accepted sortBy values to SQL columns; anything else falls
// back to defaultSort.
func ParseListParams(c *gin.Context, sortColumns map[string]string, defaultSort, defaultOrder string) (ListParams, error) {
	p := ListParams{Page: DefaultPage, Limit: DefaultLimit}

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, InvalidInput("page must be a positive integer")
		}
		p.Page = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxLimit {
			return p, InvalidInput("limit must be between 1 and %d", MaxLimit)
		}
		p.Limit = n
	}

	p.SortBy = defaultSort
	column, ok := sortColumns[c.Query("sortBy")]
	if ok {
		p.SortBy = c.Query("sortBy")
	} else {
		column = sortColumns[defaultSort]
	}

	order := strings.ToUpper(c.DefaultQuery("sortOrder", defaultOrder))
	if order != "ASC" && order != "DESC" {
		return p, InvalidInput("sortOrder must be ASC or DESC")
	}
	p.OrderBy = column + " " + order
	return p, nil
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Apply adds ordering, limit and offset to q.
func (p ListParams) Apply(q *gorm.DB) *gorm.DB {
	if p.OrderBy != "" {
		q = q.Order(p.OrderBy)
	}
	return q.Limit(p.Limit).Offset(p.Offset())
}

func (p ListParams) Meta(total int64) PageMeta {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return PageMeta{Page: p.Page, Limit: p.Limit, TotalItems: total, TotalPages: pages}
}
