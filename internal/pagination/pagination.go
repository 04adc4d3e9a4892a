package pagination

import (
	"math"
	"strconv"
)

// Meta describes one page of an ordered listing
type Meta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// ParsePage parses a page query parameter, defaulting to 1 on absent or
// malformed input
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Resolve clamps the requested page against the item count and returns the
// final page metadata together with the skip offset for the store query.
// Out-of-range pages land on the nearest valid page rather than erroring.
func Resolve(page int, pageSize int, totalItems int64) (Meta, int64) {
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	meta := Meta{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      totalItems,
		ItemsPerPage:    pageSize,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
	return meta, int64(page-1) * int64(pageSize)
}
