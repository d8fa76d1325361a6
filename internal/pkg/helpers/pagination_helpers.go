package helpers

import (
	"github.com/yigit/campusrecords/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1
)

// NormalizePage clamps a 1-based page and its size to the accepted range.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// CalculateOffsetLimit converts a 1-based page into an SQL offset and limit.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	page, limit = NormalizePage(page, size)
	return uint64((page - 1) * limit), limit
}

// NewPaginationInfo describes page of a listing with totalItems rows.
// An empty listing still has one page.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = NormalizePage(page, size)

	totalPages := int((totalItems + int64(size) - 1) / int64(size))
	if totalPages == 0 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}
