package handler

import "gorm.io/gorm"

// PaginationMeta carries the page bookkeeping for a paginated listing.
type PaginationMeta struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

// PaginatedResponse is one page of rows plus its metadata. The leaderboard
// and any future listing endpoints share this envelope.
type PaginatedResponse[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// NewPaginatedResponse assembles the envelope for rows already mapped to
// their response type.
func NewPaginatedResponse[T any](data []T, totalItems int64, page, limit int) PaginatedResponse[T] {
	if limit <= 0 {
		limit = 1
	}
	totalPages := (int(totalItems) + limit - 1) / limit

	return PaginatedResponse[T]{
		Data: data,
		Meta: PaginationMeta{
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			CurrentPage: page,
			PageSize:    limit,
		},
	}
}

// Paginate counts and fetches one page of the query. The caller applies any
// filtering and ordering before handing the query over.
func Paginate[T any](query *gorm.DB, page, limit int) (*PaginatedResponse[T], error) {
	var totalItems int64
	if err := query.Model(new(T)).Count(&totalItems).Error; err != nil {
		return nil, err
	}

	var rows []T
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	resp := NewPaginatedResponse(rows, totalItems, page, limit)
	return &resp, nil
}
