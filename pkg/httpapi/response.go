package httpapi

// Meta carries the pagination state the client must echo back. Limit reflects
// the clamped value, not the requested one.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type Paginated[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPaginated[T any](data []T, total int64, page, limit int) Paginated[T] {
	if data == nil {
		data = []T{}
	}
	return Paginated[T]{
		Data: data,
		Meta: Meta{Total: total, Page: page, Limit: limit},
	}
}
