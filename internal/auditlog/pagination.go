package auditlog

import "math"

// DefaultPageSize is applied when a request carries no usable page size.
// Both the organisation-scoped and the legacy unscoped listings use it.
const DefaultPageSize = 20

// PageRequest is the caller's raw paging input; zero or negative values are allowed
type PageRequest struct {
	PageNumber int
	PageSize   int
}

// Window is a resolved offset/limit pair
type Window struct {
	Skip int
	Take int
}

// ResolvePage coerces pageNumber and pageSize into a usable window.
// Page numbers below 1 become 1 and non-positive sizes become DefaultPageSize.
// No upper bound is applied to the size. A skip that would overflow int
// saturates at math.MaxInt, which selects an empty page.
func ResolvePage(pageNumber, pageSize int) Window {
	if pageNumber <= 0 {
		pageNumber = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	skip := math.MaxInt
	if pageNumber-1 <= math.MaxInt/pageSize {
		skip = (pageNumber - 1) * pageSize
	}
	return Window{
		Skip: skip,
		Take: pageSize,
	}
}
