package engine

// Page is one window over a user's ordered history. Derived per request,
// never stored.
type Page struct {
	Index      int
	Size       int
	TotalCount int
	TotalPages int
	Offset     int
	HasPrev    bool
	HasNext    bool
}

// Paginate computes the window for the requested page index. An index past
// either end is clamped to the nearest valid page, so a stale "next" press
// after a delete still renders the last page instead of an empty one.
func Paginate(totalCount, index, size int) Page {
	if size < 1 {
		size = 1
	}
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := (totalCount + size - 1) / size

	if index < 0 {
		index = 0
	}
	if totalPages > 0 && index > totalPages-1 {
		index = totalPages - 1
	}
	if totalPages == 0 {
		index = 0
	}

	return Page{
		Index:      index,
		Size:       size,
		TotalCount: totalCount,
		TotalPages: totalPages,
		Offset:     index * size,
		HasPrev:    index > 0,
		HasNext:    index < totalPages-1,
	}
}
