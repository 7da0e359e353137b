package api

// pageItem is one control in the pagination bar. Ellipsis items have Page 0.
type pageItem struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// paginationItems lays out the page links for current of total pages. Up to
// seven pages are listed in full, larger ranges collapse around the first,
// last and current pages.
func paginationItems(current, total int) []pageItem {
	if total <= 0 {
		return nil
	}

	var pages []int
	switch {
	case total <= 7:
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
	case current <= 3:
		pages = []int{1, 2, 3, 0, total - 1, total}
	case current >= total-2:
		pages = []int{1, 2, 0, total - 2, total - 1, total}
	default:
		pages = []int{1, 0, current - 1, current, current + 1, 0, total}
	}

	items := make([]pageItem, len(pages))
	for i, p := range pages {
		items[i] = pageItem{Page: p, Ellipsis: p == 0, Current: p == current}
	}
	return items
}
