package sampler

// DefaultPageSize is the number of ranked tokens shown per page.
const DefaultPageSize = 6

// Page is a slice of the final ranking.
type Page struct {
	Entries    []Entry
	Number     int
	TotalPages int
	TotalItems int
	// Offset is the zero-based rank of the first entry.
	Offset int
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// TotalPages returns ceil(total/pageSize), and 1 for an empty list.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	n := (total + pageSize - 1) / pageSize
	return max(1, n)
}

// ClampPage moves page into [1, TotalPages(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	return min(max(1, page), TotalPages(total, pageSize))
}

// Paginate returns the requested 1-based page of entries, clamping the page number.
func Paginate(entries []Entry, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	total := len(entries)
	page = ClampPage(page, total, pageSize)
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	out := make([]Entry, 0, end-start)
	out = append(out, entries[start:end]...)
	return Page{
		Entries:    out,
		Number:     page,
		TotalPages: TotalPages(total, pageSize),
		TotalItems: total,
		Offset:     start,
	}
}
