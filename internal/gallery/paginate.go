package gallery

import "strconv"

// DefaultPageSize is the page size applied when the requested page-size
// token is invalid or absent.
const DefaultPageSize = 12

// allowedPageSizes is the closed set of selectable numeric page sizes.
var allowedPageSizes = map[int]bool{25: true, 50: true, 100: true, 250: true}

// PageSize is either a fixed number of images per page or the "all"
// sentinel selecting the entire listing on a single page.
type PageSize struct {
	All bool
	N   int
}

// String renders the page size as a request token.
func (p PageSize) String() string {
	if p.All {
		return "all"
	}
	return strconv.Itoa(p.N)
}

// ParsePageSize maps a request token to a PageSize. "all" selects the
// single-page mode; the tokens 25, 50, 100 and 250 select that size; any
// other value, parseable or not, coerces to DefaultPageSize.
func ParsePageSize(token string) PageSize {
	if token == "all" {
		return PageSize{All: true}
	}
	n, err := strconv.Atoi(token)
	if err != nil || !allowedPageSizes[n] {
		return PageSize{N: DefaultPageSize}
	}
	return PageSize{N: n}
}

// Page is a contiguous slice of the sorted image listing.
type Page struct {
	Files      []string
	Number     int
	Size       PageSize
	TotalPages int
	TotalCount int
}

// Paginate slices files into the requested page. Out-of-range page numbers
// (zero, negative, past the end) are clamped, never rejected, so the
// returned page number always satisfies 1 <= Number <= TotalPages and
// TotalPages >= 1 even for an empty listing.
func Paginate(files []string, page int, size PageSize) Page {
	total := len(files)

	if size.All {
		return Page{
			Files:      files,
			Number:     1,
			Size:       size,
			TotalPages: 1,
			TotalCount: total,
		}
	}

	if size.N < 1 {
		size.N = DefaultPageSize
	}

	totalPages := (total + size.N - 1) / size.N
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	lo := (page - 1) * size.N
	hi := lo + size.N
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}

	return Page{
		Files:      files[lo:hi],
		Number:     page,
		Size:       size,
		TotalPages: totalPages,
		TotalCount: total,
	}
}
