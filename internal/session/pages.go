package session

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidPages indicates a page selection string could not be parsed.
var ErrInvalidPages = errors.New("invalid page selection")

// maxPagesPerRange bounds a single range so a typo such as "1-1000000000"
// cannot allocate an enormous slice.
const maxPagesPerRange = 100000

// maxPage is the highest page number accepted.
const maxPage = 1000000

// ParsePages turns a selection such as "1,3,5-7" into the ascending,
// duplicate-free page list [1 3 5 6 7]. Every token must be a positive page
// number or an inclusive range A-B with A <= B; the first malformed token
// fails the whole parse.
func ParsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty selection", ErrInvalidPages)
	}

	seen := make(map[int]struct{})
	for _, raw := range strings.Split(s, ",") {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPages, s)
		}

		start, end, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		for p := start; ; p++ {
			seen[p] = struct{}{}
			if p == end {
				break
			}
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	slices.Sort(pages)
	return pages, nil
}

func parseToken(tok string) (int, int, error) {
	lo, hi, isRange := strings.Cut(tok, "-")
	if !isRange {
		p, err := parsePage(tok, tok)
		return p, p, err
	}

	start, err := parsePage(strings.TrimSpace(lo), tok)
	if err != nil {
		return 0, 0, err
	}
	end, err := parsePage(strings.TrimSpace(hi), tok)
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: reversed range %q", ErrInvalidPages, tok)
	}
	if end-start >= maxPagesPerRange {
		return 0, 0, fmt.Errorf("%w: range %q spans more than %d pages", ErrInvalidPages, tok, maxPagesPerRange)
	}
	return start, end, nil
}

func parsePage(s, tok string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: incomplete range %q", ErrInvalidPages, tok)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a page number", ErrInvalidPages, tok)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: page numbers start at 1, got %q", ErrInvalidPages, tok)
	}
	if n > maxPage {
		return 0, fmt.Errorf("%w: page %d in %q is past the last supported page %d", ErrInvalidPages, n, tok, maxPage)
	}
	return n, nil
}

// FormatPages renders an ascending page list compactly, collapsing runs into
// ranges: [1 3 5 6 7] becomes "1,3,5-7". A nil list means every page.
func FormatPages(pages []int) string {
	if len(pages) == 0 {
		return "All pages"
	}

	var b strings.Builder
	for i := 0; i < len(pages); {
		j := i
		for j+1 < len(pages) && pages[j+1] == pages[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		switch {
		case j == i:
			b.WriteString(strconv.Itoa(pages[i]))
		default:
			fmt.Fprintf(&b, "%d-%d", pages[i], pages[j])
		}
		i = j + 1
	}
	return b.String()
}
