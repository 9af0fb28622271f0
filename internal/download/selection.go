package download

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseSelection parses a selection such as "0,2-4" against a work list of
// count entries. An empty string or "all" selects every work and returns nil.
// Indices are returned sorted and without duplicates.
func ParseSelection(s string, count int) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		for i := lo; i <= hi; i++ {
			if i < 0 || i >= count {
				return nil, &SelectionError{Index: i, Count: count}
			}
			seen[i] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: %q selects nothing", ErrEmptyList, s)
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices, nil
}

func parseRange(part string) (int, int, error) {
	from, to, isRange := strings.Cut(part, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection %q", part)
	}
	if !isRange {
		return lo, lo, nil
	}

	hi, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil || hi < lo {
		return 0, 0, fmt.Errorf("invalid selection range %q", part)
	}
	return lo, hi, nil
}
