// fields.go -- field selector parsing for P-Multi/P-NumKeys/P-Fields
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package keys

import (
	"sort"
	"strconv"
	"strings"

	"github.com/opencoff/cdbfasta/ferr"
)

// maxFieldEntries is the largest number of explicit field numbers a
// selector may list; -m and bare "N-" open ranges don't count toward
// it since they don't enumerate individual fields.
const maxFieldEntries = 254

// FieldSelector describes which whitespace-delimited fields of a
// header (1-based) a KindFields policy should key on. It's built from
// a cut(1)-like list -- "1,3,5-7" -- optionally ending in an open
// range ("9-") meaning "this field and every field after it".
type FieldSelector struct {
	explicit map[int]bool
	openFrom int // 0 means "no open range"
}

// AllFields is the selector -m installs: every field is a key.
func AllFields() FieldSelector {
	return FieldSelector{openFrom: 1}
}

// FirstN is the selector -n N installs: the first N fields.
func FirstN(n int) FieldSelector {
	m := make(map[int]bool, n)
	for i := 1; i <= n; i++ {
		m[i] = true
	}
	return FieldSelector{explicit: m}
}

// ParseFieldSelector parses a -f argument: a comma-separated list of
// field numbers and ranges ("1", "3-5", "9-"), 1-based. At most one
// open-ended range ("N-") is allowed, and it must be the highest entry.
func ParseFieldSelector(s string) (FieldSelector, error) {
	fs := FieldSelector{explicit: make(map[int]bool)}

	parts := strings.Split(s, ",")
	count := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasSuffix(p, "-") {
			n, err := strconv.Atoi(strings.TrimSuffix(p, "-"))
			if err != nil || n < 1 {
				return fs, ferr.Config("keys: bad field range %q", p)
			}
			if fs.openFrom != 0 {
				return fs, ferr.Config("keys: more than one open field range")
			}
			fs.openFrom = n
			continue
		}

		if i := strings.IndexByte(p, '-'); i > 0 {
			lo, err1 := strconv.Atoi(p[:i])
			hi, err2 := strconv.Atoi(p[i+1:])
			if err1 != nil || err2 != nil || lo < 1 || hi < lo {
				return fs, ferr.Config("keys: bad field range %q", p)
			}
			for n := lo; n <= hi; n++ {
				if count >= maxFieldEntries {
					return fs, ferr.Config("keys: more than %d explicit fields", maxFieldEntries)
				}
				fs.explicit[n] = true
				count++
			}
			continue
		}

		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return fs, ferr.Config("keys: bad field number %q", p)
		}
		if count >= maxFieldEntries {
			return fs, ferr.Config("keys: more than %d explicit fields", maxFieldEntries)
		}
		fs.explicit[n] = true
		count++
	}

	if len(fs.explicit) == 0 && fs.openFrom == 0 {
		return fs, ferr.Config("keys: empty field selector")
	}
	if fs.openFrom != 0 && fs.maxExplicit() > fs.openFrom {
		return fs, ferr.Config("keys: open field range %d- must be the highest entry", fs.openFrom)
	}
	return fs, nil
}

// Selected reports whether field n (1-based) is selected.
func (fs FieldSelector) Selected(n int) bool {
	if fs.explicit[n] {
		return true
	}
	return fs.openFrom != 0 && n >= fs.openFrom
}

// maxExplicit returns the highest explicitly-listed field number, or 0
// if there is none -- used by the extractor to stop tokenizing early
// when there's no open range left to satisfy.
func (fs FieldSelector) maxExplicit() int {
	max := 0
	for n := range fs.explicit {
		if n > max {
			max = n
		}
	}
	return max
}

// open reports whether the selector has an unbounded tail.
func (fs FieldSelector) open() bool { return fs.openFrom != 0 }

// Empty reports whether the selector has no explicit fields and no
// open range -- i.e. it was never populated.
func (fs FieldSelector) Empty() bool { return len(fs.explicit) == 0 && fs.openFrom == 0 }

// sortedExplicit returns the explicit field numbers in ascending
// order.
func (fs FieldSelector) sortedExplicit() []int {
	out := make([]int, 0, len(fs.explicit))
	for n := range fs.explicit {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
