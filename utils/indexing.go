package utils

import "fmt"

type Index []int

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

// Concat returns the concatenation of the argument index sets in order.
func Concat(indices ...Index) (r Index) {
	var size int
	for _, I := range indices {
		size += len(I)
	}
	r = make(Index, 0, size)
	for _, I := range indices {
		r = append(r, I...)
	}
	return
}

// Offset returns a copy of I with ofs added to every member.
func (I Index) Offset(ofs int) (r Index) {
	r = make(Index, len(I))
	for i, val := range I {
		r[i] = val + ofs
	}
	return
}

func (I Index) Contains(val int) bool {
	for _, v := range I {
		if v == val {
			return true
		}
	}
	return false
}

// Duplicates reports the first value appearing more than once across the
// concatenation of the argument index sets, or ok=false when they are
// mutually disjoint and duplicate free.
func Duplicates(indices ...Index) (val int, ok bool) {
	seen := make(map[int]struct{})
	for _, I := range indices {
		for _, v := range I {
			if _, dup := seen[v]; dup {
				return v, true
			}
			seen[v] = struct{}{}
		}
	}
	return 0, false
}

// CheckBounds errors if any member of I falls outside [0,max).
func (I Index) CheckBounds(max int) (err error) {
	for _, v := range I {
		if v < 0 || v >= max {
			err = fmt.Errorf("index out of bounds: index = %d, max_bounds = %d", v, max-1)
			return
		}
	}
	return
}
