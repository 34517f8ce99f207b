// Package dirty tracks line ranges that must be lexed again or whose
// styles and fold levels changed. Adjacent and overlapping ranges are
// coalesced.
package dirty

// Range is an inclusive span of lines.
type Range struct {
	// First is the first line of the range.
	First int

	// Last is the last line of the range.
	Last int
}

// NewRange creates a range, swapping reversed bounds.
func NewRange(first, last int) Range {
	if last < first {
		first, last = last, first
	}
	return Range{First: first, Last: last}
}

// IsEmpty returns true if the range covers no line.
func (r Range) IsEmpty() bool {
	return r.First > r.Last || r.Last < 0
}

// LineCount returns the number of lines covered.
func (r Range) LineCount() int {
	if r.IsEmpty() {
		return 0
	}
	return r.Last - r.First + 1
}

// Contains returns true if the range covers line.
func (r Range) Contains(line int) bool {
	return line >= r.First && line <= r.Last
}

// Overlaps returns true if two ranges share a line.
func (r Range) Overlaps(other Range) bool {
	return r.First <= other.Last && other.First <= r.Last
}

// Adjacent returns true if other starts right after r or ends right
// before it.
func (r Range) Adjacent(other Range) bool {
	return r.Last+1 == other.First || other.Last+1 == r.First
}

// Merge combines two ranges that overlap or touch.
func (r Range) Merge(other Range) (Range, bool) {
	if !r.Overlaps(other) && !r.Adjacent(other) {
		return Range{}, false
	}
	return r.Union(other), true
}

// Union returns the smallest range covering both.
func (r Range) Union(other Range) Range {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Range{First: min(r.First, other.First), Last: max(r.Last, other.Last)}
}

// Clamp limits the range to a document of n lines.
func (r Range) Clamp(n int) Range {
	if r.First < 0 {
		r.First = 0
	}
	if r.Last >= n {
		r.Last = n - 1
	}
	return r
}
