package dirty

import (
	"sort"
	"sync"
)

// ChangeType is the kind of change that dirtied a range.
type ChangeType uint8

const (
	// ChangeInsert indicates lines were inserted.
	ChangeInsert ChangeType = iota

	// ChangeDelete indicates lines were deleted.
	ChangeDelete

	// ChangeStyle indicates only styles and fold levels changed.
	ChangeStyle

	// ChangeGrammar indicates the grammar, its keywords or its options
	// changed.
	ChangeGrammar
)

// String returns the string representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeStyle:
		return "style"
	case ChangeGrammar:
		return "grammar"
	default:
		return "unknown"
	}
}

// Change is a single change event.
type Change struct {
	Type  ChangeType
	Range Range
}

// Tracker accumulates dirty ranges of one document.
type Tracker struct {
	mu sync.RWMutex

	// ranges are disjoint, non-adjacent and sorted.
	ranges []Range

	// whole indicates the entire document is dirty.
	whole bool

	// maxRanges is the number of ranges above which they collapse into
	// their union.
	maxRanges int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ranges:    make([]Range, 0, 8),
		maxRanges: 32,
	}
}

// MarkWholeDocument marks every line dirty.
func (t *Tracker) MarkWholeDocument() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.whole = true
	t.ranges = t.ranges[:0]
}

// MarkLine marks a single line dirty.
func (t *Tracker) MarkLine(line int) {
	t.MarkLines(line, line)
}

// MarkLines marks first..last dirty.
func (t *Tracker) MarkLines(first, last int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.whole {
		return
	}
	t.add(NewRange(first, last))
}

// MarkChange marks the lines an edit disturbed. An insertion of n lines
// at line dirties line..line+n; a deletion dirties the line the
// following text moved up to.
func (t *Tracker) MarkChange(change Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.whole {
		return
	}
	switch change.Type {
	case ChangeGrammar:
		t.whole = true
		t.ranges = t.ranges[:0]
	case ChangeDelete:
		t.add(Range{First: change.Range.First, Last: change.Range.First})
	default:
		t.add(change.Range)
	}
}

func (t *Tracker) add(r Range) {
	if r.IsEmpty() {
		return
	}
	if r.First < 0 {
		r.First = 0
	}

	merged := make([]Range, 0, len(t.ranges)+1)
	for _, existing := range t.ranges {
		if m, ok := existing.Merge(r); ok {
			r = m
			continue
		}
		merged = append(merged, existing)
	}
	merged = append(merged, r)
	sort.Slice(merged, func(i, j int) bool { return merged[i].First < merged[j].First })
	t.ranges = merged

	if len(t.ranges) > t.maxRanges {
		t.ranges = []Range{t.span()}
	}
}

func (t *Tracker) span() Range {
	if len(t.ranges) == 0 {
		return Range{First: 0, Last: -1}
	}
	return Range{First: t.ranges[0].First, Last: t.ranges[len(t.ranges)-1].Last}
}

// IsDirty returns true if any line is dirty.
func (t *Tracker) IsDirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.whole || len(t.ranges) > 0
}

// IsWholeDocument returns true if the whole document is dirty.
func (t *Tracker) IsWholeDocument() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.whole
}

// Ranges returns the dirty ranges of a document of n lines.
func (t *Tracker) Ranges(n int) []Range {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.rangesLocked(n)
}

func (t *Tracker) rangesLocked(n int) []Range {
	if t.whole {
		if n == 0 {
			return []Range{}
		}
		return []Range{{First: 0, Last: n - 1}}
	}
	out := make([]Range, 0, len(t.ranges))
	for _, r := range t.ranges {
		if c := r.Clamp(n); !c.IsEmpty() {
			out = append(out, c)
		}
	}
	return out
}

// Span returns the smallest range covering every dirty line of a
// document of n lines, and false when nothing is dirty.
func (t *Tracker) Span(n int) (Range, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.spanLocked(n)
}

func (t *Tracker) spanLocked(n int) (Range, bool) {
	ranges := t.rangesLocked(n)
	if len(ranges) == 0 {
		return Range{}, false
	}
	return Range{First: ranges[0].First, Last: ranges[len(ranges)-1].Last}, true
}

// Take returns the span like Span and clears the tracker.
func (t *Tracker) Take(n int) (Range, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.spanLocked(n)
	t.ranges = t.ranges[:0]
	t.whole = false
	return r, ok
}

// TakeRanges returns the ranges like Ranges and clears the tracker.
func (t *Tracker) TakeRanges(n int) []Range {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.rangesLocked(n)
	t.ranges = t.ranges[:0]
	t.whole = false
	return out
}

// IsLineDirty returns true if line is dirty.
func (t *Tracker) IsLineDirty(line int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.whole {
		return true
	}
	for _, r := range t.ranges {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// Clear clears all dirty ranges.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ranges = t.ranges[:0]
	t.whole = false
}

// RangeCount returns the number of dirty ranges.
func (t *Tracker) RangeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.whole {
		return 1
	}
	return len(t.ranges)
}

// SetMaxRanges sets the number of ranges above which they collapse into
// one. Values less than 1 are clamped to 1.
func (t *Tracker) SetMaxRanges(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 1 {
		n = 1
	}
	t.maxRanges = n
	if len(t.ranges) > n {
		t.ranges = []Range{t.span()}
	}
}
