package scan

// FoldLevel is a packed per-line fold value.
//
// The low 12 bits hold the nesting depth, counted from FoldBase. Bit 12
// marks a blank line and bit 13 a fold header. Bits 16 to 31 belong to
// the grammar that computed the level and are opaque to everyone else.
type FoldLevel uint32

// Fold level layout.
const (
	FoldBase       FoldLevel = 0x400
	FoldNumberMask FoldLevel = 0x0FFF
	FoldWhite      FoldLevel = 0x1000
	FoldHeader     FoldLevel = 0x2000
	FoldFlagsMask  FoldLevel = 0xF000

	foldAuxShift = 16
)

// MakeFoldLevel packs a depth and flags. Depths outside the number
// field are clamped.
func MakeFoldLevel(depth int, flags FoldLevel) FoldLevel {
	if depth < 0 {
		depth = 0
	}
	if depth > int(FoldNumberMask) {
		depth = int(FoldNumberMask)
	}
	return FoldLevel(depth) | flags&^FoldNumberMask
}

// Depth returns the nesting depth, including FoldBase.
func (l FoldLevel) Depth() int {
	return int(l & FoldNumberMask)
}

// IsHeader reports whether the line opens a fold.
func (l FoldLevel) IsHeader() bool {
	return l&FoldHeader != 0
}

// IsWhite reports whether the line is blank.
func (l FoldLevel) IsWhite() bool {
	return l&FoldWhite != 0
}

// Flags returns the header and white bits.
func (l FoldLevel) Flags() FoldLevel {
	return l & FoldFlagsMask
}

// Aux returns the grammar-private upper half.
func (l FoldLevel) Aux() uint16 {
	return uint16(l >> foldAuxShift)
}

// WithAux replaces the grammar-private upper half.
func (l FoldLevel) WithAux(aux uint16) FoldLevel {
	return l&0xFFFF | FoldLevel(aux)<<foldAuxShift
}

// WithDepth replaces the depth and keeps every other bit.
func (l FoldLevel) WithDepth(depth int) FoldLevel {
	return MakeFoldLevel(depth, l&^FoldNumberMask)
}

// LineState is the grammar-defined integer persisted on each line
// between passes.
type LineState uint32

// Has reports whether all bits of mask are set.
func (s LineState) Has(mask LineState) bool {
	return s&mask == mask
}

// Any reports whether any bit of mask is set.
func (s LineState) Any(mask LineState) bool {
	return s&mask != 0
}

// Set returns s with mask set.
func (s LineState) Set(mask LineState) LineState {
	return s | mask
}

// Clear returns s with mask cleared.
func (s LineState) Clear(mask LineState) LineState {
	return s &^ mask
}

// High returns the bits above the low byte.
func (s LineState) High() int {
	return int(s >> 8)
}

// Low returns the low byte.
func (s LineState) Low() int {
	return int(s & 0xFF)
}

// PackState builds a state from a high part and a low byte.
func PackState(high, low int) LineState {
	return LineState(high)<<8 | LineState(low&0xFF)
}
