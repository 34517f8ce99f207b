// Package scan provides the character cursor grammars use to style a
// line sequence.
//
// A Cursor walks a Lines implementation one byte at a time, exposing the
// previous, current and next characters together with their styles and
// the line-boundary flags. Styles are not written per character: the
// cursor remembers where the current style run began (the flush
// boundary) and paints the whole run when Flush, SetStyle or Complete
// is called.
//
// The same cursor replays existing styles in folding mode, which folders
// use to compute fold levels without touching the style arrays.
//
// Every pass past the requested last line is bounded by a fixed-point
// check: once the requested range is done the cursor snapshots each
// following line's end-of-line style, state and fold level and stops as
// soon as a line comes out of the pass unchanged.
package scan
