package scan

// Step tells Run what to do after one call of a step function.
type Step int

const (
	// Advance moves the cursor to the next character.
	Advance Step = iota

	// Reprocess runs the step function again on the same character,
	// usually after a style change.
	Reprocess
)

// Run calls step for every character until the pass ends, then
// completes the pending run. It returns the last line processed.
func Run(c *Cursor, step func() Step) int {
	for c.More() {
		if step() == Reprocess {
			continue
		}
		c.Forward()
	}
	c.Complete()
	return c.LastLine()
}
