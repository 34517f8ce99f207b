package document

import "fmt"

// Edit replaces Delete lines starting at Line with the Insert lines.
// Insert lines carry no newline.
type Edit struct {
	Line   int
	Delete int
	Insert []string
}

// EditResult describes the lines an applied edit touched.
type EditResult struct {
	Line     int
	Deleted  int
	Inserted int
}

// Apply performs one edit.
func (d *Document) Apply(e Edit) (EditResult, error) {
	if e.Delete < 0 {
		return EditResult{}, fmt.Errorf("%w: %d", ErrInvalidCount, e.Delete)
	}
	if e.Line < 0 || e.Line+e.Delete > len(d.lines) {
		return EditResult{}, fmt.Errorf("%w: edit at %d deleting %d of %d", ErrLineOutOfRange, e.Line, e.Delete, len(d.lines))
	}

	if e.Delete > 0 {
		// Deleting the whole document would leave a placeholder line
		// in front of the insertion.
		if e.Delete == len(d.lines) && len(e.Insert) > 0 {
			d.lines = d.lines[:0]
		} else if err := d.DeleteLines(e.Line, e.Delete); err != nil {
			return EditResult{}, err
		}
	}
	if len(e.Insert) > 0 {
		d.insert(e.Line, e.Insert)
	}
	if e.Delete == 0 && len(e.Insert) == 0 {
		return EditResult{Line: e.Line}, nil
	}
	return EditResult{Line: e.Line, Deleted: e.Delete, Inserted: len(e.Insert)}, nil
}

// ApplyEdits performs edits in order. Line numbers of later edits refer
// to the document after the earlier ones.
func (d *Document) ApplyEdits(edits []Edit) ([]EditResult, error) {
	results := make([]EditResult, 0, len(edits))
	for i, e := range edits {
		r, err := d.Apply(e)
		if err != nil {
			return results, fmt.Errorf("edit %d: %w", i, err)
		}
		results = append(results, r)
	}
	return results, nil
}
