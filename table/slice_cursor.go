package table

// SliceCursor is a Cursor over rows already in memory
type SliceCursor struct {
	rows []Row
	pos  int
}

func NewSliceCursor(rows []Row) *SliceCursor {
	return &SliceCursor{rows: rows, pos: -1}
}

func (c *SliceCursor) Next() bool {
	if c.pos+1 >= len(c.rows) {
		c.pos = len(c.rows)
		return false
	}
	c.pos++
	return true
}

func (c *SliceCursor) Row() Row {
	return c.rows[c.pos]
}

func (c *SliceCursor) Err() error {
	return nil
}

func (c *SliceCursor) Close() {}
