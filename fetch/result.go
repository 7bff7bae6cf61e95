package fetch

import (
	"encoding/json"

	"github.com/danthegoodman1/relfetch/utils"
)

type (
	// Result is one of *RecordArray, *Frame, Dicts, Column or Columns
	Result interface {
		Shape() Shape
		isResult()
	}

	// Dicts is one decoded Record per row
	Dicts []Record

	// Column is the values of one requested attribute, one per row. Key columns hold Records.
	Column struct {
		Attr   AttrRef
		Values []any
	}

	// Columns is one Column per requested attribute, in request order
	Columns []Column
)

func (*RecordArray) Shape() Shape { return ShapeArray }
func (*Frame) Shape() Shape       { return ShapeFrame }
func (Dicts) Shape() Shape        { return ShapeDicts }
func (Column) Shape() Shape       { return ShapeColumns }
func (Columns) Shape() Shape      { return ShapeColumns }

func (*RecordArray) isResult() {}
func (*Frame) isResult()       {}
func (Dicts) isResult()        {}
func (Column) isResult()       {}
func (Columns) isResult()      {}

func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Attr   string `json:"attr"`
		Values []any  `json:"values"`
	}{
		Attr:   c.Attr.String(),
		Values: utils.ArrayOrEmpty(c.Values),
	})
}
