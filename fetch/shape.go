package fetch

import "fmt"

type (
	// Format is the container for whole-row fetches
	Format string

	// Shape is the container one fetch call produces
	Shape int
)

const (
	FormatArray Format = "array"
	FormatFrame Format = "frame"
)

const (
	ShapeArray Shape = iota
	ShapeFrame
	ShapeDicts
	ShapeColumns
)

func (f Format) valid() bool {
	return f == FormatArray || f == FormatFrame
}

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeFrame:
		return "frame"
	case ShapeDicts:
		return "dicts"
	case ShapeColumns:
		return "columns"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// resolveShape picks the output shape from the request, or returns ErrUsage. configured is
// only read when neither attributes, AsDict nor an explicit format decide the shape.
func resolveShape(hasAttrs, asDict bool, format *Format, configured func() string) (Shape, error) {
	if hasAttrs && asDict {
		return 0, fmt.Errorf("%w: cannot specify attributes to return when AsDict is set, use Proj to select attributes or unset AsDict", ErrUsage)
	}
	if format != nil && (asDict || hasAttrs) {
		return 0, fmt.Errorf("%w: cannot specify an output format when AsDict is set or when attributes are selected", ErrUsage)
	}
	if format != nil && !format.valid() {
		return 0, fmt.Errorf("%w: fetch format must be %q or %q but %q was given", ErrUsage, FormatArray, FormatFrame, *format)
	}

	switch {
	case hasAttrs:
		return ShapeColumns, nil
	case asDict:
		return ShapeDicts, nil
	}

	f := format
	if f == nil {
		c := Format(configured())
		if !c.valid() {
			return 0, fmt.Errorf("%w: invalid fetch_format setting %q, use %q or %q", ErrUsage, c, FormatArray, FormatFrame)
		}
		f = &c
	}
	if *f == FormatFrame {
		return ShapeFrame, nil
	}
	return ShapeArray, nil
}
