package fetch

import "github.com/danthegoodman1/relfetch/utils"

var (
	// ErrUsage is returned for incompatible or unknown fetch options, before any query runs
	ErrUsage = utils.PermError("fetch usage error")
	// ErrCardinality is returned by Fetch1 when the expression does not hold exactly one row
	ErrCardinality = utils.PermError("fetch1 cardinality error")
	// ErrRowShape is returned when a cursor row is missing a heading attribute
	ErrRowShape = utils.PermError("row does not match heading")
)
