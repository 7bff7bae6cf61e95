package fetch

import "regexp"

var (
	keyAscTerm  = regexp.MustCompile(`^\s*KEY\s*(ASC\s*)?$`)
	keyDescTerm = regexp.MustCompile(`^\s*KEY\s*DESC\s*$`)
)

// ExpandOrdering replaces "KEY" and "KEY ASC" terms with the primary key names and
// "KEY DESC" with each key name followed by " DESC". Other terms are kept as is.
func ExpandOrdering(primaryKey []string, orderBy ...string) []string {
	if orderBy == nil {
		return nil
	}
	out := make([]string, 0, len(orderBy))
	for _, term := range orderBy {
		switch {
		case keyAscTerm.MatchString(term):
			out = append(out, primaryKey...)
		case keyDescTerm.MatchString(term):
			for _, k := range primaryKey {
				out = append(out, k+" DESC")
			}
		default:
			out = append(out, term)
		}
	}
	return out
}
