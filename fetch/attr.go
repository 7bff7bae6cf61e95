package fetch

// KeyToken is the attribute name that requests the primary key
const KeyToken = "KEY"

type (
	// AttrRef names a requested attribute, or the primary key as a whole
	AttrRef struct {
		key  bool
		name string
	}
)

// Key requests the primary key of each row as a sub-record
var Key = AttrRef{key: true}

func Named(name string) AttrRef {
	return AttrRef{name: name}
}

// ParseAttr maps the literal "KEY" to Key and anything else to a named attribute. A real
// attribute called KEY therefore cannot be requested by name.
func ParseAttr(s string) AttrRef {
	if s == KeyToken {
		return Key
	}
	return Named(s)
}

// Attrs parses each name with ParseAttr
func Attrs(names ...string) []AttrRef {
	refs := make([]AttrRef, len(names))
	for i, n := range names {
		refs[i] = ParseAttr(n)
	}
	return refs
}

func (a AttrRef) IsKey() bool {
	return a.key
}

// Name is the attribute name, empty for Key
func (a AttrRef) Name() string {
	return a.name
}

func (a AttrRef) String() string {
	if a.key {
		return KeyToken
	}
	return a.name
}

// namedOnly drops key references, keeping request order
func namedOnly(attrs []AttrRef) []string {
	var names []string
	for _, a := range attrs {
		if !a.key {
			names = append(names, a.name)
		}
	}
	return names
}
