package heading

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrDuplicate        = errors.New("duplicate attribute")
)

type (
	Attribute struct {
		Name string
		// Database is the schema the attribute's table lives in, used to find its external table
		Database string
		// Type is the declared column type, e.g. `int`, `varchar(64)`, `bytea`
		Type string
		InKey bool

		IsBlob bool
		// IsExternal attributes hold a content hash, the payload lives in an external store
		IsExternal bool
		// Store names the external store, empty when not external
		Store string
	}

	// Heading is the ordered set of attributes of an expression
	Heading struct {
		attrs []Attribute
		index map[string]int
	}

	// Layout is the fixed row layout of a record array: names and declared types in order
	Layout struct {
		Names []string
		Types []string
	}
)

func New(attrs ...Attribute) (*Heading, error) {
	h := &Heading{
		attrs: make([]Attribute, 0, len(attrs)),
		index: make(map[string]int, len(attrs)),
	}
	for _, a := range attrs {
		if _, exists := h.index[a.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, a.Name)
		}
		h.index[a.Name] = len(h.attrs)
		h.attrs = append(h.attrs, a)
	}
	return h, nil
}

// MustNew is New that panics, for static headings
func MustNew(attrs ...Attribute) *Heading {
	h, err := New(attrs...)
	if err != nil {
		panic(err)
	}
	return h
}

// Names in declaration order
func (h *Heading) Names() []string {
	names := make([]string, len(h.attrs))
	for i, a := range h.attrs {
		names[i] = a.Name
	}
	return names
}

// PrimaryKey names in declaration order
func (h *Heading) PrimaryKey() []string {
	var pk []string
	for _, a := range h.attrs {
		if a.InKey {
			pk = append(pk, a.Name)
		}
	}
	return pk
}

func (h *Heading) Attributes() []Attribute {
	out := make([]Attribute, len(h.attrs))
	copy(out, h.attrs)
	return out
}

func (h *Heading) Len() int {
	return len(h.attrs)
}

func (h *Heading) Get(name string) (Attribute, bool) {
	i, ok := h.index[name]
	if !ok {
		return Attribute{}, false
	}
	return h.attrs[i], true
}

// Position returns the declaration index of name, or -1
func (h *Heading) Position(name string) int {
	i, ok := h.index[name]
	if !ok {
		return -1
	}
	return i
}

// Project keeps the primary key plus the named attributes, in declaration order.
func (h *Heading) Project(names ...string) (*Heading, error) {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := h.index[n]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, n)
		}
		keep[n] = true
	}
	var attrs []Attribute
	for _, a := range h.attrs {
		if a.InKey || keep[a.Name] {
			attrs = append(attrs, a)
		}
	}
	return New(attrs...)
}

func (h *Heading) Layout() Layout {
	l := Layout{
		Names: make([]string, len(h.attrs)),
		Types: make([]string, len(h.attrs)),
	}
	for i, a := range h.attrs {
		l.Names[i] = a.Name
		l.Types[i] = a.Type
	}
	return l
}
