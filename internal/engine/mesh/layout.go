// Package mesh uploads interleaved vertex data and wires it to a program's
// attribute slots through a vertex array object.
package mesh

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
)

var (
	// ErrInvalidLayout reports offsets or strides that do not describe a
	// single interleaved vertex record.
	ErrInvalidLayout = errors.New("invalid vertex layout")

	// ErrInvalidAttribute reports a layout entry the program has no slot for.
	ErrInvalidAttribute = errors.New("invalid attribute binding")
)

// Attribute describes one field of an interleaved vertex record.
type Attribute struct {
	Name       string
	Dimension  int32 // components, 1-4
	Type       gpu.AttribType
	Normalized bool
	Stride     int32 // bytes between consecutive records
	Offset     int32 // bytes from the start of a record
}

// Size returns the byte size of the attribute within one record.
func (a Attribute) Size() int32 {
	return a.Dimension * int32(a.Type.Size())
}

// Spec is an attribute description without placement, used by Interleaved.
type Spec struct {
	Name       string
	Dimension  int32
	Type       gpu.AttribType
	Normalized bool
}

// Layout maps attribute names to their placement in an interleaved buffer.
// It is immutable once built; iteration follows declaration order.
type Layout struct {
	attrs []Attribute
	index map[string]int
}

// NewLayout builds a layout from explicit placements and validates it.
func NewLayout(attrs ...Attribute) (Layout, error) {
	l := Layout{
		attrs: append([]Attribute(nil), attrs...),
		index: make(map[string]int, len(attrs)),
	}
	for i, a := range l.attrs {
		if _, dup := l.index[a.Name]; dup {
			return Layout{}, fmt.Errorf("%w: duplicate attribute %q", ErrInvalidLayout, a.Name)
		}
		l.index[a.Name] = i
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Interleaved packs the specs back to back in order and derives offsets
// and the shared stride.
func Interleaved(specs ...Spec) (Layout, error) {
	var stride int32
	for _, s := range specs {
		stride += s.Dimension * int32(s.Type.Size())
	}

	attrs := make([]Attribute, 0, len(specs))
	var offset int32
	for _, s := range specs {
		attrs = append(attrs, Attribute{
			Name:       s.Name,
			Dimension:  s.Dimension,
			Type:       s.Type,
			Normalized: s.Normalized,
			Stride:     stride,
			Offset:     offset,
		})
		offset += s.Dimension * int32(s.Type.Size())
	}
	return NewLayout(attrs...)
}

// Validate checks that every attribute fits inside one record, that all
// attributes share the stride, and that no two attributes overlap.
func (l Layout) Validate() error {
	if len(l.attrs) == 0 {
		return fmt.Errorf("%w: no attributes", ErrInvalidLayout)
	}

	stride := l.attrs[0].Stride
	for _, a := range l.attrs {
		switch {
		case a.Name == "":
			return fmt.Errorf("%w: unnamed attribute", ErrInvalidLayout)
		case a.Dimension < 1 || a.Dimension > 4:
			return fmt.Errorf("%w: %s has dimension %d", ErrInvalidLayout, a.Name, a.Dimension)
		case a.Type.Size() == 0:
			return fmt.Errorf("%w: %s has unknown element type", ErrInvalidLayout, a.Name)
		case a.Stride != stride:
			return fmt.Errorf("%w: %s has stride %d, expected %d", ErrInvalidLayout, a.Name, a.Stride, stride)
		case a.Offset < 0 || a.Offset+a.Size() > a.Stride:
			return fmt.Errorf("%w: %s at offset %d size %d exceeds stride %d",
				ErrInvalidLayout, a.Name, a.Offset, a.Size(), a.Stride)
		}
	}

	sorted := append([]Attribute(nil), l.attrs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		if prev.Offset+prev.Size() > sorted[i].Offset {
			return fmt.Errorf("%w: %s overlaps %s", ErrInvalidLayout, prev.Name, sorted[i].Name)
		}
	}
	return nil
}

// Get returns the named attribute.
func (l Layout) Get(name string) (Attribute, bool) {
	i, ok := l.index[name]
	if !ok {
		return Attribute{}, false
	}
	return l.attrs[i], true
}

// Attributes returns the attributes in declaration order.
func (l Layout) Attributes() []Attribute {
	return append([]Attribute(nil), l.attrs...)
}

// Names returns the attribute names in declaration order.
func (l Layout) Names() []string {
	names := make([]string, len(l.attrs))
	for i, a := range l.attrs {
		names[i] = a.Name
	}
	return names
}

// Len returns the number of attributes.
func (l Layout) Len() int { return len(l.attrs) }

// Stride returns the record size in bytes, or 0 for an empty layout.
func (l Layout) Stride() int32 {
	if len(l.attrs) == 0 {
		return 0
	}
	return l.attrs[0].Stride
}

// Select returns a layout with only the named attributes. Offsets and the
// stride are kept, so the subset still describes the same buffer.
func (l Layout) Select(names ...string) (Layout, error) {
	attrs := make([]Attribute, 0, len(names))
	for _, name := range names {
		a, ok := l.Get(name)
		if !ok {
			return Layout{}, fmt.Errorf("%w: no attribute %q", ErrInvalidLayout, name)
		}
		attrs = append(attrs, a)
	}
	return NewLayout(attrs...)
}
