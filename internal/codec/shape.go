package codec

import (
	"fmt"
	"strings"
)

// Kind is the type of a single field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindEnum
	KindList
	KindNested
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindList:
		return "list"
	case KindNested:
		return "nested"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) scalar() bool {
	return k != KindList && k != KindNested
}

// Field describes one positional field of a Shape.
type Field struct {
	Name string
	Kind Kind
	// Optional fields may be missing from the end of a line.
	Optional bool
	// Default is the raw text a new record starts with.
	Default string
	// Delimiter separates list items.
	Delimiter string
	// Elem describes list items.
	Elem *Field
	// Shape describes a nested record, or list items of kind KindNested.
	Shape *Shape
}

// WithDefault returns a copy of f whose new-record text is raw.
func (f Field) WithDefault(raw string) Field {
	f.Default = raw
	return f
}

// AsOptional returns a copy of f that may be omitted at the end of a line.
func (f Field) AsOptional() Field {
	f.Optional = true
	return f
}

func String(name string) Field { return Field{Name: name, Kind: KindString} }
func Int(name string) Field    { return Field{Name: name, Kind: KindInt, Default: "0"} }
func Float(name string) Field  { return Field{Name: name, Kind: KindFloat, Default: "0"} }
func Bool(name string) Field   { return Field{Name: name, Kind: KindBool, Default: "False"} }
func Enum(name string) Field   { return Field{Name: name, Kind: KindEnum} }

// List declares a field holding items separated by delimiter.
func List(name, delimiter string, elem Field) Field {
	return Field{Name: name, Kind: KindList, Delimiter: delimiter, Elem: &elem}
}

// Nested declares a field holding one record of the given shape.
func Nested(name string, shape *Shape) Field {
	return Field{Name: name, Kind: KindNested, Shape: shape}
}

// Sub declares a list element that is a nested record.
func Sub(shape *Shape) Field {
	return Field{Name: shape.Name, Kind: KindNested, Shape: shape}
}

// Shape is the field layout of one record kind.
type Shape struct {
	Name      string
	Delimiter string
	Fields    []Field

	index    map[string]int
	required int
}

// NewShape builds and checks a shape. An invalid shape is a programmer
// error, so NewShape panics instead of returning an error.
func NewShape(name, delimiter string, fields ...Field) *Shape {
	if delimiter == "" {
		panic(fmt.Sprintf("codec: shape %q has an empty delimiter", name))
	}
	s := &Shape{
		Name:      name,
		Delimiter: delimiter,
		Fields:    fields,
		index:     make(map[string]int, len(fields)),
	}
	seenOptional := false
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("codec: shape %q declares field %q twice", name, f.Name))
		}
		s.index[f.Name] = i
		if f.Optional {
			seenOptional = true
		} else {
			if seenOptional {
				panic(fmt.Sprintf("codec: shape %q has required field %q after an optional one", name, f.Name))
			}
			s.required++
		}
		checkField(name, delimiter, f)
	}
	return s
}

func checkField(shape, delimiter string, f Field) {
	switch f.Kind {
	case KindList:
		if f.Elem == nil || f.Delimiter == "" {
			panic(fmt.Sprintf("codec: list field %s.%s needs an element and a delimiter", shape, f.Name))
		}
		if f.Delimiter == delimiter {
			panic(fmt.Sprintf("codec: list field %s.%s reuses the record delimiter %q", shape, f.Name, delimiter))
		}
		if f.Elem.Kind == KindList {
			panic(fmt.Sprintf("codec: list field %s.%s cannot hold lists directly", shape, f.Name))
		}
		if f.Elem.Kind == KindNested && strings.Contains(f.Elem.Shape.Delimiter, f.Delimiter) {
			panic(fmt.Sprintf("codec: list field %s.%s collides with its item delimiter", shape, f.Name))
		}
	case KindNested:
		if f.Shape == nil {
			panic(fmt.Sprintf("codec: nested field %s.%s has no shape", shape, f.Name))
		}
		if f.Shape.Delimiter == delimiter {
			panic(fmt.Sprintf("codec: nested field %s.%s reuses the record delimiter %q", shape, f.Name, delimiter))
		}
	}
}

// Field returns the field named name.
func (s *Shape) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Required returns the number of fields every line must carry.
func (s *Shape) Required() int {
	return s.required
}
