package codec

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrFieldCountMismatch means a line split into the wrong number of
	// fields. Guessing the missing ones would shift every later field, so
	// the error is always fatal.
	ErrFieldCountMismatch = errors.New("field count mismatch")
	// ErrFieldValue means a value does not parse as its declared kind or
	// contains a delimiter reserved by its position.
	ErrFieldValue = errors.New("invalid field value")
	// ErrUnknownField means a shape has no field with the requested name.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldKind means an accessor was used on a field of another kind.
	ErrFieldKind = errors.New("field kind mismatch")
)

// FieldError carries the location of a codec failure.
type FieldError struct {
	Shape string
	Field string
	Text  string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v (text %q)", e.Shape, e.Err, e.Text)
	}
	return fmt.Sprintf("%s.%s: %v (text %q)", e.Shape, e.Field, e.Err, e.Text)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Codec is the contract every table record satisfies: it renders itself as
// one delimited line and reads itself back from one.
type Codec interface {
	Serialize() string
	Deserialize(text string) error
}

type value interface {
	text() string
	clone() value
}

type scalar struct {
	raw string
}

func (s *scalar) text() string { return s.raw }
func (s *scalar) clone() value { return &scalar{raw: s.raw} }

type list struct {
	delim string
	items []value
}

func (l *list) text() string {
	parts := make([]string, len(l.items))
	for i, it := range l.items {
		parts[i] = it.text()
	}
	return strings.Join(parts, l.delim)
}

func (l *list) clone() value {
	c := &list{delim: l.delim, items: make([]value, len(l.items))}
	for i, it := range l.items {
		c.items[i] = it.clone()
	}
	return c
}

// Record is one parsed line of a table.
type Record struct {
	shape *Shape
	// outer holds the delimiters of every enclosing level; a value written
	// into this record must not contain any of them.
	outer  []string
	values []value
}

var _ Codec = (*Record)(nil)

// New returns a record of the given shape filled with field defaults.
// Optional trailing fields start absent.
func New(shape *Shape) *Record {
	return newRecord(shape, nil)
}

func newRecord(shape *Shape, outer []string) *Record {
	r := &Record{shape: shape, outer: outer}
	for _, f := range shape.Fields {
		if f.Optional {
			break
		}
		r.values = append(r.values, r.newValue(f))
	}
	return r
}

// Parse reads one line of the given shape.
func Parse(shape *Shape, text string) (*Record, error) {
	r := &Record{shape: shape}
	if err := r.Deserialize(text); err != nil {
		return nil, err
	}
	return r, nil
}

// Deserialize replaces the record's values with the ones parsed from text.
func (r *Record) Deserialize(text string) error {
	values, err := r.parseFields(text)
	if err != nil {
		return err
	}
	r.values = values
	return nil
}

// Serialize renders the record as one line.
func (r *Record) Serialize() string {
	parts := make([]string, len(r.values))
	for i, v := range r.values {
		parts[i] = v.text()
	}
	return strings.Join(parts, r.shape.Delimiter)
}

func (r *Record) text() string { return r.Serialize() }
func (r *Record) clone() value { return r.Clone() }

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := &Record{shape: r.shape, outer: slices.Clone(r.outer), values: make([]value, len(r.values))}
	for i, v := range r.values {
		c.values[i] = v.clone()
	}
	return c
}

// Shape returns the record's shape.
func (r *Record) Shape() *Shape {
	return r.shape
}

// Has reports whether the named field is present on the line. Only optional
// trailing fields can be absent.
func (r *Record) Has(name string) bool {
	i, ok := r.shape.index[name]
	return ok && i < len(r.values)
}

func (r *Record) parseFields(text string) ([]value, error) {
	shape := r.shape
	parts := strings.Split(text, shape.Delimiter)
	if len(parts) < shape.required || len(parts) > len(shape.Fields) {
		want := strconv.Itoa(len(shape.Fields))
		if shape.required != len(shape.Fields) {
			want = fmt.Sprintf("%d to %d", shape.required, len(shape.Fields))
		}
		return nil, &FieldError{
			Shape: shape.Name,
			Text:  text,
			Err:   fmt.Errorf("%w: want %s, got %d", ErrFieldCountMismatch, want, len(parts)),
		}
	}
	values := make([]value, len(parts))
	for i, part := range parts {
		v, err := r.parseValue(shape.Fields[i], part, r.inner())
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (r *Record) parseValue(f Field, text string, outer []string) (value, error) {
	switch f.Kind {
	case KindList:
		l := &list{delim: f.Delimiter}
		if text == "" {
			return l, nil
		}
		itemOuter := append(slices.Clone(outer), f.Delimiter)
		for _, part := range strings.Split(text, f.Delimiter) {
			item, err := r.parseValue(*f.Elem, part, itemOuter)
			if err != nil {
				return nil, err
			}
			l.items = append(l.items, item)
		}
		return l, nil
	case KindNested:
		nested := &Record{shape: f.Shape, outer: outer}
		values, err := nested.parseFields(text)
		if err != nil {
			return nil, err
		}
		nested.values = values
		return nested, nil
	default:
		if err := checkScalar(f.Kind, text); err != nil {
			return nil, &FieldError{Shape: r.shape.Name, Field: f.Name, Text: text, Err: err}
		}
		return &scalar{raw: text}, nil
	}
}

// inner returns the delimiters a value directly inside r must avoid.
func (r *Record) inner() []string {
	return append(slices.Clone(r.outer), r.shape.Delimiter)
}

func (r *Record) newValue(f Field) value {
	switch f.Kind {
	case KindList:
		if f.Default != "" {
			if v, err := r.parseValue(f, f.Default, r.inner()); err == nil {
				return v
			}
		}
		return &list{delim: f.Delimiter}
	case KindNested:
		return newRecord(f.Shape, r.inner())
	default:
		return &scalar{raw: f.Default}
	}
}

func (r *Record) lookup(name string) (int, Field, error) {
	i, ok := r.shape.index[name]
	if !ok {
		return 0, Field{}, &FieldError{Shape: r.shape.Name, Field: name, Err: ErrUnknownField}
	}
	return i, r.shape.Fields[i], nil
}

// set stores v at position i, materializing absent optional fields before it.
func (r *Record) set(i int, v value) {
	for len(r.values) <= i {
		r.values = append(r.values, r.newValue(r.shape.Fields[len(r.values)]))
	}
	r.values[i] = v
}

func (r *Record) scalarRaw(name string, kinds ...Kind) (string, Field, error) {
	i, f, err := r.lookup(name)
	if err != nil {
		return "", f, err
	}
	if !slices.Contains(kinds, f.Kind) {
		return "", f, &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: field is %s", ErrFieldKind, f.Kind)}
	}
	if i >= len(r.values) {
		return f.Default, f, nil
	}
	return r.values[i].text(), f, nil
}

// Raw returns the text of any field as it would be serialized.
func (r *Record) Raw(name string) (string, error) {
	i, f, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	if i >= len(r.values) {
		return r.newValue(f).text(), nil
	}
	return r.values[i].text(), nil
}

// Int returns an int field. A blank value reads as zero.
func (r *Record) Int(name string) (int, error) {
	raw, _, err := r.scalarRaw(name, KindInt)
	if err != nil {
		return 0, err
	}
	return parseInt(raw)
}

// Float returns a float field. A blank value reads as zero.
func (r *Record) Float(name string) (float64, error) {
	raw, _, err := r.scalarRaw(name, KindFloat)
	if err != nil {
		return 0, err
	}
	return parseFloat(raw)
}

// Bool returns a bool field. A blank value reads as false.
func (r *Record) Bool(name string) (bool, error) {
	raw, _, err := r.scalarRaw(name, KindBool)
	if err != nil {
		return false, err
	}
	return parseBool(raw)
}

// Text returns a string or enum field.
func (r *Record) Text(name string) (string, error) {
	raw, _, err := r.scalarRaw(name, KindString, KindEnum)
	return raw, err
}

// SetInt writes an int field.
func (r *Record) SetInt(name string, v int) error {
	return r.setScalar(name, strconv.Itoa(v), KindInt)
}

// SetFloat writes a float field using the shortest text that reads back
// to the same single-precision value.
func (r *Record) SetFloat(name string, v float64) error {
	return r.setScalar(name, formatFloat(v), KindFloat)
}

// SetBool writes a bool field as True or False.
func (r *Record) SetBool(name string, v bool) error {
	return r.setScalar(name, formatBool(v), KindBool)
}

// SetText writes a string or enum field.
func (r *Record) SetText(name string, v string) error {
	return r.setScalar(name, v, KindString, KindEnum)
}

func (r *Record) setScalar(name, raw string, kinds ...Kind) error {
	i, f, err := r.lookup(name)
	if err != nil {
		return err
	}
	if !slices.Contains(kinds, f.Kind) {
		return &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: field is %s", ErrFieldKind, f.Kind)}
	}
	if err := r.checkText(f, raw, r.inner()); err != nil {
		return err
	}
	r.set(i, &scalar{raw: raw})
	return nil
}

func (r *Record) checkText(f Field, raw string, forbidden []string) error {
	for _, d := range forbidden {
		if strings.Contains(raw, d) {
			return &FieldError{Shape: r.shape.Name, Field: f.Name, Text: raw, Err: fmt.Errorf("%w: contains delimiter %q", ErrFieldValue, d)}
		}
	}
	for _, d := range []string{"\n", "\r"} {
		if strings.Contains(raw, d) {
			return &FieldError{Shape: r.shape.Name, Field: f.Name, Text: raw, Err: fmt.Errorf("%w: contains delimiter %q", ErrFieldValue, d)}
		}
	}
	if err := checkScalar(f.Kind, raw); err != nil {
		return &FieldError{Shape: r.shape.Name, Field: f.Name, Text: raw, Err: err}
	}
	return nil
}

func (r *Record) listAt(name string) (int, Field, *list, error) {
	i, f, err := r.lookup(name)
	if err != nil {
		return 0, f, nil, err
	}
	if f.Kind != KindList {
		return 0, f, nil, &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: field is %s", ErrFieldKind, f.Kind)}
	}
	if i >= len(r.values) {
		return i, f, &list{delim: f.Delimiter}, nil
	}
	return i, f, r.values[i].(*list), nil
}

// Len returns the number of items in a list field.
func (r *Record) Len(name string) (int, error) {
	_, _, l, err := r.listAt(name)
	if err != nil {
		return 0, err
	}
	return len(l.items), nil
}

// Items returns the nested records of a list field. The records are live:
// changing them changes r.
func (r *Record) Items(name string) ([]*Record, error) {
	_, f, l, err := r.listAt(name)
	if err != nil {
		return nil, err
	}
	if f.Elem.Kind != KindNested {
		return nil, &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: list of %s", ErrFieldKind, f.Elem.Kind)}
	}
	out := make([]*Record, len(l.items))
	for i, it := range l.items {
		out[i] = it.(*Record)
	}
	return out, nil
}

// Scalars returns the raw item texts of a list of scalars.
func (r *Record) Scalars(name string) ([]string, error) {
	_, f, l, err := r.listAt(name)
	if err != nil {
		return nil, err
	}
	if f.Elem.Kind == KindNested {
		return nil, &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: list of records", ErrFieldKind)}
	}
	out := make([]string, len(l.items))
	for i, it := range l.items {
		out[i] = it.text()
	}
	return out, nil
}

// Ints returns a list of int scalars.
func (r *Record) Ints(name string) ([]int, error) {
	raws, err := r.Scalars(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(raws))
	for i, raw := range raws {
		if out[i], err = parseInt(raw); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NewItem returns a default record suitable for the list field name.
func (r *Record) NewItem(name string) (*Record, error) {
	_, f, _, err := r.listAt(name)
	if err != nil {
		return nil, err
	}
	if f.Elem.Kind != KindNested {
		return nil, &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: list of %s", ErrFieldKind, f.Elem.Kind)}
	}
	return newRecord(f.Elem.Shape, append(r.inner(), f.Delimiter)), nil
}

// SetItems replaces a list of nested records.
func (r *Record) SetItems(name string, items []*Record) error {
	i, f, _, err := r.listAt(name)
	if err != nil {
		return err
	}
	if f.Elem.Kind != KindNested {
		return &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: list of %s", ErrFieldKind, f.Elem.Kind)}
	}
	l := &list{delim: f.Delimiter}
	outer := append(r.inner(), f.Delimiter)
	for _, item := range items {
		if item.shape != f.Elem.Shape {
			return &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: item shape %s, want %s", ErrFieldKind, item.shape.Name, f.Elem.Shape.Name)}
		}
		c := item.Clone()
		c.outer = slices.Clone(outer)
		l.items = append(l.items, c)
	}
	r.set(i, l)
	return nil
}

// AppendItem adds a nested record to the end of a list field.
func (r *Record) AppendItem(name string, item *Record) error {
	items, err := r.Items(name)
	if err != nil {
		return err
	}
	return r.SetItems(name, append(items, item))
}

// SetScalars replaces a list of scalars with the given raw texts.
func (r *Record) SetScalars(name string, raws []string) error {
	i, f, _, err := r.listAt(name)
	if err != nil {
		return err
	}
	if f.Elem.Kind == KindNested {
		return &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: list of records", ErrFieldKind)}
	}
	l := &list{delim: f.Delimiter}
	forbidden := append(r.inner(), f.Delimiter)
	for _, raw := range raws {
		if err := r.checkText(*f.Elem, raw, forbidden); err != nil {
			return err
		}
		l.items = append(l.items, &scalar{raw: raw})
	}
	r.set(i, l)
	return nil
}

// Nested returns the live nested record held by a field.
func (r *Record) Nested(name string) (*Record, error) {
	i, f, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if f.Kind != KindNested {
		return nil, &FieldError{Shape: r.shape.Name, Field: name, Err: fmt.Errorf("%w: field is %s", ErrFieldKind, f.Kind)}
	}
	if i >= len(r.values) {
		r.set(i, r.newValue(f))
	}
	return r.values[i].(*Record), nil
}

// Assign writes a loosely typed value into a field. Scalars accept string,
// integer, float and bool values; lists accept []any (or their raw text);
// nested records accept map[string]any keyed by field name (or raw text).
// Configuration loaders use it to apply declarative content.
func (r *Record) Assign(name string, v any) error {
	i, f, err := r.lookup(name)
	if err != nil {
		return err
	}
	val, err := r.build(f, v, r.inner())
	if err != nil {
		return err
	}
	r.set(i, val)
	return nil
}

func (r *Record) build(f Field, v any, outer []string) (value, error) {
	switch f.Kind {
	case KindList:
		switch x := v.(type) {
		case string:
			return r.parseValue(f, x, outer)
		case []any:
			l := &list{delim: f.Delimiter}
			itemOuter := append(slices.Clone(outer), f.Delimiter)
			for _, it := range x {
				item, err := r.build(*f.Elem, it, itemOuter)
				if err != nil {
					return nil, err
				}
				l.items = append(l.items, item)
			}
			return l, nil
		}
	case KindNested:
		switch x := v.(type) {
		case string:
			return r.parseValue(f, x, outer)
		case *Record:
			if x.shape != f.Shape {
				break
			}
			c := x.Clone()
			c.outer = slices.Clone(outer)
			return c, nil
		case map[string]any:
			nested := newRecord(f.Shape, outer)
			keys := make([]string, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				if err := nested.Assign(k, x[k]); err != nil {
					return nil, err
				}
			}
			return nested, nil
		}
	default:
		raw, ok := formatScalar(f.Kind, v)
		if !ok {
			break
		}
		if err := r.checkText(f, raw, outer); err != nil {
			return nil, err
		}
		return &scalar{raw: raw}, nil
	}
	return nil, &FieldError{Shape: r.shape.Name, Field: f.Name, Text: fmt.Sprint(v), Err: fmt.Errorf("%w: cannot assign %T to %s", ErrFieldValue, v, f.Kind)}
}

func formatScalar(kind Kind, v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		if kind == KindFloat {
			return formatFloat(float64(x)), true
		}
		return strconv.Itoa(x), true
	case int64:
		if kind == KindFloat {
			return formatFloat(float64(x)), true
		}
		return strconv.FormatInt(x, 10), true
	case float64:
		if kind == KindInt {
			if x != math.Trunc(x) {
				return "", false
			}
			return strconv.FormatInt(int64(x), 10), true
		}
		return formatFloat(x), true
	case bool:
		if kind != KindBool && kind != KindString {
			return "", false
		}
		return formatBool(x), true
	}
	return "", false
}

func checkScalar(kind Kind, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	var err error
	switch kind {
	case KindInt:
		_, err = parseInt(text)
	case KindFloat:
		_, err = parseFloat(text)
	case KindBool:
		_, err = parseBool(text)
	}
	return err
}

func parseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an int", ErrFieldValue, raw)
	}
	return n, nil
}

func parseFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a float", ErrFieldValue, raw)
	}
	return f, nil
}

func parseBool(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "", strings.EqualFold(raw, "false"):
		return false, nil
	case strings.EqualFold(raw, "true"):
		return true, nil
	}
	return false, fmt.Errorf("%w: %q is not a bool", ErrFieldValue, raw)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 32)
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
