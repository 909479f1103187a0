package hcl

import (
	"errors"
	"fmt"

	"github.com/vk/rootloader/internal/locale"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	errNull    = errors.New("value is null")
	errUnknown = errors.New("value is not known")
)

// toGo converts an evaluated cty value into the loose Go form the content
// API accepts: string, int, float64, bool, []any and map[string]any.
func toGo(v cty.Value) (any, error) {
	v, _ = v.Unmark()
	if v.IsNull() {
		return nil, errNull
	}
	if !v.IsWhollyKnown() {
		return nil, errUnknown
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var i int
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			idx, elem := it.Element()
			g, err := toGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%s]: %w", idx.AsBigFloat().String(), err)
			}
			out = append(out, g)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			g, err := toGo(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key.AsString(), err)
			}
			out[key.AsString()] = g
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
}

// fields converts the fields attribute of a table or text block.
func fields(v cty.Value) (map[string]any, error) {
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("fields must be an object, got %s", ty.FriendlyName())
	}
	g, err := toGo(v)
	if err != nil {
		return nil, err
	}
	return g.(map[string]any), nil
}

// language resolves a language attribute. Numbers are taken as language
// keys, strings as language tags or keys.
func language(v cty.Value, langs *locale.Table) (int, error) {
	if v.IsNull() || !v.IsKnown() {
		return 0, fmt.Errorf("language: %w", errNull)
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return 0, fmt.Errorf("language: %w", err)
	}
	return langs.Parse(s.AsString())
}
