// Package locale maps the host's numeric language keys to BCP 47 tags.
package locale

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Table maps language keys to tags.
type Table struct {
	keys    []int
	tags    []language.Tag
	matcher language.Matcher
}

// Default is the host's language table.
var Default = MustNew(map[int]string{
	0: "en",
	1: "ja",
	2: "ko",
	3: "es",
	4: "fr",
	5: "zh-Hans",
	6: "de",
	7: "pt-BR",
})

// New builds a table from key to tag text.
func New(entries map[int]string) (*Table, error) {
	t := &Table{}
	for key := range entries {
		t.keys = append(t.keys, key)
	}
	slices.Sort(t.keys)
	for _, key := range t.keys {
		tag, err := language.Parse(entries[key])
		if err != nil {
			return nil, fmt.Errorf("language %d: %w", key, err)
		}
		if slices.Contains(t.tags, tag) {
			return nil, fmt.Errorf("language %d: tag %s is already mapped", key, tag)
		}
		t.tags = append(t.tags, tag)
	}
	t.matcher = language.NewMatcher(t.tags)
	return t, nil
}

// MustNew is New for package level tables.
func MustNew(entries map[int]string) *Table {
	t, err := New(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTable reads a table from "key=tag" pairs separated by commas, for
// example "0=en,1=ja".
func ParseTable(s string) (*Table, error) {
	entries := make(map[int]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("language mapping %q: want key=tag", pair)
		}
		key, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("language mapping %q: %w", pair, err)
		}
		entries[key] = strings.TrimSpace(v)
	}
	return New(entries)
}

// Keys returns the mapped language keys in ascending order.
func (t *Table) Keys() []int { return slices.Clone(t.keys) }

// Tag returns the tag of a language key.
func (t *Table) Tag(key int) (language.Tag, bool) {
	i, ok := slices.BinarySearch(t.keys, key)
	if !ok {
		return language.Und, false
	}
	return t.tags[i], true
}

// Name returns the tag text of key, or the key itself when it is not
// mapped.
func (t *Table) Name(key int) string {
	if tag, ok := t.Tag(key); ok {
		return tag.String()
	}
	return strconv.Itoa(key)
}

// Parse reads a language key from its number or from any BCP 47 tag. Tags
// are matched to the closest mapped language, so "en-GB" finds English and
// "zh-CN" finds simplified Chinese.
func (t *Table) Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if key, err := strconv.Atoi(s); err == nil {
		return key, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("language %q: %w", s, err)
	}
	if len(t.tags) == 0 {
		return 0, fmt.Errorf("language %q: no languages are mapped", s)
	}
	_, i, conf := t.matcher.Match(tag)
	if conf < language.High {
		return 0, fmt.Errorf("language %q: no mapped language matches", s)
	}
	return t.keys[i], nil
}
