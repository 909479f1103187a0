// Package assets reads the host's baseline text tables and writes their
// patched replacements.
//
// A data root is laid out the way the host ships it:
//
//	Data/<Table>.txt
//	Data/Dialogues<lang>/<Table>.txt
//	Names/<Kind>.txt
//
// Names files are optional and hold the host's enum names for baseline
// content, one per game id. Output uses the same layout.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	dataDir        = "Data"
	namesDir       = "Names"
	dialoguePrefix = "Dialogues"
	ext            = ".txt"
)

// TablePath returns the slash separated path of a non-localized table.
func TablePath(name string) string { return path.Join(dataDir, name+ext) }

// LocalizedPath returns the slash separated path of one language of a
// localized table.
func LocalizedPath(lang int, name string) string {
	return path.Join(dataDir, dialoguePrefix+strconv.Itoa(lang), name+ext)
}

// NamesPath returns the slash separated path of a kind's names file.
func NamesPath(kind string) string { return path.Join(namesDir, kind+ext) }

// Source reads baseline tables from a file system.
type Source struct {
	fsys fs.FS
}

// Open returns a source over the data root dir.
func Open(dir string) *Source { return &Source{fsys: os.DirFS(dir)} }

// FromFS returns a source over fsys, which is rooted at the data root.
func FromFS(fsys fs.FS) *Source { return &Source{fsys: fsys} }

func (s *Source) read(p string) (string, bool, error) {
	b, err := fs.ReadFile(s.fsys, p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", p, err)
	}
	return string(b), true, nil
}

// Table returns the baseline blob of a non-localized table. ok is false if
// the file does not exist.
func (s *Source) Table(name string) (blob string, ok bool, err error) {
	return s.read(TablePath(name))
}

// LocalizedTable returns the baseline blob of one language of a table.
func (s *Source) LocalizedTable(lang int, name string) (blob string, ok bool, err error) {
	return s.read(LocalizedPath(lang, name))
}

// Languages returns the language keys that have a Dialogues directory, in
// ascending order.
func (s *Source) Languages() ([]int, error) {
	entries, err := fs.ReadDir(s.fsys, dataDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dataDir, err)
	}
	var langs []int
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), dialoguePrefix)
		if !e.IsDir() || !ok {
			continue
		}
		lang, err := strconv.Atoi(suffix)
		if err != nil || lang < 0 {
			continue
		}
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs, nil
}

// Names returns the baseline named ids of a kind, one per game id. Blank
// lines leave a game id unnamed. A missing file yields no names.
func (s *Source) Names(kind string) ([]string, error) {
	blob, ok, err := s.read(NamesPath(kind))
	if err != nil || !ok {
		return nil, err
	}
	blob = strings.TrimSuffix(strings.ReplaceAll(blob, "\r\n", "\n"), "\n")
	if blob == "" {
		return nil, nil
	}
	names := strings.Split(blob, "\n")
	for i, n := range names {
		names[i] = strings.TrimSpace(n)
	}
	return names, nil
}

// Dir writes patched tables under an output root.
type Dir struct {
	Root string
}

func (d Dir) write(p, blob string) error {
	full := filepath.Join(d.Root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(full, []byte(blob), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// WriteTable writes a non-localized table.
func (d Dir) WriteTable(name, blob string) error { return d.write(TablePath(name), blob) }

// WriteLocalized writes one language of a localized table.
func (d Dir) WriteLocalized(lang int, name, blob string) error {
	return d.write(LocalizedPath(lang, name), blob)
}
