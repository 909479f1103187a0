package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/rootloader/internal/ctxlog"
)

// Candidate is one discovered manifest. Err is set when the manifest could
// not be read, decoded or validated; the resolver rejects such candidates
// as malformed.
type Candidate struct {
	// Dir is the bud directory.
	Dir string
	// Path is the manifest file.
	Path     string
	Manifest *Manifest
	Err      error
}

// Name identifies the candidate in reports: the manifest id when there is
// one, else the directory name.
func (c Candidate) Name() string {
	if c.Manifest != nil && c.Manifest.ID != "" {
		return c.Manifest.ID
	}
	return filepath.Base(c.Dir)
}

// Discover reads one manifest from every immediate sub-directory of root,
// in directory name order. Directories without a manifest are skipped.
func Discover(ctx context.Context, root string) ([]Candidate, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Discovering buds.", "path", root)

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Buds directory does not exist.", "path", root)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read buds directory %s: %w", root, err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		c, ok := Load(dir)
		if !ok {
			logger.Debug("Skipping directory without a manifest.", "dir", dir)
			continue
		}
		if c.Err != nil {
			logger.Error("Failed to read bud manifest.", "path", c.Path, "error", c.Err)
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		logger.Debug("Discovered no buds.")
	} else {
		logger.Info("Discovered buds.", "count", len(candidates))
	}
	return candidates, nil
}

// Load reads the manifest of one bud directory. It reports false when the
// directory carries none of FileNames.
func Load(dir string) (Candidate, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		c := Candidate{Dir: dir, Path: path}
		if err != nil {
			c.Err = fmt.Errorf("%w: %w", ErrInvalid, err)
			return c, true
		}
		m, err := Decode(path, data)
		if err != nil {
			c.Err = err
			return c, true
		}
		c.Manifest = m
		if err := m.Validate(); err != nil {
			c.Err = err
		}
		return c, true
	}
	return Candidate{}, false
}
