package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/rootloader/internal/manifest"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Manifest returns a valid manifest.json for a bud. Dependencies prefixed
// with "?" are optional and ones prefixed with "!" are incompatibilities.
func Manifest(id, assemblyIdentity string, deps ...string) string {
	m := manifest.Manifest{
		AssemblyIdentity: assemblyIdentity,
		ID:               id,
		DisplayName:      id,
		Version:          "1.0.0",
		Author:           "tests",
	}
	for _, d := range deps {
		switch {
		case strings.HasPrefix(d, "?"):
			m.Dependencies = append(m.Dependencies, manifest.Dependency{ID: d[1:], Optional: true})
		case strings.HasPrefix(d, "!"):
			m.Incompatibilities = append(m.Incompatibilities, manifest.Incompatibility{ID: d[1:]})
		default:
			m.Dependencies = append(m.Dependencies, manifest.Dependency{ID: d})
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("marshal manifest: %v", err))
	}
	return string(b)
}
