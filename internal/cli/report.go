package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vk/rootloader/internal/activation"
	"github.com/vk/rootloader/internal/assets"
	"github.com/vk/rootloader/internal/locale"
	"github.com/vk/rootloader/internal/resolver"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return usageError("invalid format %q: must be 'text', 'json' or 'yaml'", format)
}

// resolution is the serialized form of a resolver result.
type resolution struct {
	Order    []string              `json:"order" yaml:"order"`
	Rejected []*resolver.Rejection `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

func writeResolution(w io.Writer, format string, res *resolver.Result) error {
	out := resolution{Order: res.IDs(), Rejected: res.Rejections}
	switch format {
	case formatJSON:
		return writeJSON(w, out)
	case formatYAML:
		return yaml.NewEncoder(w).Encode(out)
	}

	var b strings.Builder
	writeOrder(&b, out.Order)
	writeRejected(&b, out.Rejected)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeReport(w io.Writer, format string, r *activation.Report, langs *locale.Table) error {
	switch format {
	case formatJSON:
		return writeJSON(w, r)
	case formatYAML:
		return yaml.NewEncoder(w).Encode(r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", r.SessionID)
	writeOrder(&b, r.Order)
	writeRejected(&b, r.Rejected)
	fmt.Fprintf(&b, "Activated: %d of %d\n", len(r.Activated), len(r.Order))
	if len(r.Failed) > 0 {
		b.WriteString("Failed:\n")
		for _, f := range r.Failed {
			fmt.Fprintf(&b, "  %s: %s\n", f.ID, f.Error)
		}
	}
	if len(r.Provenance) > 0 {
		b.WriteString("Overridden content:\n")
		for _, ev := range r.Provenance {
			name := ev.NamedID
			if name == "" {
				name = fmt.Sprintf("#%d", ev.GameID)
			}
			fmt.Fprintf(&b, "  %s %s (created by %s) <- %s: %s\n", ev.Kind, name, ev.CreatorID, ev.OwnerID, ev.Operation)
		}
	}
	if len(r.Outputs) == 0 {
		b.WriteString("Tables written: none\n")
	} else {
		b.WriteString("Tables written:\n")
		for _, o := range r.Outputs {
			if o.Language < 0 {
				fmt.Fprintf(&b, "  %s (%d bytes)\n", assets.TablePath(o.Table), o.Bytes)
				continue
			}
			fmt.Fprintf(&b, "  %s [%s] (%d bytes)\n", assets.LocalizedPath(o.Language, o.Table), langs.Name(o.Language), o.Bytes)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeOrder(b *strings.Builder, order []string) {
	if len(order) == 0 {
		b.WriteString("Load order: none\n")
		return
	}
	b.WriteString("Load order:\n")
	for i, id := range order {
		fmt.Fprintf(b, "  %d. %s\n", i+1, id)
	}
}

func writeRejected(b *strings.Builder, rejected []*resolver.Rejection) {
	if len(rejected) == 0 {
		return
	}
	b.WriteString("Rejected:\n")
	for _, r := range rejected {
		fmt.Fprintf(b, "  %s (%s): %s\n", r.ID, r.Reason, r.Detail)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
