package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vk/rootloader/internal/ctxlog"
	"github.com/vk/rootloader/internal/dag"
	"github.com/vk/rootloader/internal/manifest"
)

// Activation is a manifest cleared for activation. The loader turns it into
// something callable; the resolver only fixes the order.
type Activation struct {
	Manifest *manifest.Manifest
	Dir      string
	Path     string
}

// ID returns the manifest id.
func (a Activation) ID() string { return a.Manifest.ID }

// Result is the outcome of one resolution pass.
type Result struct {
	// Order lists the activated manifests, every dependency before its
	// dependents.
	Order []Activation
	// Rejections lists every rejected manifest, grouped by the stage that
	// rejected it.
	Rejections []*Rejection
}

// IDs returns the ids of Order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Order))
	for i, a := range r.Order {
		ids[i] = a.ID()
	}
	return ids
}

// Rejected returns the rejection of the given id, if any. When several
// manifests shared the id, the latest rejection is returned.
func (r *Result) Rejected(id string) (*Rejection, bool) {
	for i := len(r.Rejections) - 1; i >= 0; i-- {
		if r.Rejections[i].ID == id {
			return r.Rejections[i], true
		}
	}
	return nil, false
}

type entry struct {
	candidate manifest.Candidate
}

func (e *entry) id() string { return e.candidate.Manifest.ID }

type pass struct {
	logger *slog.Logger
	alive  map[string]*entry
	result *Result
}

// Resolve validates a discovered set of manifests against each other and
// computes the activation order. It never stops at the first problem: every
// rejection is collected into the result.
func Resolve(ctx context.Context, candidates []manifest.Candidate) *Result {
	p := &pass{
		logger: ctxlog.FromContext(ctx),
		alive:  make(map[string]*entry),
		result: &Result{},
	}

	p.dropMalformed(candidates)
	p.dropIncompatible()
	p.dropMissing()
	p.dropCycles()
	p.dropMissing()
	p.order()

	return p.result
}

func (p *pass) reject(e *entry, reason Reason, detail string) {
	rej := &Rejection{
		ID:       e.id(),
		Path:     e.candidate.Path,
		Reason:   reason,
		Detail:   detail,
		manifest: e.candidate.Manifest,
	}
	p.result.Rejections = append(p.result.Rejections, rej)
	delete(p.alive, rej.ID)
	p.logger.Warn("Bud rejected.", "bud", rej.ID, "reason", reason, "detail", detail)
}

// dropMalformed rejects unreadable manifests and keeps one manifest per id:
// the highest version, then the first discovered.
func (p *pass) dropMalformed(candidates []manifest.Candidate) {
	byID := make(map[string][]*entry)
	var ids []string
	for _, c := range candidates {
		if c.Err != nil || c.Manifest == nil {
			err := c.Err
			if err == nil {
				err = fmt.Errorf("%w: no manifest", manifest.ErrInvalid)
			}
			rej := &Rejection{
				ID:       c.Name(),
				Path:     c.Path,
				Reason:   MalformedManifest,
				Detail:   err.Error(),
				Err:      err,
				manifest: c.Manifest,
			}
			p.result.Rejections = append(p.result.Rejections, rej)
			p.logger.Warn("Bud rejected.", "bud", rej.ID, "reason", rej.Reason, "detail", rej.Detail)
			continue
		}
		id := c.Manifest.ID
		if _, seen := byID[id]; !seen {
			ids = append(ids, id)
		}
		byID[id] = append(byID[id], &entry{candidate: c})
	}

	for _, id := range ids {
		group := byID[id]
		winner := group[0]
		for _, e := range group[1:] {
			if manifest.CompareVersions(e.candidate.Manifest, winner.candidate.Manifest) > 0 {
				winner = e
			}
		}
		p.alive[id] = winner
		for _, e := range group {
			if e == winner {
				continue
			}
			rej := &Rejection{
				ID:       id,
				Path:     e.candidate.Path,
				Reason:   DuplicateID,
				Detail:   fmt.Sprintf("version %s superseded by version %s at %s", e.candidate.Manifest.Version, winner.candidate.Manifest.Version, winner.candidate.Path),
				manifest: e.candidate.Manifest,
			}
			p.result.Rejections = append(p.result.Rejections, rej)
			p.logger.Warn("Bud rejected.", "bud", id, "reason", rej.Reason, "detail", rej.Detail)
		}
	}
}

func (p *pass) aliveIDs() []string {
	ids := make([]string, 0, len(p.alive))
	for id := range p.alive {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// dropIncompatible rejects both sides of every incompatibility, whichever
// side declared it.
func (p *pass) dropIncompatible() {
	conflicts := make(map[string][]string)
	for _, id := range p.aliveIDs() {
		for _, inc := range p.alive[id].candidate.Manifest.Incompatibilities {
			if _, ok := p.alive[inc.ID]; !ok {
				continue
			}
			conflicts[id] = append(conflicts[id], inc.ID)
			conflicts[inc.ID] = append(conflicts[inc.ID], id)
		}
	}
	for _, id := range p.aliveIDs() {
		with := conflicts[id]
		if len(with) == 0 {
			continue
		}
		slices.Sort(with)
		with = slices.Compact(with)
		p.reject(p.alive[id], Incompatible, "incompatible with "+strings.Join(with, ", "))
	}
}

func (p *pass) hardGraph() *dag.Graph {
	g := dag.New()
	for _, id := range p.aliveIDs() {
		g.AddNode(id)
	}
	for _, id := range p.aliveIDs() {
		for _, dep := range p.alive[id].candidate.Manifest.HardDependencies() {
			if g.Has(dep) {
				// Both nodes exist and validation rules out self edges.
				_ = g.AddEdge(dep, id)
			}
		}
	}
	return g
}

// dropCycles rejects exactly the members of every hard dependency cycle.
func (p *pass) dropCycles() {
	g := p.hardGraph()
	if err := g.DetectCycles(); err == nil {
		return
	}
	for _, cycle := range g.StronglyConnected() {
		for _, id := range cycle {
			deps, _ := g.Dependencies(id)
			deps = slices.DeleteFunc(deps, func(dep string) bool { return !slices.Contains(cycle, dep) })
			detail := fmt.Sprintf("hard dependency cycle among %s: %s depends on %s",
				strings.Join(cycle, ", "), id, strings.Join(deps, ", "))
			p.reject(p.alive[id], CyclicDependency, detail)
		}
	}
}

// dropMissing rejects manifests whose hard dependencies are absent or
// rejected, then everything that depends on them.
func (p *pass) dropMissing() {
	g := p.hardGraph()
	var queue []string
	for _, id := range g.Nodes() {
		for _, dep := range p.alive[id].candidate.Manifest.HardDependencies() {
			if g.Has(dep) {
				continue
			}
			detail := fmt.Sprintf("hard dependency %s was not found", dep)
			if rej, ok := p.result.Rejected(dep); ok {
				detail = fmt.Sprintf("hard dependency %s was rejected (%s)", dep, rej.Reason)
			}
			p.reject(p.alive[id], MissingHardDependency, detail)
			queue = append(queue, id)
			break
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		// id is a node of g, so Dependents cannot fail.
		dependents, _ := g.Dependents(id)
		for _, dependent := range dependents {
			e, ok := p.alive[dependent]
			if !ok {
				continue
			}
			p.reject(e, MissingHardDependency, fmt.Sprintf("hard dependency %s was rejected (%s)", id, MissingHardDependency))
			queue = append(queue, dependent)
		}
	}
}

// order sorts the surviving manifests. Optional dependencies add an edge
// only when both ends survive and the edge closes no cycle; dependents are
// visited in id order so the same input always drops the same edge.
func (p *pass) order() {
	g := p.hardGraph()
	for _, id := range g.Nodes() {
		m := p.alive[id].candidate.Manifest
		var optional []string
		for _, d := range m.Dependencies {
			if d.Optional {
				optional = append(optional, d.ID)
			}
		}
		slices.Sort(optional)
		for _, dep := range optional {
			if !g.Has(dep) {
				continue
			}
			if g.Reaches(id, dep) {
				p.logger.Debug("Ignoring optional dependency that would close a cycle.", "bud", id, "dependency", dep)
				continue
			}
			_ = g.AddEdge(dep, id)
		}
	}

	ids, err := g.TopologicalOrder()
	if err != nil {
		// Hard cycles were rejected and optional edges never close one.
		p.logger.Error("Load order could not be computed.", "error", err)
		for _, id := range g.Nodes() {
			p.reject(p.alive[id], CyclicDependency, err.Error())
		}
		return
	}
	for _, id := range ids {
		c := p.alive[id].candidate
		p.result.Order = append(p.result.Order, Activation{Manifest: c.Manifest, Dir: c.Dir, Path: c.Path})
	}
	p.logger.Debug("Resolved load order.", "order", ids)
}
