// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scope implements the lexical-scope symbol table and, for its
// loop-scope variant, the on-demand φ constructor. A Scope is a plain data
// structure, deliberately NOT an IR node itself: visualization, if ever
// needed, would be a separate visitor over this structure rather than a
// graph node.
package scope

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/sonfront/simplelang/internal/ir"
)

// frame is an ordered name -> node-id mapping. Order matters for
// deterministic divergent-definition diagnostics and for any future
// graph-visualization dump of scope contents.
type frame = *orderedmap.OrderedMap[string, ir.ID]

func newFrame() frame { return orderedmap.New[string, ir.ID]() }

// loopState holds the bookkeeping specific to a loop-scope: the pristine
// head scope it was cloned from, the loop region its on-demand φs are
// rooted at, which names have already been phied, and how many frames
// existed at the moment of cloning (only names bound at or below that depth
// are eligible for the on-demand φ — anything declared fresh inside the
// loop body is local to one iteration, not loop-carried).
type loopState struct {
	head           *Scope
	region         ir.ID
	phied          map[string]bool
	phiedOrder     []string // insertion order, so EndLoop finalizes deterministically
	headFrameCount int
}

// Scope is a stack of lexical frames bound to a single Graph.
type Scope struct {
	graph  *ir.Graph
	frames []frame
	loop   *loopState
}

// NewRoot creates the outermost scope of a compilation, with $ctrl bound to
// the graph's start node and $arg0 bound to its argument projection.
func NewRoot(g *ir.Graph) *Scope {
	s := &Scope{graph: g, frames: []frame{newFrame()}}
	s.frames[0].Set(CtrlName, g.Start())
	s.frames[0].Set(Arg0Name, g.Arg())
	s.frames[0].Set(ArgSurfaceName, g.Arg())
	return s
}

// Push opens a new, empty lexical frame (entering a block).
func (s *Scope) Push() { s.frames = append(s.frames, newFrame()) }

// Pop discards the innermost frame (leaving a block). Callers must have
// released it along every non-error path.
func (s *Scope) Pop() { s.frames = s.frames[:len(s.frames)-1] }

// Depth returns the current frame-stack depth, used by jumpTo when pruning
// to a break target and by tests asserting a block restores its caller's
// depth.
func (s *Scope) Depth() int { return len(s.frames) }

// Define binds name to node in the top frame. It is fatal (redefined-name)
// to Define a name already present in that same frame.
func (s *Scope) Define(name string, node ir.ID) error {
	top := s.frames[len(s.frames)-1]
	if _, exists := top.Get(name); exists {
		return fmt.Errorf("redefined-name: %q already defined in this scope", name)
	}
	top.Set(name, node)
	return nil
}

// Lookup searches frames inner-to-outer and returns the bound node, or
// (InvalidID, false) if name is unbound anywhere. Inside a loop-scope, the
// first lookup of a loop-head-visible name materializes an on-demand φ
// before returning.
func (s *Scope) Lookup(name string) (ir.ID, bool) {
	_, id, ok := s.resolve(name)
	return id, ok
}

// Update rebinds an already-defined name in whatever frame currently holds
// it. It is fatal (undefined-name) to Update a name that isn't bound
// anywhere. Inside a loop-scope this may also trigger on-demand φ
// materialization (the write still counts as the "first access"), but the
// write itself always rebinds the loop-scope's local copy, never the φ —
// so later reads in this iteration see the post-write value, and only
// EndLoop feeds it back as the φ's second operand.
func (s *Scope) Update(name string, node ir.ID) error {
	idx, _, ok := s.resolve(name)
	if !ok {
		return fmt.Errorf("undefined-name: %q is not defined", name)
	}
	s.frames[idx].Set(name, node)
	return nil
}

// resolve walks frames inner-to-outer, materializing an on-demand loop φ on
// first access if this is a loop-scope and the name qualifies.
func (s *Scope) resolve(name string) (frameIdx int, id ir.ID, ok bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, exists := s.frames[i].Get(name); exists {
			if s.loop != nil && name != CtrlName && !s.loop.phied[name] && i < s.loop.headFrameCount {
				v = s.materializeLoopPhi(name, i)
			}
			return i, s.graph.Canon(v), true
		}
	}
	return -1, ir.InvalidID, false
}

func (s *Scope) materializeLoopPhi(name string, frameIdx int) ir.ID {
	headVal, _ := s.loop.head.frames[frameIdx].Get(name)
	typ := s.graph.Node(headVal).Type()
	if typ.IsInt() {
		typ = ir.TypeInteger.BOT // the value may differ on the back edge
	}
	phi := s.graph.NewPendingPhi(s.loop.region, typ, headVal)
	s.frames[frameIdx].Set(name, phi)
	s.loop.head.frames[frameIdx].Set(name, phi)
	if !s.loop.phied[name] {
		s.loop.phiedOrder = append(s.loop.phiedOrder, name)
	}
	s.loop.phied[name] = true
	return phi
}

// EndLoopScope detaches s from its loop context in place, returning s
// itself. Call this once on any clone taken from inside a loop (the exit
// scope) that must outlive the loop statement: without it, the clone would
// keep trying to materialize further on-demand φs against a loop region
// that endLoop has already finalized, leaving them permanently pending.
func (s *Scope) EndLoopScope() *Scope {
	s.loop = nil
	return s
}

// EndLoop finalizes every on-demand φ this loop-scope materialized, using
// bodyEnd's binding of each phied name as the second (post-body) operand,
// then wires the loop region's back-edge predecessor from bodyEnd's $ctrl.
// s must be the loop-scope returned by DupLoopScope; bodyEnd is the scope
// resulting from parsing the loop body to its end (already merged with any
// continue-scope).
func (s *Scope) EndLoop(bodyEnd *Scope) error {
	if s.loop == nil {
		return fmt.Errorf("EndLoop called on a non-loop scope")
	}
	for _, name := range s.loop.phiedOrder {
		// The head scope still binds the φ itself; s may already have been
		// rebound to the post-body value by a write in the body.
		var phiID ir.ID
		ok := false
		for i := len(s.loop.head.frames) - 1; i >= 0 && !ok; i-- {
			phiID, ok = s.loop.head.frames[i].Get(name)
		}
		if !ok {
			return fmt.Errorf("undefined-name: loop-carried %q vanished before EndLoop", name)
		}
		postVal, ok := bodyEnd.Lookup(name)
		if !ok {
			return fmt.Errorf("undefined-name: %q not bound at end of loop body", name)
		}
		s.graph.FinalizePhi(phiID, postVal)
	}
	bodyCtrl, _ := bodyEnd.Lookup(CtrlName)
	s.graph.FinalizeRegion(s.loop.region, bodyCtrl)
	return nil
}

// DefineAlias binds a $alias{k} pseudo-variable directly in the root frame,
// regardless of how deeply nested the current top frame is — struct
// declarations are only legal while atTopLevel, but the alias itself must
// live alongside $ctrl/$arg0 in the root frame so AliasBindings can find it
// without depending on lexical nesting at declaration time.
func (s *Scope) DefineAlias(name string, node ir.ID) error {
	root := s.frames[0]
	if _, exists := root.Get(name); exists {
		return fmt.Errorf("redefined-name: %q already defined", name)
	}
	root.Set(name, node)
	return nil
}

// AliasBindings returns the canonical id of every $alias{k} pseudo-variable
// currently bound in the outermost frame, in declaration order. A return
// node reads this to thread every live memory chain, not just the one the
// expression it returns happens to touch.
func (s *Scope) AliasBindings() []ir.ID {
	root := s.frames[0]
	var out []ir.ID
	for pair := root.Oldest(); pair != nil; pair = pair.Next() {
		if strings.HasPrefix(pair.Key, "$alias") {
			out = append(out, s.graph.Canon(pair.Value))
		}
	}
	return out
}

// Dup deep-clones every frame: the clone's frames have the same keys as the
// origin at clone time, with bindings shared at that instant and
// independent afterwards. This is the clone used for `if` branches and
// break/continue jump targets. It carries the same loop context as its
// origin (sharing, not copying, the loopState) so that an `if` nested
// inside a `while` body still materializes on-demand φs for any
// loop-head-visible name it touches for the first time — the loop context
// spans every scope clone for the duration of one loop body, not just the
// single loop-scope value DupLoopScope first produced.
func (s *Scope) Dup() *Scope {
	return &Scope{graph: s.graph, frames: s.cloneFrames(), loop: s.loop}
}

// DupLoopScope is Dup's "makePhis=true" variant: the clone
// eagerly materializes φs for every name it is asked to read or write that
// was visible in s (now recorded as the clone's head scope). region is the
// loop region those on-demand φs are rooted at; the caller creates it (via
// ir.Graph.NewLoopRegion) before calling DupLoopScope, since the region's
// first predecessor is the pre-loop control, known before any cloning
// happens.
func (s *Scope) DupLoopScope(region ir.ID) *Scope {
	frames := s.cloneFrames()
	return &Scope{
		graph:  s.graph,
		frames: frames,
		loop: &loopState{
			head:           s,
			region:         region,
			phied:          make(map[string]bool),
			headFrameCount: len(frames),
		},
	}
}

func (s *Scope) cloneFrames() []frame {
	out := make([]frame, len(s.frames))
	for i, f := range s.frames {
		nf := newFrame()
		for pair := f.Oldest(); pair != nil; pair = pair.Next() {
			nf.Set(pair.Key, pair.Value)
		}
		out[i] = nf
	}
	return out
}

// MergeScopes merges other into s at a control-flow join, mutating s in
// place and returning the freshly created region. Both scopes must have
// identical key sets at every frame depth; a name bound
// unequally at only one frame-depth, or present in one side's frame and
// absent from the other's, is a fatal divergent-definition error. For
// every name bound to different nodes on the two sides, inserts a binary φ
// rooted at the new region; $ctrl itself is rebound to the region, not
// wrapped in a φ.
func (s *Scope) MergeScopes(other *Scope) (ir.ID, error) {
	if len(s.frames) != len(other.frames) {
		return ir.InvalidID, fmt.Errorf("divergent-definition: mismatched scope depth at merge (%d vs %d)", len(s.frames), len(other.frames))
	}

	ctrlA, _ := s.Lookup(CtrlName)
	ctrlB, _ := other.Lookup(CtrlName)
	region := s.graph.NewRegion(ctrlA, ctrlB)

	for i := range s.frames {
		fa, fb := s.frames[i], other.frames[i]
		if fa.Len() != fb.Len() {
			return ir.InvalidID, fmt.Errorf("divergent-definition: branches defined a different set of names at scope depth %d", i)
		}
		for pair := fa.Oldest(); pair != nil; pair = pair.Next() {
			name := pair.Key
			valA := pair.Value
			valB, exists := fb.Get(name)
			if !exists {
				return ir.InvalidID, fmt.Errorf("divergent-definition: %q defined on only one arm of the conditional", name)
			}
			if name == CtrlName {
				fa.Set(name, region)
				continue
			}
			if s.graph.Canon(valA) == s.graph.Canon(valB) {
				continue // identical binding on both arms: nothing to merge
			}
			typ := ir.Meet(s.graph.Node(valA).Type(), s.graph.Node(valB).Type())
			fa.Set(name, s.graph.NewPhi(region, typ, valA, valB))
		}
	}
	return region, nil
}
