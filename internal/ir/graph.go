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

package ir

// Observer is an optional telemetry hook the parser can attach to a Graph
// for tests: OnPeephole fires once per node construction, after its single
// peephole pass, naming both the original op and the (possibly different)
// canonical id it folded to.
type Observer interface {
	OnPeephole(original ID, op Op, canonical ID)
}

// Graph is the per-compilation arena: the start and stop nodes and every
// other node are values owned by one Graph (the struct table and alias
// counter live in types.Registry), so nothing here is package-level state — two Graphs can be built concurrently
// from two goroutines without interfering.
type Graph struct {
	nodes        []Node // index 0 is an unused sentinel so InvalidID never aliases a real node
	start        ID
	stop         ID
	deadCtrl     ID
	nullConst    ID
	nullByStruct map[*StructType]ID
	observer     Observer
}

// NewGraph allocates a fresh arena with a Start and Stop node already wired.
// argType bounds the single implicit program argument $arg0.
func NewGraph(argType Type) *Graph {
	g := &Graph{nodes: make([]Node, 1, 64)} // nodes[0] is the InvalidID sentinel
	g.start = g.alloc(OpStart, ControlType)
	arg := g.alloc(OpArg, argType, g.start)
	_ = arg
	g.stop = g.alloc(OpStop, ControlType)
	return g
}

func (g *Graph) Start() ID { return g.start }
func (g *Graph) Stop() ID  { return g.stop }

// Arg returns the $arg0 projection's id; it is always node 2 (Start is 1).
func (g *Graph) Arg() ID { return ID(2) }

// SetObserver installs a peephole telemetry hook (nil disables it).
func (g *Graph) SetObserver(o Observer) { g.observer = o }

func (g *Graph) alloc(op Op, typ Type, ins ...ID) ID {
	id := ID(len(g.nodes))
	g.nodes = append(g.nodes, Node{id: id, op: op, typ: typ, ins: append([]ID(nil), ins...)})
	return id
}

// node returns the raw (non-canonicalized) node at id. Callers that might be
// holding a stale id from before a fold must go through Canon first.
func (g *Graph) node(id ID) *Node { return &g.nodes[id] }

// Canon follows the fold-forwarding chain left behind by a Peephole that
// replaced a node, returning the currently-live id. Most callers never see a
// stale id because every construction helper already returns the canonical
// id, but ids captured across statements (e.g. a scope binding made before a
// later peephole elsewhere folded it) must be re-canonicalized on read.
func (g *Graph) Canon(id ID) ID {
	for {
		n := &g.nodes[id]
		if n.forward == InvalidID {
			return id
		}
		id = n.forward
	}
}

// Node returns a read-only view of the canonical node for id.
func (g *Graph) Node(id ID) *Node { return g.node(g.Canon(id)) }

// New constructs a node of the given op/type/inputs, runs its single
// peephole pass, and returns the canonical id to use from now on. This is
// the "leaves first" construction path: build operands, then the node that
// consumes them.
func (g *Graph) New(op Op, typ Type, ins ...ID) ID {
	id := g.alloc(op, typ, ins...)
	return g.peephole(id)
}

// NewWithExtra is New plus an op-specific payload (field name, struct type,
// alias id, or integer literal value) that doesn't fit the uniform shape.
func (g *Graph) NewWithExtra(op Op, typ Type, ex extraPayload, ins ...ID) ID {
	id := g.alloc(op, typ, ins...)
	g.node(id).extra = ex.toExtra()
	return g.peephole(id)
}

// extraPayload lets callers in other packages build an extra without
// exposing the unexported extra struct directly.
type extraPayload struct {
	IntVal     int64
	StructType *StructType
	FieldName  string
	Alias      int
}

func (p extraPayload) toExtra() extra {
	return extra{intVal: p.IntVal, structType: p.StructType, fieldName: p.FieldName, alias: p.Alias}
}

// Constant allocates a new integer constant node for n. Constants are not
// deduplicated: every call yields a distinct node.
func (g *Graph) Constant(n int64) ID {
	id := g.alloc(OpConstant, ConstantInt(n))
	g.node(id).extra.intVal = n
	return id // constants never fold further
}

// SetDef late-binds input i of id — a general back-patch primitive used
// instead of relying on a null reference. A loop region's back edge and a
// loop φ's deferred operand are supplied through FinalizeRegion and
// FinalizePhi, not through SetDef.
func (g *Graph) SetDef(id ID, i int, def ID) {
	n := g.node(g.Canon(id))
	for len(n.ins) <= i {
		n.ins = append(n.ins, InvalidID)
	}
	n.ins[i] = def
}

// NewRegion creates a fully-formed two-predecessor control merge (an
// if-merge region): both predecessors are known up front, so it is never
// in-progress.
func (g *Graph) NewRegion(pred1, pred2 ID) ID {
	return g.New(OpRegion, ControlType, pred1, pred2)
}

// NewLoopRegion creates a loop header region whose back edge is not yet
// known. It is flagged in-progress — peephole on it (and on φs rooted at
// it) is suppressed — until FinalizeRegion supplies the back edge.
func (g *Graph) NewLoopRegion(pred1 ID) ID {
	id := g.alloc(OpRegion, ControlType, pred1, InvalidID)
	g.node(id).inProgress = true
	return id
}

// FinalizeRegion supplies a loop region's back-edge predecessor.
func (g *Graph) FinalizeRegion(regionID, backEdge ID) {
	n := g.node(g.Canon(regionID))
	n.ins[1] = backEdge
	n.inProgress = false
}

// NewPhi creates a fully-formed if-merge φ: both data operands are known.
func (g *Graph) NewPhi(region ID, typ Type, v1, v2 ID) ID {
	return g.New(OpPhi, typ, region, v1, v2)
}

// NewPendingPhi creates a loop φ whose second operand is Pending — modeled
// here as InvalidID plus the inProgress flag rather than a language-level
// null check — Finalize is the only legal way to resolve it.
func (g *Graph) NewPendingPhi(region ID, typ Type, headVal ID) ID {
	id := g.alloc(OpPhi, typ, region, headVal, InvalidID)
	g.node(id).inProgress = true
	return id
}

// Pending reports whether a loop φ is still awaiting Finalize.
func (g *Graph) Pending(id ID) bool { return g.Node(id).inProgress }

// FinalizePhi supplies a loop φ's second (post-body) operand, then runs its
// single deferred peephole pass (folding it to its sole input if both
// operands turned out equal) and returns the canonical id.
func (g *Graph) FinalizePhi(id ID, secondOperand ID) ID {
	real := g.Canon(id)
	n := g.node(real)
	n.ins[2] = secondOperand
	n.inProgress = false
	return g.peephole(real)
}

// Pin prevents the node from being folded away by a peephole while the
// caller still needs its id — a scoped acquisition in place of a
// keep/unkeep pair. The returned closure must be called exactly once, typically
// via defer, on every exit path including error paths.
func (g *Graph) Pin(id ID) func() {
	real := g.Canon(id)
	g.node(real).pins++
	return func() {
		n := g.node(real)
		n.pins--
	}
}

// NewIf creates a two-input If node; its two arms are read off separately
// via NewProjTrue/NewProjFalse.
func (g *Graph) NewIf(ctrl, pred ID) ID { return g.New(OpIf, ControlType, ctrl, pred) }

// NewProjTrue and NewProjFalse project the taken/not-taken control edge of
// an If node.
func (g *Graph) NewProjTrue(ifID ID) ID  { return g.New(OpProjTrue, ControlType, ifID) }
func (g *Graph) NewProjFalse(ifID ID) ID { return g.New(OpProjFalse, ControlType, ifID) }

// NewMemProj adds a fresh memory projection off Start for one struct-field
// alias. Struct registration calls this once per declared field.
func (g *Graph) NewMemProj(alias int) ID {
	return g.NewWithExtra(OpMemProj, MemType, extraPayload{Alias: alias}, g.start)
}

// NewAlloc builds a `new T` node, typed as a (non-null) pointer to st.
// Zero-initializing each field is the caller's job: one Store per field
// through its alias, not modeled here.
func (g *Graph) NewAlloc(st *StructType) ID {
	return g.NewWithExtra(OpNew, PointerTo(st), extraPayload{StructType: st})
}

// NewLoad reads fieldType-typed field fieldName off ptr, consuming mem (the
// field's current $alias{k} binding) as its memory operand.
func (g *Graph) NewLoad(mem, ptr ID, fieldName string, fieldType Type) ID {
	return g.NewWithExtra(OpLoad, fieldType, extraPayload{FieldName: fieldName}, mem, ptr)
}

// NewStore writes val to fieldName of ptr, chaining mem (the field's prior
// $alias{k} binding) as its memory operand. The result is the new
// $alias{k} binding.
func (g *Graph) NewStore(mem, ptr, val ID, fieldName string) ID {
	return g.NewWithExtra(OpStore, MemType, extraPayload{FieldName: fieldName}, mem, ptr, val)
}

// NewReturn builds a return node over (ctrl, value, ...liveMemory) — the
// trailing memory operands are every $alias{k} binding live at the return
// point, so every memory chain reaches the return transitively without the
// return needing to special-case any one alias.
func (g *Graph) NewReturn(ctrl, value ID, liveMemory []ID) ID {
	ins := append([]ID{ctrl, value}, liveMemory...)
	return g.New(OpReturn, XControlType, ins...)
}

// DeadControl returns the singleton XControl-typed node representing
// control that can never execute, produced after a Return kills the
// current control binding.
func (g *Graph) DeadControl() ID {
	if g.deadCtrl == InvalidID {
		g.deadCtrl = g.alloc(OpConstant, XControlType)
	}
	return g.deadCtrl
}

// AttachToStop records a return node as one of the values the Stop node
// transitively reaches: every return must be reachable from Stop.
func (g *Graph) AttachToStop(returnID ID) {
	n := g.node(g.Canon(g.stop))
	n.ins = append(n.ins, returnID)
}

// NullConstant returns the singleton nullptr-typed constant node used for the
// bare `null` literal, where no declared struct context applies.
func (g *Graph) NullConstant() ID {
	if g.nullConst == InvalidID {
		g.nullConst = g.alloc(OpConstant, TypeMemPtr.NULLPTR)
	}
	return g.nullConst
}

// TypedNullConstant returns the (per-struct singleton) null pointer-to-st
// constant. A struct-typed declaration's null value is bound to this, rather
// than to the generic NullConstant, so a later field access through it can
// still resolve fieldName against st — the field projections and the return
// node's live-memory chain exist independent of whether the pointer backing
// them is ever non-null at runtime; resolveField needs the struct identity,
// not a proof of non-nullness, to find the field.
func (g *Graph) TypedNullConstant(st *StructType) ID {
	if g.nullByStruct == nil {
		g.nullByStruct = make(map[*StructType]ID)
	}
	if id, ok := g.nullByStruct[st]; ok {
		return id
	}
	id := g.alloc(OpConstant, PointerTo(st))
	g.nullByStruct[st] = id
	return id
}

// Find is a debug lookup into the arena, e.g. for graph dumps or tests that
// need to assert on a specific node's shape by id.
func (g *Graph) Find(id ID) (*Node, bool) {
	if int(id) <= 0 || int(id) >= len(g.nodes) {
		return nil, false
	}
	return g.Node(id), true
}

// All returns every live (non-dead) node, in allocation order, for
// visualization and whole-graph invariant checks.
func (g *Graph) All() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for i := 1; i < len(g.nodes); i++ {
		n := &g.nodes[i]
		if !n.dead && n.forward == InvalidID {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) peephole(id ID) ID {
	n := g.node(id)
	if n.inProgress || n.pins > 0 {
		return id
	}
	canonical := g.idealize(id)
	if g.observer != nil {
		g.observer.OnPeephole(id, n.op, canonical)
	}
	return canonical
}

func (g *Graph) constInt(id ID) (int64, bool) {
	n := g.Node(id)
	if n.typ.Kind != IntConstant {
		return 0, false
	}
	return n.typ.IntVal, true
}

func (g *Graph) idealize(id ID) ID {
	n := g.node(id)
	switch n.op {
	case OpAdd, OpSub, OpMul, OpDiv:
		a, aok := g.constInt(n.ins[0])
		b, bok := g.constInt(n.ins[1])
		if !aok || !bok {
			return id
		}
		var v int64
		switch n.op {
		case OpAdd:
			v = a + b
		case OpSub:
			v = a - b
		case OpMul:
			v = a * b
		case OpDiv:
			if b == 0 {
				return id // leave the division in place; evaluated at runtime, not parse time
			}
			v = a / b
		}
		return g.replace(id, g.Constant(v))

	case OpEq, OpLess, OpLessEqual:
		a, aok := g.constInt(n.ins[0])
		b, bok := g.constInt(n.ins[1])
		if !aok || !bok {
			return id
		}
		var v int64
		switch n.op {
		case OpEq:
			v = boolToInt(a == b)
		case OpLess:
			v = boolToInt(a < b)
		case OpLessEqual:
			v = boolToInt(a <= b)
		}
		return g.replace(id, g.Constant(v))

	case OpNot:
		a, ok := g.constInt(n.ins[0])
		if !ok {
			return id
		}
		return g.replace(id, g.Constant(boolToInt(a == 0)))

	case OpNeg:
		a, ok := g.constInt(n.ins[0])
		if !ok {
			return id
		}
		return g.replace(id, g.Constant(-a))

	case OpLoad:
		// A load whose memory input is a store of the same field through the
		// same pointer reads the value that store wrote.
		mem := g.Node(n.ins[0])
		if mem.op == OpStore && mem.extra.fieldName == n.extra.fieldName && g.Canon(mem.ins[1]) == g.Canon(n.ins[1]) {
			return g.replace(id, mem.ins[2])
		}
		return id

	case OpPhi:
		if len(n.ins) < 3 || n.ins[1] == InvalidID || n.ins[2] == InvalidID {
			return id
		}
		v1, v2 := g.Canon(n.ins[1]), g.Canon(n.ins[2])
		if v1 == v2 {
			return g.replace(id, v1)
		}
		return id

	default:
		return id
	}
}

func (g *Graph) replace(id, newID ID) ID {
	newID = g.Canon(newID)
	if id == newID {
		return id
	}
	n := g.node(id)
	n.forward = newID
	n.dead = true
	return newID
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
