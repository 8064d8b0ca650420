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

// Package parser is the recursive-descent driver that threads a lexer, a
// struct-type registry, a Sea-of-Nodes graph, and a current scope together:
// it emits control, data, and memory nodes as it descends, and invokes the
// scope's φ constructor at every if-merge and loop head. There is no
// intermediate syntax tree — every production builds graph nodes directly.
package parser

import (
	"fmt"

	"github.com/sonfront/simplelang/internal/ir"
	"github.com/sonfront/simplelang/internal/lexer"
	"github.com/sonfront/simplelang/internal/scope"
	"github.com/sonfront/simplelang/internal/types"
)

// loopFrame is the per-while bookkeeping a break/continue inside its body
// needs: the loop region, the scope depth a jump must prune back to, and
// the accumulated break/continue target scopes (nil until the first jump).
type loopFrame struct {
	region        ir.ID
	baseDepth     int
	breakScope    *scope.Scope
	continueScope *scope.Scope
}

// Parser holds everything owned by one compilation: the lexer cursor, the
// IR arena, the struct registry, and the current scope. None of this is
// package-level state, so two Parsers can run concurrently from two
// goroutines.
type Parser struct {
	lex   *lexer.Lexer
	graph *ir.Graph
	reg   *types.Registry
	scope *scope.Scope
	loops []*loopFrame
}

// New constructs a Parser over src. argType bounds the single implicit
// program argument $arg0.
func New(src []byte, argType ir.Type) *Parser {
	g := ir.NewGraph(argType)
	return &Parser{
		lex:   lexer.New(src),
		graph: g,
		reg:   types.New(),
		scope: scope.NewRoot(g),
	}
}

// SetObserver installs a peephole telemetry hook on the underlying graph,
// primarily for tests.
func (p *Parser) SetObserver(o ir.Observer) { p.graph.SetObserver(o) }

// Parse consumes the entire source as the virtual outer block (no braces)
// and returns the resulting graph. The first error aborts the parse; there
// is no recovery.
func (p *Parser) Parse() (*ir.Graph, error) {
	p.scope.Push()
	for !p.lex.IsEOF() {
		if err := p.parseStatement(); err != nil {
			return nil, err
		}
	}
	p.scope.Pop()
	return p.graph, nil
}

// atTopLevel reports whether the current position is the outermost program
// block — the only place `struct` declarations are legal.
func (p *Parser) atTopLevel() bool { return p.scope.Depth() <= 2 }

// requireId consumes an identifier that is not a reserved keyword.
func (p *Parser) requireId() (string, error) {
	name, ok := p.lex.MatchIdent()
	if !ok {
		return "", p.errf(ExpectedIdentifier, "expected an identifier")
	}
	if lexer.IsKeyword(name) {
		return "", p.errf(ExpectedIdentifier, "%q is a reserved keyword", name)
	}
	return name, nil
}

// requireSyntax consumes the literal s or fails with expected-syntax.
func (p *Parser) requireSyntax(s string) error {
	if !p.lex.Match(s) {
		return p.errf(ExpectedSyntax, "expected %q", s)
	}
	return nil
}

// define wraps scope.Define, tagging a failure as redefined-name.
func (p *Parser) define(name string, id ir.ID) error {
	if err := p.scope.Define(name, id); err != nil {
		return p.wrap(RedefinedName, err)
	}
	return nil
}

// update wraps scope.Update, tagging a failure as undefined-name.
func (p *Parser) update(name string, id ir.ID) error {
	if err := p.scope.Update(name, id); err != nil {
		return p.wrap(UndefinedName, err)
	}
	return nil
}

func (p *Parser) wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Pos: p.lex.Position(), Msg: err.Error()}
}

// jumpTo implements break/continue's shared semantics: clone the current
// scope, kill its local control, prune its frame depth down to baseDepth,
// and either install it as *target (first jump) or merge it into the
// existing target.
func (p *Parser) jumpTo(target **scope.Scope, baseDepth int) error {
	clone := p.scope.Dup()
	for clone.Depth() > baseDepth {
		clone.Pop()
	}
	if *target == nil {
		*target = clone
	} else if _, err := (*target).MergeScopes(clone); err != nil {
		return p.wrap(DivergentDefinition, err)
	}
	return p.update(scope.CtrlName, p.graph.DeadControl())
}

// resolveField looks up fieldName on the struct ptr points to, checking the
// pointer- and null-ness preconditions shared by load and store.
func (p *Parser) resolveField(ptr ir.ID, fieldName string) (ir.Field, error) {
	typ := p.graph.Node(ptr).Type()
	if !typ.IsPointer() {
		return ir.Field{}, p.errf(TypeMismatch, "expected a reference to a struct, got %s", typ)
	}
	if typ.IsNull() {
		return ir.Field{}, p.errf(NullDereference, "field %q accessed through a null pointer", fieldName)
	}
	st := typ.StructOf()
	f, ok := st.Field(fieldName)
	if !ok {
		return ir.Field{}, p.errf(UnknownField, "struct %s has no field %q", st.Name, fieldName)
	}
	return f, nil
}

// buildNew allocates a `new T` node and zero-initializes every field of T
// through its alias, returning the allocation's own id as the expression's
// value.
func (p *Parser) buildNew(st *ir.StructType) (ir.ID, error) {
	allocID := p.graph.NewAlloc(st)
	for _, f := range st.Fields() {
		aliasName := scope.AliasName(f.Alias)
		prevMem, ok := p.scope.Lookup(aliasName)
		if !ok {
			return ir.InvalidID, fmt.Errorf("internal: alias %s unbound for struct %s", aliasName, st.Name)
		}
		zero := p.graph.Constant(0)
		newMem := p.graph.NewStore(prevMem, allocID, zero, f.Name)
		if err := p.update(aliasName, newMem); err != nil {
			return ir.InvalidID, err
		}
	}
	return allocID, nil
}
