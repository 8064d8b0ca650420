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

package parser

import (
	"fmt"

	"github.com/sonfront/simplelang/internal/ir"
	"github.com/sonfront/simplelang/internal/scope"
)

// parseStatement is the statement production.
func (p *Parser) parseStatement() error {
	switch {
	case p.lex.MatchKeyword("return"):
		return p.parseReturn()
	case p.lex.MatchKeyword("int"):
		return p.parseIntDecl()
	case p.lex.Match("{"):
		return p.parseBracedBlock()
	case p.lex.MatchKeyword("if"):
		return p.parseIf()
	case p.lex.MatchKeyword("while"):
		return p.parseWhile()
	case p.lex.MatchKeyword("break"):
		return p.parseBreak()
	case p.lex.MatchKeyword("continue"):
		return p.parseContinue()
	case p.lex.MatchKeyword("struct"):
		return p.parseStructDecl()
	case p.lex.Match("#showGraph"):
		if err := p.requireSyntax(";"); err != nil {
			return err
		}
		fmt.Println(p.graph.DumpDot())
		return nil
	case p.lex.Match(";"):
		// empty statement: a no-op, scope untouched.
		return nil
	default:
		return p.parseExprOrStructVarStatement()
	}
}

// parseBracedBlock is the '{' block-body '}' alternative of statement: a
// nested block pushes its own frame, unlike the implicit top-level one.
func (p *Parser) parseBracedBlock() error {
	p.scope.Push()
	for !p.lex.Match("}") {
		if p.lex.IsEOF() {
			return p.errf(ExpectedSyntax, "expected '}' before end of input")
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	p.scope.Pop()
	return nil
}

// parseReturn is 'return' expr ';': emit a return node over the current
// control, the expression's value, and every live memory alias, attach it
// to Stop, then kill control so subsequent code in this block is dead
// `return;` with no expression is expected-syntax, not
// unexpected-token — checked explicitly since parseExpr's own failure mode
// for a bare ';' would otherwise surface a less specific error.
func (p *Parser) parseReturn() error {
	if p.lex.Peek() == ';' {
		return p.errf(ExpectedSyntax, "return requires an expression")
	}
	val, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.requireSyntax(";"); err != nil {
		return err
	}
	ctrl, _ := p.scope.Lookup(scope.CtrlName)
	retID := p.graph.NewReturn(ctrl, val, p.scope.AliasBindings())
	p.graph.AttachToStop(retID)
	return p.update(scope.CtrlName, p.graph.DeadControl())
}

// parseIntDecl is 'int' decl, with the declared type fixed to integer.
func (p *Parser) parseIntDecl() error {
	name, err := p.requireId()
	if err != nil {
		return err
	}
	return p.finishDecl(name, ir.TypeInteger.BOT)
}

// parseExprOrStructVarStatement resolves the identifier-led statement
// ambiguity: if the first identifier is followed directly
// by another identifier, the first names a struct type and this is a
// declaration; otherwise it is an exprStmt assignment.
func (p *Parser) parseExprOrStructVarStatement() error {
	name, err := p.requireId()
	if err != nil {
		return err
	}
	if p.lex.PeekIsIdent() {
		st, ok := p.reg.Lookup(name)
		if !ok {
			return p.errf(UnknownStruct, "unknown struct type %q", name)
		}
		varName, err := p.requireId()
		if err != nil {
			return err
		}
		return p.finishDecl(varName, ir.PointerTo(st))
	}
	return p.parseExprStmtTail(name)
}

// finishDecl is decl := id ('=' expr)? ';', shared by 'int' decl and the
// struct-typed variant. A bare ';' without an initializer is only legal
// for a struct-typed declaration, in which case the variable starts out
// null. A null-typed initializer is always accepted for a struct-typed
// decl; any other initializer must be pointer-typed with exactly the
// declared struct, or (for an int decl) integer-typed.
func (p *Parser) finishDecl(name string, declaredType ir.Type) error {
	isStructDecl := declaredType.IsPointer()

	var val ir.ID
	if p.lex.Match("=") {
		v, err := p.parseExpr()
		if err != nil {
			return err
		}
		val = v
	} else if isStructDecl {
		val = p.graph.NullConstant()
	} else {
		return p.errf(ExpectedSyntax, "expected '=' in int declaration")
	}
	if err := p.requireSyntax(";"); err != nil {
		return err
	}

	vt := p.graph.Node(val).Type()
	if isStructDecl {
		if vt.IsNull() {
			// Rebind to a null carrying the declared struct's identity, so a
			// later field access through this variable can still resolve its
			// field: the bare `null` literal and an omitted initializer both
			// start out with no struct context of their own.
			val = p.graph.TypedNullConstant(declaredType.StructOf())
		} else if !vt.IsPointer() || vt.StructOf() != declaredType.StructOf() {
			return p.errf(TypeMismatch, "cannot assign %s to variable of type %s", vt, declaredType)
		}
	} else if !vt.IsInt() {
		return p.errf(TypeMismatch, "cannot assign %s to int variable %q", vt, name)
	}
	return p.define(name, val)
}

// parseExprStmtTail is exprStmt := id ('.' id)? '=' expr ';' with the
// leading id already consumed.
func (p *Parser) parseExprStmtTail(name string) error {
	if p.lex.Match(".") {
		field, err := p.requireId()
		if err != nil {
			return err
		}
		ptr, ok := p.scope.Lookup(name)
		if !ok {
			return p.errf(UndefinedName, "undefined name %q", name)
		}
		if err := p.requireSyntax("="); err != nil {
			return err
		}
		val, err := p.parseExpr()
		if err != nil {
			return err
		}
		if err := p.requireSyntax(";"); err != nil {
			return err
		}
		f, err := p.resolveField(ptr, field)
		if err != nil {
			return err
		}
		aliasName := scope.AliasName(f.Alias)
		prevMem, _ := p.scope.Lookup(aliasName)
		newMem := p.graph.NewStore(prevMem, ptr, val, f.Name)
		return p.update(aliasName, newMem)
	}

	if err := p.requireSyntax("="); err != nil {
		return err
	}
	val, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.requireSyntax(";"); err != nil {
		return err
	}
	return p.update(name, val)
}

// parseStructDecl is 'struct' id '{' field+ '}', legal only at the
// outermost program block.
func (p *Parser) parseStructDecl() error {
	if !p.atTopLevel() {
		return p.errf(StructNotTopLevel, "struct declarations are only allowed at the top level")
	}
	name, err := p.requireId()
	if err != nil {
		return err
	}
	if err := p.requireSyntax("{"); err != nil {
		return err
	}
	st, err := p.reg.Declare(name)
	if err != nil {
		return p.wrap(StructRedefined, err)
	}

	fieldCount := 0
	for !p.lex.Match("}") {
		if !p.lex.MatchKeyword("int") {
			return p.errf(ExpectedSyntax, "expected a field declaration")
		}
		fname, err := p.requireId()
		if err != nil {
			return err
		}
		if err := p.requireSyntax(";"); err != nil {
			return err
		}
		alias := p.reg.NextAlias()
		st.AddField(fname, ir.TypeInteger.BOT, alias)
		memProj := p.graph.NewMemProj(alias)
		if err := p.scope.DefineAlias(scope.AliasName(alias), memProj); err != nil {
			return p.wrap(RedefinedName, err)
		}
		fieldCount++
	}
	if fieldCount == 0 {
		return p.errf(EmptyStruct, "struct %q declares no fields", name)
	}
	return nil
}

// parseIf is 'if' '(' expr ')' statement ('else' statement)?.
func (p *Parser) parseIf() error {
	if err := p.requireSyntax("("); err != nil {
		return err
	}
	pred, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.requireSyntax(")"); err != nil {
		return err
	}

	outer := p.scope
	ctrl, _ := outer.Lookup(scope.CtrlName)
	ifID := p.graph.NewIf(ctrl, pred)
	trueProj := p.graph.NewProjTrue(ifID)
	falseProj := p.graph.NewProjFalse(ifID)

	thenScope := outer.Dup()
	if err := thenScope.Update(scope.CtrlName, trueProj); err != nil {
		return p.wrap(UndefinedName, err)
	}
	p.scope = thenScope
	if err := p.parseStatement(); err != nil {
		return err
	}
	thenResult := p.scope

	elseScope := outer.Dup()
	if err := elseScope.Update(scope.CtrlName, falseProj); err != nil {
		return p.wrap(UndefinedName, err)
	}
	var elseResult *scope.Scope
	if p.lex.MatchKeyword("else") {
		p.scope = elseScope
		if err := p.parseStatement(); err != nil {
			return err
		}
		elseResult = p.scope
	} else {
		elseResult = elseScope
	}

	if _, err := thenResult.MergeScopes(elseResult); err != nil {
		return p.wrap(DivergentDefinition, err)
	}
	p.scope = thenResult
	return nil
}

// parseWhile is 'while' '(' expr ')' statement: loop region first (with a
// deferred back edge), then an
// eagerly-phi loop-scope, then the predicate (read against the region, so
// predicate-visible names phi immediately), then the exit-scope snapshot
// (taken right after the predicate, before the body — a name never touched
// in the predicate and only ever written inside the body is therefore not
// observable as loop-carried past the loop, mirroring the source this is
// ported from), then the body under its own break/continue frame, then
// endLoop to wire the back edge and fold degenerate φs.
func (p *Parser) parseWhile() error {
	if err := p.requireSyntax("("); err != nil {
		return err
	}

	headCtrl, _ := p.scope.Lookup(scope.CtrlName)
	region := p.graph.NewLoopRegion(headCtrl)
	baseDepth := p.scope.Depth()

	headScope := p.scope
	loopScope := headScope.DupLoopScope(region)
	if err := loopScope.Update(scope.CtrlName, region); err != nil {
		return p.wrap(UndefinedName, err)
	}
	p.scope = loopScope

	pred, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.requireSyntax(")"); err != nil {
		return err
	}

	loopCtrl, _ := p.scope.Lookup(scope.CtrlName)
	ifID := p.graph.NewIf(loopCtrl, pred)
	trueProj := p.graph.NewProjTrue(ifID)
	falseProj := p.graph.NewProjFalse(ifID)

	exitScope := p.scope.Dup().EndLoopScope()
	if err := exitScope.Update(scope.CtrlName, falseProj); err != nil {
		return p.wrap(UndefinedName, err)
	}
	if err := p.scope.Update(scope.CtrlName, trueProj); err != nil {
		return p.wrap(UndefinedName, err)
	}

	lf := &loopFrame{region: region, baseDepth: baseDepth}
	p.loops = append(p.loops, lf)
	bodyErr := p.parseStatement()
	p.loops = p.loops[:len(p.loops)-1]
	if bodyErr != nil {
		return bodyErr
	}
	bodyEnd := p.scope

	if lf.continueScope != nil {
		if _, err := bodyEnd.MergeScopes(lf.continueScope); err != nil {
			return p.wrap(DivergentDefinition, err)
		}
	}

	if err := loopScope.EndLoop(bodyEnd); err != nil {
		return p.wrap(UndefinedName, err)
	}

	if lf.breakScope != nil {
		if _, err := exitScope.MergeScopes(lf.breakScope); err != nil {
			return p.wrap(DivergentDefinition, err)
		}
	}

	p.scope = exitScope
	return nil
}

// parseBreak is 'break' ';'.
func (p *Parser) parseBreak() error {
	if len(p.loops) == 0 {
		return p.errf(NoActiveLoop, "break outside any loop")
	}
	if err := p.requireSyntax(";"); err != nil {
		return err
	}
	lf := p.loops[len(p.loops)-1]
	return p.jumpTo(&lf.breakScope, lf.baseDepth)
}

// parseContinue is 'continue' ';'.
func (p *Parser) parseContinue() error {
	if len(p.loops) == 0 {
		return p.errf(NoActiveLoop, "continue outside any loop")
	}
	if err := p.requireSyntax(";"); err != nil {
		return err
	}
	lf := p.loops[len(p.loops)-1]
	return p.jumpTo(&lf.continueScope, lf.baseDepth)
}
