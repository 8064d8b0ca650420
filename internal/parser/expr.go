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
	"github.com/sonfront/simplelang/internal/ir"
	"github.com/sonfront/simplelang/internal/scope"
)

// parseExpr is expr := cmp.
func (p *Parser) parseExpr() (ir.ID, error) { return p.parseCmp() }

// parseCmp is cmp := add ( ('==' | '!=' | '<=' | '<' | '>=' | '>') add )*,
// left-associative. `>`/`>=` are the swapped-operand form of `<`/`<=`; `!=`
// is `==` followed by a logical not — there is no dedicated NE/GT/GE op.
// Binary-op construction here simply parses both operands before
// constructing the node (unlike the loop back-edge/φ case, nothing needs
// the node's identity to exist before its second operand is known), so the
// single-peephole-after-both-operands effect falls out of ordinary
// recursive descent without a separate placeholder-then-patch step.
func (p *Parser) parseCmp() (ir.ID, error) {
	lhs, err := p.parseAdd()
	if err != nil {
		return ir.InvalidID, err
	}
	for {
		switch {
		case p.lex.Match("=="):
			rhs, err := p.parseAdd()
			if err != nil {
				return ir.InvalidID, err
			}
			lhs = p.graph.New(ir.OpEq, ir.TypeInteger.BOT, lhs, rhs)
		case p.lex.Match("!="):
			rhs, err := p.parseAdd()
			if err != nil {
				return ir.InvalidID, err
			}
			eq := p.graph.New(ir.OpEq, ir.TypeInteger.BOT, lhs, rhs)
			lhs = p.graph.New(ir.OpNot, ir.TypeInteger.BOT, eq)
		case p.lex.Match("<="):
			rhs, err := p.parseAdd()
			if err != nil {
				return ir.InvalidID, err
			}
			lhs = p.graph.New(ir.OpLessEqual, ir.TypeInteger.BOT, lhs, rhs)
		case p.lex.Match(">="):
			rhs, err := p.parseAdd()
			if err != nil {
				return ir.InvalidID, err
			}
			lhs = p.graph.New(ir.OpLessEqual, ir.TypeInteger.BOT, rhs, lhs)
		case p.lex.Match("<"):
			rhs, err := p.parseAdd()
			if err != nil {
				return ir.InvalidID, err
			}
			lhs = p.graph.New(ir.OpLess, ir.TypeInteger.BOT, lhs, rhs)
		case p.lex.Match(">"):
			rhs, err := p.parseAdd()
			if err != nil {
				return ir.InvalidID, err
			}
			lhs = p.graph.New(ir.OpLess, ir.TypeInteger.BOT, rhs, lhs)
		default:
			return lhs, nil
		}
	}
}

// parseAdd is add := mul ( ('+' | '-') mul )*.
func (p *Parser) parseAdd() (ir.ID, error) {
	lhs, err := p.parseMul()
	if err != nil {
		return ir.InvalidID, err
	}
	for {
		var op ir.Op
		switch {
		case p.lex.Match("+"):
			op = ir.OpAdd
		case p.lex.Match("-"):
			op = ir.OpSub
		default:
			return lhs, nil
		}
		rhs, err := p.parseMul()
		if err != nil {
			return ir.InvalidID, err
		}
		lhs = p.graph.New(op, ir.TypeInteger.BOT, lhs, rhs)
	}
}

// parseMul is mul := unary ( ('*' | '/') unary )*.
func (p *Parser) parseMul() (ir.ID, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return ir.InvalidID, err
	}
	for {
		var op ir.Op
		switch {
		case p.lex.Match("*"):
			op = ir.OpMul
		case p.lex.Match("/"):
			op = ir.OpDiv
		default:
			return lhs, nil
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return ir.InvalidID, err
		}
		lhs = p.graph.New(op, ir.TypeInteger.BOT, lhs, rhs)
	}
}

// parseUnary is unary := '-' unary | postfix.
func (p *Parser) parseUnary() (ir.ID, error) {
	if p.lex.Match("-") {
		operand, err := p.parseUnary()
		if err != nil {
			return ir.InvalidID, err
		}
		return p.graph.New(ir.OpNeg, ir.TypeInteger.BOT, operand), nil
	}
	return p.parsePostfix()
}

// parsePostfix is postfix := primary ( '.' id )*. Only the first '.' can
// ever succeed: a load's result is a value, not a pointer, so a second '.'
// fails resolveField's pointer check with type-mismatch — multi-level field
// access is not supported, by design.
func (p *Parser) parsePostfix() (ir.ID, error) {
	val, err := p.parsePrimary()
	if err != nil {
		return ir.InvalidID, err
	}
	for p.lex.Match(".") {
		field, err := p.requireId()
		if err != nil {
			return ir.InvalidID, err
		}
		f, err := p.resolveField(val, field)
		if err != nil {
			return ir.InvalidID, err
		}
		mem, _ := p.scope.Lookup(scope.AliasName(f.Alias))
		val = p.graph.NewLoad(mem, val, f.Name, f.Type)
	}
	return val, nil
}

// parsePrimary is primary := number | '(' expr ')' | 'true' | 'false' |
// 'null' | 'new' id | id.
func (p *Parser) parsePrimary() (ir.ID, error) {
	switch {
	case p.lex.IsNumber():
		v, _, err := p.lex.ParseNumber()
		if err != nil {
			return ir.InvalidID, p.errf(BadIntegerLiteral, "%v", err)
		}
		return p.graph.Constant(v), nil

	case p.lex.Match("("):
		e, err := p.parseExpr()
		if err != nil {
			return ir.InvalidID, err
		}
		if err := p.requireSyntax(")"); err != nil {
			return ir.InvalidID, err
		}
		return e, nil

	case p.lex.MatchKeyword("true"):
		return p.graph.Constant(1), nil

	case p.lex.MatchKeyword("false"):
		return p.graph.Constant(0), nil

	case p.lex.MatchKeyword("null"):
		return p.graph.NullConstant(), nil

	case p.lex.MatchKeyword("new"):
		name, err := p.requireId()
		if err != nil {
			return ir.InvalidID, err
		}
		st, ok := p.reg.Lookup(name)
		if !ok {
			return ir.InvalidID, p.errf(UnknownStruct, "unknown struct type %q", name)
		}
		return p.buildNew(st)

	default:
		name, err := p.requireId()
		if err != nil {
			return ir.InvalidID, err
		}
		id, ok := p.scope.Lookup(name)
		if !ok {
			return ir.InvalidID, p.errf(UndefinedName, "undefined name %q", name)
		}
		return id, nil
	}
}
