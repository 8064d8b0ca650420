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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonfront/simplelang/internal/ir"
)

func mustParse(t *testing.T, src string) *ir.Graph {
	t.Helper()
	g, err := New([]byte(src), ir.TypeInteger.BOT).Parse()
	require.NoError(t, err)
	return g
}

func parseErr(t *testing.T, src string) *Error {
	t.Helper()
	_, err := New([]byte(src), ir.TypeInteger.BOT).Parse()
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	return perr
}

// returnOperand finds the sole attached return node and returns its data
// operand (input 1), canonicalized.
func returnOperand(t *testing.T, g *ir.Graph) *ir.Node {
	t.Helper()
	stop, ok := g.Find(g.Stop())
	require.True(t, ok)
	require.Equal(t, 1, stop.NumIns(), "expected exactly one return attached to stop")
	ret := g.Node(stop.In(0))
	require.Equal(t, ir.OpReturn, ret.Op())
	return g.Node(ret.In(1))
}

func TestScenario1_ConstantFolding(t *testing.T) {
	g := mustParse(t, "return 1+2*3;")
	val := returnOperand(t, g)
	assert.Equal(t, ir.OpConstant, val.Op())
	assert.True(t, val.Type().IsConstantInt())
	assert.EqualValues(t, 7, val.Type().IntVal)
}

func TestScenario2_WhileLoopPhi(t *testing.T) {
	g := mustParse(t, "int x=1; while(x<10) x=x+1; return x;")
	val := returnOperand(t, g)
	assert.Contains(t, []ir.Op{ir.OpPhi, ir.OpConstant}, val.Op())

	var regions int
	for _, n := range g.All() {
		if n.Op() == ir.OpRegion {
			regions++
		}
	}
	assert.Equal(t, 1, regions, "expected exactly one loop region")
}

func TestScenario3_IfMergePhi(t *testing.T) {
	g := mustParse(t, "int a=1; if(arg) a=2; else a=3; return a;")
	val := returnOperand(t, g)
	require.Equal(t, ir.OpPhi, val.Op())
}

func TestScenario4_StructFieldStoreLoad(t *testing.T) {
	g := mustParse(t, "struct P{int x;int y;} P p = new P; p.x=7; return p.x;")
	val := returnOperand(t, g)
	assert.Equal(t, ir.OpConstant, val.Op())
	assert.EqualValues(t, 7, val.Type().IntVal)
}

func TestScenario5_BreakMergesExitPaths(t *testing.T) {
	g := mustParse(t, "int i=0; while(i<3){ if(i==1) break; i=i+1; } return i;")
	val := returnOperand(t, g)
	assert.Equal(t, ir.OpPhi, val.Op(), "break and fall-through paths must merge to a phi")
}

func TestScenario6_NullDereferenceStillParses(t *testing.T) {
	g := mustParse(t, "struct A{int z;} A a; return a.z;")
	val := returnOperand(t, g)
	require.Equal(t, ir.OpLoad, val.Op())
	ptr := g.Node(val.In(1))
	assert.Equal(t, ir.OpConstant, ptr.Op(), "field access through an omitted-initializer struct decl loads through the null constant")
}

func TestBoundary_LeadingZeroLiteral(t *testing.T) {
	err := parseErr(t, "return 007;")
	assert.Equal(t, BadIntegerLiteral, err.Kind)
}

func TestBoundary_ReturnMissingExpr(t *testing.T) {
	err := parseErr(t, "return;")
	assert.Equal(t, ExpectedSyntax, err.Kind)
}

func TestBoundary_DivergentDefinition(t *testing.T) {
	err := parseErr(t, "if (arg) int y=1; else ;")
	assert.Equal(t, DivergentDefinition, err.Kind)
}

func TestBoundary_BreakOutsideLoop(t *testing.T) {
	err := parseErr(t, "break;")
	assert.Equal(t, NoActiveLoop, err.Kind)
}

func TestBoundary_ContinueOutsideLoop(t *testing.T) {
	err := parseErr(t, "continue;")
	assert.Equal(t, NoActiveLoop, err.Kind)
}

func TestRedefinedNameInSameFrame(t *testing.T) {
	err := parseErr(t, "int x=1; int x=2; return x;")
	assert.Equal(t, RedefinedName, err.Kind)
}

func TestUndefinedNameOnAssignment(t *testing.T) {
	err := parseErr(t, "y=1; return y;")
	assert.Equal(t, UndefinedName, err.Kind)
}

func TestKeywordRejectedAsIdentifier(t *testing.T) {
	err := parseErr(t, "int if=1; return if;")
	assert.Equal(t, ExpectedIdentifier, err.Kind)
}

func TestStructNotAtTopLevel(t *testing.T) {
	err := parseErr(t, "if (arg) { struct P{int x;} } return 1;")
	assert.Equal(t, StructNotTopLevel, err.Kind)
}

func TestEmptyStructRejected(t *testing.T) {
	err := parseErr(t, "struct P{} return 1;")
	assert.Equal(t, EmptyStruct, err.Kind)
}

func TestStructRedefinition(t *testing.T) {
	err := parseErr(t, "struct P{int x;} struct P{int y;} return 1;")
	assert.Equal(t, StructRedefined, err.Kind)
}

func TestUnknownStructType(t *testing.T) {
	err := parseErr(t, "Q q = null; return 1;")
	assert.Equal(t, UnknownStruct, err.Kind)
}

func TestUnknownField(t *testing.T) {
	err := parseErr(t, "struct P{int x;} P p = new P; return p.y;")
	assert.Equal(t, UnknownField, err.Kind)
}

func TestTypeMismatchOnStructDecl(t *testing.T) {
	err := parseErr(t, "struct P{int x;} struct Q{int y;} P p = new Q; return 1;")
	assert.Equal(t, TypeMismatch, err.Kind)
}

func TestTypeMismatchOnIntDecl(t *testing.T) {
	err := parseErr(t, "struct P{int x;} P p = new P; int n = p; return n;")
	assert.Equal(t, TypeMismatch, err.Kind)
}

func TestNotEqualDesugarsToEqThenNot(t *testing.T) {
	g := mustParse(t, "return 1!=2;")
	val := returnOperand(t, g)
	assert.Equal(t, ir.OpConstant, val.Op())
	assert.EqualValues(t, 1, val.Type().IntVal)
}

func TestGreaterThanSwapsOperands(t *testing.T) {
	g := mustParse(t, "return 5>3;")
	val := returnOperand(t, g)
	assert.Equal(t, ir.OpConstant, val.Op())
	assert.EqualValues(t, 1, val.Type().IntVal)
}

func TestMultiLevelFieldAccessIsTypeMismatch(t *testing.T) {
	err := parseErr(t, "struct P{int x;} P p = new P; return p.x.x;")
	assert.Equal(t, TypeMismatch, err.Kind)
}

func TestScopeDepthRestoredAfterBlock(t *testing.T) {
	p := New([]byte("{ int x=1; } return 1;"), ir.TypeInteger.BOT)
	before := p.scope.Depth()
	require.NoError(t, p.parseStatement())
	assert.Equal(t, before, p.scope.Depth())
}
