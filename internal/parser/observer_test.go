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

	"github.com/golang/mock/gomock"

	"github.com/sonfront/simplelang/internal/ir"
	"github.com/sonfront/simplelang/internal/ir/irmock"
)

// TestBinaryOpPeepholesExactlyOnce is a contract test for the claim a binary
// op's rhs is fully parsed before the node is ever constructed, so its
// peephole pass only ever needs to fire once, inspecting both operands
// together, rather than once per operand as a placeholder-then-patch
// construction would require.
func TestBinaryOpPeepholesExactlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	obs := irmock.NewMockObserver(ctrl)
	obs.EXPECT().OnPeephole(gomock.Any(), ir.OpAdd, gomock.Any()).Times(1)
	obs.EXPECT().OnPeephole(gomock.Any(), ir.OpReturn, gomock.Any()).Times(1)

	p := New([]byte("return 1+2;"), ir.TypeInteger.BOT)
	p.SetObserver(obs)
	if _, err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

// TestComparisonDesugaringPeepholesEachConstructedNode checks the `!=`
// desugaring (Eq then Not) still peepholes each of its two constructed nodes
// exactly once apiece, not zero or twice.
func TestComparisonDesugaringPeepholesEachConstructedNode(t *testing.T) {
	ctrl := gomock.NewController(t)
	obs := irmock.NewMockObserver(ctrl)
	obs.EXPECT().OnPeephole(gomock.Any(), ir.OpEq, gomock.Any()).Times(1)
	obs.EXPECT().OnPeephole(gomock.Any(), ir.OpNot, gomock.Any()).Times(1)
	obs.EXPECT().OnPeephole(gomock.Any(), ir.OpReturn, gomock.Any()).Times(1)

	p := New([]byte("return 1!=2;"), ir.TypeInteger.BOT)
	p.SetObserver(obs)
	if _, err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
}
