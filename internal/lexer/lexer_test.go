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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSkipsWhitespaceAndDoesNotAdvanceOnMismatch(t *testing.T) {
	l := New([]byte("   ;  x"))
	assert.True(t, l.Match(";"))
	assert.False(t, l.Match("x")) // whitespace separates ";" from "x", but Match still skips it to check
	assert.True(t, l.PeekIsIdent())
}

func TestMatchKeywordRejectsIdentifierPrefix(t *testing.T) {
	l := New([]byte("iffy"))
	assert.False(t, l.MatchKeyword("if"))
	name, ok := l.MatchIdent()
	require.True(t, ok)
	assert.Equal(t, "iffy", name)
}

func TestMatchKeywordAcceptsBoundary(t *testing.T) {
	l := New([]byte("if (x)"))
	assert.True(t, l.MatchKeyword("if"))
	assert.True(t, l.Match("("))
}

func TestMatchIdentRejectsLeadingDigit(t *testing.T) {
	l := New([]byte("123abc"))
	_, ok := l.MatchIdent()
	assert.False(t, ok)
}

func TestMatchIdentAllowsUnderscorePrefix(t *testing.T) {
	l := New([]byte("_foo_1 rest"))
	name, ok := l.MatchIdent()
	require.True(t, ok)
	assert.Equal(t, "_foo_1", name)
}

func TestParseNumberRejectsLeadingZero(t *testing.T) {
	l := New([]byte("007"))
	_, ok, err := l.ParseNumber()
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrBadIntegerLiteral)
}

func TestParseNumberAcceptsBareZero(t *testing.T) {
	l := New([]byte("0;"))
	v, ok, err := l.ParseNumber()
	require.True(t, ok)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
	assert.True(t, l.Match(";"))
}

func TestParseNumberAcceptsMultiDigit(t *testing.T) {
	l := New([]byte("12345"))
	v, ok, err := l.ParseNumber()
	require.True(t, ok)
	require.NoError(t, err)
	assert.EqualValues(t, 12345, v)
}

func TestIsEOF(t *testing.T) {
	l := New([]byte("   "))
	assert.True(t, l.IsEOF())

	l = New([]byte("  x"))
	assert.False(t, l.IsEOF())
}

func TestPunctuationMatchesIndividually(t *testing.T) {
	l := New([]byte("<= >= == != < > + - * /"))
	for _, sym := range []string{"<=", ">=", "==", "!=", "<", ">", "+", "-", "*", "/"} {
		require.True(t, l.Match(sym), "expected to match %q", sym)
	}
	assert.True(t, l.IsEOF())
}
