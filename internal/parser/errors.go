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

	"github.com/sonfront/simplelang/internal/lexer"
)

// Kind is the closed set of fatal parse/semantic error kinds. There is no
// recovery: the first error aborts the whole parse, so Kind exists for
// callers (tests, the CLI) to switch on programmatically rather than
// string-matching a message.
type Kind int

const (
	UnexpectedToken Kind = iota
	ExpectedSyntax
	ExpectedIdentifier
	RedefinedName
	UndefinedName
	StructRedefined
	StructNotTopLevel
	EmptyStruct
	UnknownStruct
	UnknownField
	NullDereference
	TypeMismatch
	DivergentDefinition
	NoActiveLoop
	BadIntegerLiteral
)

func (k Kind) String() string {
	switch k {
	case UnexpectedToken:
		return "unexpected-token"
	case ExpectedSyntax:
		return "expected-syntax"
	case ExpectedIdentifier:
		return "expected-identifier"
	case RedefinedName:
		return "redefined-name"
	case UndefinedName:
		return "undefined-name"
	case StructRedefined:
		return "struct-redefined"
	case StructNotTopLevel:
		return "struct-not-top-level"
	case EmptyStruct:
		return "empty-struct"
	case UnknownStruct:
		return "unknown-struct"
	case UnknownField:
		return "unknown-field"
	case NullDereference:
		return "null-dereference"
	case TypeMismatch:
		return "type-mismatch"
	case DivergentDefinition:
		return "divergent-definition"
	case NoActiveLoop:
		return "no-active-loop"
	case BadIntegerLiteral:
		return "bad-integer-literal"
	default:
		return fmt.Sprintf("error-kind(%d)", int(k))
	}
}

// Error is the single error type every parse failure surfaces as.
type Error struct {
	Kind Kind
	Pos  lexer.Position
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Msg) }

func (p *Parser) errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: p.lex.Position(), Msg: fmt.Sprintf(format, args...)}
}
