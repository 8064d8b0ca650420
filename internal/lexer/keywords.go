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

// Keywords is the fixed reserved-word set: none of these may be used as a
// user identifier. requireId-style callers reject any MatchIdent result
// found in this set.
var Keywords = map[string]bool{
	"break":    true,
	"continue": true,
	"else":     true,
	"false":    true,
	"if":       true,
	"int":      true,
	"new":      true,
	"null":     true,
	"return":   true,
	"struct":   true,
	"true":     true,
	"while":    true,
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool { return Keywords[s] }
