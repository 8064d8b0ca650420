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

// Package types implements the struct-type registry (component C): the
// process-wide-in-the-source, per-compilation-here mapping from a struct
// name to its interned type, plus the alias-id counter every declared field
// draws from.
package types

import (
	"fmt"

	"github.com/sonfront/simplelang/internal/ir"
)

// Registry interns struct types for a single compilation: the struct table
// and alias counter are fields of one Registry value, owned by one Parser for
// the duration of one parse, rather than process-global state.
type Registry struct {
	byName    map[string]*ir.StructType
	nextAlias int
}

// New returns an empty registry with a fresh alias-id counter.
func New() *Registry {
	return &Registry{byName: make(map[string]*ir.StructType)}
}

// Lookup returns the interned struct type for name, if declared.
func (r *Registry) Lookup(name string) (*ir.StructType, bool) {
	st, ok := r.byName[name]
	return st, ok
}

// NextAlias allocates and returns a fresh alias id, monotonically increasing
// for the lifetime of this Registry (i.e. one compilation).
func (r *Registry) NextAlias() int {
	id := r.nextAlias
	r.nextAlias++
	return id
}

// Declare interns a new, empty struct type under name. It is the caller's
// (the parser's) job to then AddField each declared field with an alias
// minted from NextAlias, since allocating an alias also requires adding a
// memory projection to the graph and binding it in the scope — concerns the
// registry itself does not own.
func (r *Registry) Declare(name string) (*ir.StructType, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("struct-redefined: struct %q already declared", name)
	}
	st := ir.NewStructType(name)
	r.byName[name] = st
	return st, nil
}
