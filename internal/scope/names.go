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

package scope

import "fmt"

// Reserved pseudo-variable names bound in the outermost frame. The '$'
// prefix is unspeakable in Simple source text, so these never collide with
// a user-declared name.
const (
	CtrlName = "$ctrl"
	Arg0Name = "$arg0"

	// ArgSurfaceName is the plain, user-typeable name source programs use to
	// read the implicit program argument (`if (arg) ...`). It is bound
	// alongside the reserved $arg0 to the same node; the `$` form exists so
	// the mechanism is never shadowable, while `arg` is the one surface
	// programs actually reference.
	ArgSurfaceName = "arg"
)

// AliasName returns the pseudo-variable name for the per-struct-field
// memory alias with id k.
func AliasName(k int) string { return fmt.Sprintf("$alias%d", k) }
