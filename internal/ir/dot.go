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

package ir

import (
	"fmt"
	"sort"
	"strings"
)

// DumpDot renders the live nodes of the graph as GraphViz, the format the
// `#showGraph;` directive writes to standard output.
// Edge direction follows use->def, matching how the graph is built: a node
// points at the nodes it was constructed from.
func (g *Graph) DumpDot() string {
	nodes := g.All()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })

	var b strings.Builder
	b.WriteString("digraph SeaOfNodes {\n")
	b.WriteString("  rankdir=BT;\n")
	for _, n := range nodes {
		shape := "box"
		if n.op == OpRegion || n.op == OpIf || n.op == OpStart || n.op == OpStop {
			shape = "diamond"
		}
		fmt.Fprintf(&b, "  n%d [shape=%s,label=%q];\n", n.id, shape, nodeLabel(n))
	}
	for _, n := range nodes {
		for i, in := range n.ins {
			if in == InvalidID {
				continue
			}
			target := g.Canon(in)
			style := ""
			if isControlInput(n, i) {
				style = " [color=red]"
			}
			fmt.Fprintf(&b, "  n%d -> n%d%s;\n", n.id, target, style)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func nodeLabel(n *Node) string {
	switch n.op {
	case OpConstant:
		return fmt.Sprintf("%d", n.extra.intVal)
	case OpLoad, OpStore:
		return fmt.Sprintf("%s.%s", n.op, n.extra.fieldName)
	case OpNew:
		if n.extra.structType != nil {
			return "new " + n.extra.structType.Name
		}
		return "new"
	case OpMemProj:
		return fmt.Sprintf("mem#%d", n.extra.alias)
	default:
		return n.op.String()
	}
}

// isControlInput is a best-effort heuristic used only for dot edge styling:
// every input of a Region is control, and so is input 0 of an If, a Return
// or an Arg.
func isControlInput(n *Node, i int) bool {
	switch n.op {
	case OpRegion:
		return true
	case OpIf, OpReturn, OpArg:
		return i == 0
	default:
		return false
	}
}
