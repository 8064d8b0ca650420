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
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/sonfront/simplelang/internal/ir"
)

// TestGolden runs every fixture under ../../testdata/golden: each archive
// holds a Simple source file and an expect.txt describing the shape of its
// return value, following the end-to-end scenario table this front end was
// built against.
func TestGolden(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("..", "..", "testdata", "golden", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no golden fixtures found")

	for _, path := range matches {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			arc, err := txtar.ParseFile(path)
			require.NoError(t, err)

			var source, expect []byte
			for _, f := range arc.Files {
				switch f.Name {
				case "source.simple":
					source = f.Data
				case "expect.txt":
					expect = f.Data
				}
			}
			require.NotNil(t, source, "archive missing source.simple")
			require.NotNil(t, expect, "archive missing expect.txt")

			g, err := New(source, ir.TypeInteger.BOT).Parse()
			require.NoError(t, err)
			val := returnOperand(t, g)

			want := parseExpectations(t, expect)
			if op, ok := want["op"]; ok {
				gotOp := val.Op().String()
				if alt, ok := want["altop"]; ok {
					assert.Contains(t, []string{op, alt}, gotOp)
				} else {
					assert.Equal(t, op, gotOp)
				}
			}
			if v, ok := want["value"]; ok {
				n, err := strconv.ParseInt(v, 10, 64)
				require.NoError(t, err)
				assert.True(t, val.Type().IsConstantInt())
				assert.EqualValues(t, n, val.Type().IntVal)
			}
			if r, ok := want["regions"]; ok {
				n, err := strconv.Atoi(r)
				require.NoError(t, err)
				var regions int
				for _, node := range g.All() {
					if node.Op() == ir.OpRegion {
						regions++
					}
				}
				assert.Equal(t, n, regions)
			}
		})
	}
}

func parseExpectations(t *testing.T, raw []byte) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok, "malformed expectation line %q", line)
		out[k] = v
	}
	return out
}
