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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/sonfront/simplelang/internal/collections"
	"github.com/sonfront/simplelang/internal/ir"
	"github.com/sonfront/simplelang/internal/parser"
)

// unit is one source file's compilation outcome.
type unit struct {
	path  string
	graph *ir.Graph
	err   error
}

func (u unit) failed() bool { return u.err != nil }

// expandSources resolves every glob pattern in cfg.Sources against the
// filesystem, deduplicating overlapping matches (two patterns can easily
// name the same file) and returning paths in a stable, sorted order so a
// batch run's diagnostics don't reorder between invocations.
func expandSources(cfg *Config) ([]string, error) {
	matches := make(collections.Set[string])
	for _, pattern := range cfg.Sources {
		found, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
		}
		matches.AddSlice(found)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no source files matched %v", cfg.Sources)
	}
	return matches.SortedValues(strings.Compare), nil
}

// compileAll parses every matched source file concurrently, each as its own
// Parser/Graph/Registry/Scope with no shared mutable state between
// goroutines, and returns one unit per file in the same order
// expandSources produced.
func compileAll(ctx context.Context, paths []string, argType ir.Type) ([]unit, error) {
	units := make([]unit, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				units[i] = unit{path: path, err: err}
				return nil
			}
			graph, err := parser.New(src, argType).Parse()
			units[i] = unit{path: path, graph: graph, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// failures filters a batch down to the units that didn't parse.
func failures(units []unit) []unit {
	return collections.FilterSlice(units, unit.failed)
}
