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

// simplec compiles Simple source files down to their Sea-of-Nodes graph.
// Given a YAML config naming a set of glob patterns, it parses every
// matched file concurrently and reports the first fatal error in each, if
// any; with -show-graph it also dumps each successfully parsed file's
// GraphViz rendering to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sonfront/simplelang/internal/parser"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML compilation-unit config")
	showGraph := flag.Bool("show-graph", false, "dump each successfully parsed file's graph as GraphViz")
	flag.Parse()

	if *configPath == "" {
		flag.Usage()
		log.Fatal("simplec requires -config")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("simplec: %v", err)
	}
	argType, err := cfg.argIRType()
	if err != nil {
		log.Fatalf("simplec: %v", err)
	}

	paths, err := expandSources(cfg)
	if err != nil {
		log.Fatalf("simplec: %v", err)
	}

	units, err := compileAll(context.Background(), paths, argType)
	if err != nil {
		log.Fatalf("simplec: %v", err)
	}

	for _, u := range units {
		if u.failed() {
			continue
		}
		if *showGraph || cfg.ShowGraph {
			fmt.Printf("// %s\n%s\n", u.path, u.graph.DumpDot())
		}
	}

	bad := failures(units)
	for _, u := range bad {
		var perr *parser.Error
		if err, ok := u.err.(*parser.Error); ok {
			perr = err
		}
		if perr != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", u.path, perr)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", u.path, u.err)
		}
	}
	if len(bad) > 0 {
		os.Exit(1)
	}
}
