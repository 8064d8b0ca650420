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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sonfront/simplelang/internal/ir"
)

// Config is a compilation unit: which source files to compile and how to
// bind their implicit program argument. Sources are doublestar glob
// patterns, not literal paths, so one config entry can name a whole tree of
// ".simple" files.
type Config struct {
	Sources   []string `yaml:"sources"`
	ArgType   string   `yaml:"argType"` // "", "none", or "int"
	ShowGraph bool     `yaml:"showGraph"`
}

// loadConfig reads and validates a YAML config file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("config %s: sources must name at least one glob pattern", path)
	}
	if _, err := cfg.argIRType(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// argIRType resolves the config's ArgType string to the ir.Type bound to
// $arg0. Struct-typed arguments aren't configurable from the CLI: the
// struct has to be declared inside the source file itself, after the
// argument binding already exists, so there is no way to name it ahead of
// parsing without inventing a second struct-declaration surface just for
// the driver.
func (c *Config) argIRType() (ir.Type, error) {
	switch c.ArgType {
	case "", "int":
		return ir.TypeInteger.BOT, nil
	case "none":
		return ir.TypeInteger.TOP, nil
	default:
		return ir.Type{}, fmt.Errorf("unsupported argType %q (want \"int\" or \"none\")", c.ArgType)
	}
}
