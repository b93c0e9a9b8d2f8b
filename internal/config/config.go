//  Copyright (c) 2023 Uber Technologies, Inc.
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

// Package config loads the YAML configuration a TeXLa backend process
// starts from: default stringification behavior, and the document
// format version it expects clients to speak.
package config

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/PSE-Team-TeXLa/texla-backend-sub000/ast"
)

// Config is the top-level backend configuration document.
type Config struct {
	// FormatVersion is the document format this process serves;
	// defaults to ast.CurrentFormatVersion when empty.
	FormatVersion string `yaml:"format_version"`

	// Stringification controls the default ToLatex behavior applied
	// when no per-call options are supplied.
	Stringification StringificationConfig `yaml:"stringification"`

	// Development enables human-readable, debug-level logging.
	Development bool `yaml:"development"`

	// LevelKeywords is the segment nesting level → LaTeX sectioning
	// keyword table the loaded document format uses (spec.md §4.2),
	// exposed for clients that need to describe or validate headings
	// without importing ast directly. Parsing and serialization always
	// use ast's own fixed table, so this is populated from
	// ast.DefaultLevelKeywords and is not YAML-settable.
	LevelKeywords []ast.LevelKeyword `yaml:"-"`
}

// StringificationConfig mirrors ast.StringificationOptions in YAML form.
type StringificationConfig struct {
	IncludeComments bool `yaml:"include_comments"`
	IncludeMetadata bool `yaml:"include_metadata"`
}

// Default returns the zero-configuration backend defaults.
func Default() Config {
	return Config{
		FormatVersion: ast.CurrentFormatVersion,
		Stringification: StringificationConfig{
			IncludeComments: true,
			IncludeMetadata: true,
		},
		LevelKeywords: ast.DefaultLevelKeywords(),
	}
}

// Load reads and validates a YAML config file at path. Missing fields
// fall back to Default's values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.FormatVersion == "" {
		cfg.FormatVersion = ast.CurrentFormatVersion
	}
	if !semver.IsValid(cfg.FormatVersion) {
		return Config{}, fmt.Errorf("config: invalid format_version %q", cfg.FormatVersion)
	}
	return cfg, nil
}

// StringificationOptions converts the loaded config into the type
// ast.ToLatex expects.
func (c Config) StringificationOptions() ast.StringificationOptions {
	return ast.StringificationOptions{
		IncludeComments: c.Stringification.IncludeComments,
		IncludeMetadata: c.Stringification.IncludeMetadata,
	}
}

// LevelKeyword looks up the LaTeX sectioning keyword for a nesting level
// in c's level table.
func (c Config) LevelKeyword(level int8) (string, bool) {
	for _, lk := range c.LevelKeywords {
		if lk.Level == level {
			return lk.Keyword, true
		}
	}
	return "", false
}
