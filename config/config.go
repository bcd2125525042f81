// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads the configuration of a shenandoah server for a host
project.

The sources are applied in increasing order of precedence:

  - built-in defaults, derived from the project layout;
  - a "shenandoah.yaml", "shenandoah.yml", or "shenandoah.toml" file in the
    project root (or an explicitly given configuration file);
  - a ".env" file in the project root, which never overrides variables
    already set in the process environment;
  - the SHENANDOAH_* environment variables.

Command line flags then take precedence over all of these; they are applied by
the caller. Finally, a selected environment overrides the main and spec paths
with its own, such as a "test" environment running against built sources:

	main_path: src
	environments:
	  test:
	    main_path: build
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/thediveo/shenandoah"
	"github.com/thediveo/shenandoah/internal/project"
)

// DefaultAddr is the address the server listens on unless configured
// otherwise.
const DefaultAddr = "localhost:4410"

// FileNames lists the configuration files looked for in the project root, in
// order of preference.
var FileNames = []string{"shenandoah.yaml", "shenandoah.yml", "shenandoah.toml"}

// DotEnvName is the name of the optional dotenv file in the project root.
const DotEnvName = ".env"

// Environment variables overriding configuration file settings.
const (
	EnvAddr        = "SHENANDOAH_ADDR"
	EnvProject     = "SHENANDOAH_PROJECT"
	EnvMainPath    = "SHENANDOAH_MAIN_PATH"
	EnvSpecPath    = "SHENANDOAH_SPEC_PATH"
	EnvSpecGlob    = "SHENANDOAH_SPEC_GLOB"
	EnvEnvironment = "SHENANDOAH_ENV"
)

var (
	// ErrUnknownFormat is returned for configuration files with neither YAML
	// nor TOML extensions.
	ErrUnknownFormat = errors.New("unknown configuration file format")
	// ErrUnknownEnvironment is returned when the selected environment isn't
	// configured.
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// Paths are the main and spec directories; relative paths are relative to
// the project root.
type Paths struct {
	MainPath string `yaml:"main_path" toml:"main_path"`
	SpecPath string `yaml:"spec_path" toml:"spec_path"`
}

// Config is the configuration of a shenandoah server.
type Config struct {
	Addr         string           `yaml:"addr" toml:"addr"`
	ProjectName  string           `yaml:"project" toml:"project"`
	ProjectRoot  string           `yaml:"-" toml:"-"`
	MainPath     string           `yaml:"main_path" toml:"main_path"`
	SpecPath     string           `yaml:"spec_path" toml:"spec_path"`
	SpecGlob     string           `yaml:"spec_glob" toml:"spec_glob"`
	Environment  string           `yaml:"environment" toml:"environment"`
	Environments map[string]Paths `yaml:"environments" toml:"environments"`
}

// Default returns the default configuration for the project in root.
func Default(root string) *Config {
	if root == "" {
		root = "."
	}
	return &Config{
		Addr:        DefaultAddr,
		ProjectRoot: root,
		SpecGlob:    shenandoah.DefaultSpecGlob,
	}
}

// Load returns the configuration of the project in root. If filename is
// empty, the first existing of FileNames in root is used, if any. A missing
// explicitly named file is an error.
func Load(root, filename string) (*Config, error) {
	cfg := Default(root)
	if filename == "" {
		filename = findFile(cfg.ProjectRoot)
	}
	if filename != "" {
		if err := cfg.loadFile(filename); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(filepath.Join(cfg.ProjectRoot, DotEnvName)); err != nil &&
		!errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot load %s: %w", DotEnvName, err)
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func findFile(root string) string {
	for _, name := range FileNames {
		filename := filepath.Join(root, name)
		if info, err := os.Stat(filename); err == nil && info.Mode().IsRegular() {
			return filename
		}
	}
	return ""
}

// loadFile decodes the YAML or TOML file into c, rejecting unknown keys.
func (c *Config) loadFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("cannot read configuration: %w", err)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid configuration %s: %w", filename, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return fmt.Errorf("invalid configuration %s: %w", filename, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("invalid configuration %s: unknown key %q",
				filename, undecoded[0].String())
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
	}
	return nil
}

// applyEnv overrides settings with the non-empty environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for _, v := range []struct {
		name  string
		field *string
	}{
		{EnvAddr, &c.Addr},
		{EnvProject, &c.ProjectName},
		{EnvMainPath, &c.MainPath},
		{EnvSpecPath, &c.SpecPath},
		{EnvSpecGlob, &c.SpecGlob},
		{EnvEnvironment, &c.Environment},
	} {
		if value, ok := lookup(v.name); ok && value != "" {
			*v.field = value
		}
	}
}

// EnvironmentNames returns the sorted names of the configured environments.
func (c *Config) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the main and spec directories after applying the selected
// environment, falling back to the conventional directories of the project.
func (c *Config) Paths() (Paths, error) {
	paths := Paths{MainPath: c.MainPath, SpecPath: c.SpecPath}
	if c.Environment != "" {
		env, ok := c.Environments[c.Environment]
		if !ok {
			return Paths{}, fmt.Errorf("%w %q, configured are: %s",
				ErrUnknownEnvironment, c.Environment, strings.Join(c.EnvironmentNames(), ", "))
		}
		if env.MainPath != "" {
			paths.MainPath = env.MainPath
		}
		if env.SpecPath != "" {
			paths.SpecPath = env.SpecPath
		}
	}
	if paths.MainPath == "" {
		paths.MainPath = project.MainPath(c.ProjectRoot)
	} else {
		paths.MainPath = c.inProject(paths.MainPath)
	}
	if paths.SpecPath == "" {
		paths.SpecPath = project.SpecPath(c.ProjectRoot)
	} else {
		paths.SpecPath = c.inProject(paths.SpecPath)
	}
	return paths, nil
}

func (c *Config) inProject(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}

// Locator returns the locator for the configured main and spec directories.
func (c *Config) Locator() (*shenandoah.DefaultLocator, error) {
	paths, err := c.Paths()
	if err != nil {
		return nil, err
	}
	return &shenandoah.DefaultLocator{
		MainPath: paths.MainPath,
		SpecPath: paths.SpecPath,
	}, nil
}
