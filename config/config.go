// Package config handles vtablegen.toml project configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/vtable/compiler"
	"github.com/wippyai/vtable/errors"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "vtablegen.toml"

// Config represents a vtablegen.toml file.
type Config struct {
	Generate Generate `toml:"generate"`
	Lock     Lock     `toml:"lock"`

	// Dir is the directory containing the file (set at load time).
	Dir string `toml:"-"`
}

// Generate configures code generation.
type Generate struct {
	Inputs     []string `toml:"inputs"`
	Out        string   `toml:"out"`
	Languages  []string `toml:"languages"`
	GoPackage  string   `toml:"go-package"`
	DataModel  string   `toml:"data-model"`
	DefaultABI string   `toml:"default-abi"`
	HeaderName string   `toml:"header-name"`
}

// Lock configures the ABI lock file.
type Lock struct {
	Path    string `toml:"path"`
	Enforce bool   `toml:"enforce"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{Dir: "."}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Generate.Out == "" {
		c.Generate.Out = "."
	}
	if len(c.Generate.Languages) == 0 {
		c.Generate.Languages = []string{"go"}
	}
	if c.Generate.DataModel == "" {
		c.Generate.DataModel = string(compiler.HostDataModel())
	}
	if c.Generate.DefaultABI == "" {
		c.Generate.DefaultABI = compiler.DefaultABI
	}
}

// Parse decodes configuration text. dir is recorded as the base for
// relative paths.
func Parse(data []byte, dir string) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindSyntax, err, "parse "+FileName)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(undecoded[0].String()).
			Detail("unknown key %q", undecoded[0].String()).
			Build()
	}
	c.Dir = dir
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that the compiler would reject later.
func (c *Config) Validate() error {
	if _, err := compiler.ParseDataModel(c.Generate.DataModel); err != nil {
		return err
	}
	if !compiler.KnownABI(c.Generate.DefaultABI) {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.Generate.DefaultABI).
			Detail("unsupported default-abi %q", c.Generate.DefaultABI).
			Build()
	}
	return nil
}

// Load parses the vtablegen.toml file in dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path. Relative paths in it are
// resolved against the file's directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindIO, err, "read "+path)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindIO, err, "resolve "+path)
	}
	return Parse(data, abs)
}

// FindAndLoad walks up from startDir to find a vtablegen.toml file and
// loads it. It returns nil, nil if there is none.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindIO, err, "resolve "+startDir)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Path resolves p against the configuration directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// InputPaths returns the configured inputs resolved against Dir.
func (c *Config) InputPaths() []string {
	out := make([]string, 0, len(c.Generate.Inputs))
	for _, in := range c.Generate.Inputs {
		out = append(out, c.Path(in))
	}
	return out
}

// Model returns the parsed data model.
func (c *Config) Model() compiler.DataModel {
	m, err := compiler.ParseDataModel(c.Generate.DataModel)
	if err != nil {
		return compiler.HostDataModel()
	}
	return m
}
