// Package config loads liquidscope settings from an optional config file,
// a .env file and the environment.
package config

import (
	"bytes"
	"io"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat = errors.Base("unknown config format")
	ErrInvalid       = errors.Base("invalid config")
)

const (
	DefaultSharedPartsDir = "shared_parts"
	DefaultCacheSize      = 128
	DefaultMaxFiles       = 256
	DefaultLogLevel       = "info"

	EnvWorkspace = "LIQUIDSCOPE_WORKSPACE"
	EnvLogLevel  = "LIQUIDSCOPE_LOG_LEVEL"
	EnvCacheSize = "LIQUIDSCOPE_CACHE_SIZE"
)

// FileNames are tried in order by Discover.
var FileNames = []string{
	".liquidscope.hcl",
	".liquidscope.yaml",
	".liquidscope.yml",
	".liquidscope.toml",
}

type Config struct {
	Workspace      string       `hcl:"workspace,optional" yaml:"workspace" toml:"workspace" validate:"required"`
	SharedPartsDir string       `hcl:"shared_parts_dir,optional" yaml:"shared_parts_dir" toml:"shared_parts_dir" validate:"required"`
	Cache          *CacheConfig `hcl:"cache,block" yaml:"cache" toml:"cache"`
	Chain          *ChainConfig `hcl:"chain,block" yaml:"chain" toml:"chain"`
	Log            *LogConfig   `hcl:"log,block" yaml:"log" toml:"log"`
}

type CacheConfig struct {
	Size int `hcl:"size,optional" yaml:"size" toml:"size" validate:"min=1"`
}

type ChainConfig struct {
	// MaxFiles bounds how many files one scope lookup may visit.
	MaxFiles int `hcl:"max_files,optional" yaml:"max_files" toml:"max_files" validate:"min=1"`
}

type LogConfig struct {
	Level string `hcl:"level,optional" yaml:"level" toml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Color bool   `hcl:"color,optional" yaml:"color" toml:"color"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (me *Config) applyDefaults() {
	if me.SharedPartsDir == "" {
		me.SharedPartsDir = DefaultSharedPartsDir
	}
	if me.Cache == nil {
		me.Cache = &CacheConfig{}
	}
	if me.Cache.Size == 0 {
		me.Cache.Size = DefaultCacheSize
	}
	if me.Chain == nil {
		me.Chain = &ChainConfig{}
	}
	if me.Chain.MaxFiles == 0 {
		me.Chain.MaxFiles = DefaultMaxFiles
	}
	if me.Log == nil {
		me.Log = &LogConfig{}
	}
	if me.Log.Level == "" {
		me.Log.Level = DefaultLogLevel
	}
}

func (me *Config) applyEnv(env Env) error {
	if v, ok := env[EnvWorkspace]; ok && v != "" {
		me.Workspace = v
	}
	if v, ok := env[EnvLogLevel]; ok && v != "" {
		me.Log.Level = strings.ToLower(v)
	}
	if v, ok := env[EnvCacheSize]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvCacheSize, v)
		}
		me.Cache.Size = n
	}
	return nil
}

// Load decodes the config file at path. The format follows the extension.
// HCL files can read the environment through the env variable, as in
// workspace = env.HOME.
func Load(fs afero.Fs, path string, env Env) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Errorf("parsing TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("parsing TOML: unknown key %s", undecoded[0].String())
		}
	case ".hcl":
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}
		ectx := &hcl.EvalContext{
			Variables: map[string]cty.Value{"env": env.ctyValue()},
		}
		if diags := gohcl.DecodeBody(file.Body, ectx, &cfg); diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}
	default:
		return nil, errors.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	if cfg.Workspace != "" && !filepath.IsAbs(cfg.Workspace) {
		cfg.Workspace = filepath.Join(filepath.Dir(path), cfg.Workspace)
	}
	return &cfg, nil
}

// Discover returns the first config file of FileNames present in dir.
func Discover(fs afero.Fs, dir string) (string, bool) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if ok, err := afero.Exists(fs, p); err == nil && ok {
			return p, true
		}
	}
	return "", false
}

// Resolve builds the config for a run. An explicit path wins over a
// discovered file, and env overrides both. Without a configured workspace
// dir is used.
func Resolve(fs afero.Fs, explicit, dir string, env Env) (*Config, error) {
	path := explicit
	if path == "" {
		path, _ = Discover(fs, dir)
	}

	cfg := &Config{}
	if path != "" {
		loaded, err := Load(fs, path, env)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if cfg.Workspace == "" {
		cfg.Workspace = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every invalid field, not just the first.
func (me *Config) Validate() error {
	err := validate.Struct(me)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Errorf("validating config: %w", err)
	}

	var result *multierror.Error
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		result = multierror.Append(result, errors.Errorf("%w: %s fails %q (got %v)", ErrInvalid, field, fe.Tag(), fe.Value()))
	}
	return result.ErrorOrNil()
}
