package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

const DotEnvFileName = ".env"

// Env is the environment a config is resolved against.
type Env map[string]string

// LoadEnv reads the process environment, filling gaps from dir/.env when
// the file exists. Process variables always win.
func LoadEnv(fs afero.Fs, dir string) (Env, error) {
	env := Env{}

	f, err := fs.Open(filepath.Join(dir, DotEnvFileName))
	switch {
	case err == nil:
		defer f.Close()
		vals, err := godotenv.Parse(f)
		if err != nil {
			return nil, errors.Errorf("parsing %s: %w", DotEnvFileName, err)
		}
		for k, v := range vals {
			env[k] = v
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, errors.Errorf("opening %s: %w", DotEnvFileName, err)
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

func (e Env) ctyValue() cty.Value {
	if len(e) == 0 {
		return cty.EmptyObjectVal
	}
	vals := make(map[string]cty.Value, len(e))
	for k, v := range e {
		vals[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vals)
}
