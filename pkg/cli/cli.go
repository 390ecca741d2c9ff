// Package cli holds the setup shared by the liquidscope subcommands.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/liquidscope/pkg/config"
	"github.com/walteh/liquidscope/pkg/logging"
	"github.com/walteh/liquidscope/pkg/navigate"
	"github.com/walteh/liquidscope/pkg/position"
	"gitlab.com/tozd/go/errors"
)

// Options are the global flags. Fs, Dir and LogOut default to the real
// file system, the working directory and stderr.
type Options struct {
	ConfigFile string
	Workspace  string
	Debug      bool
	JSON       bool

	Fs     afero.Fs
	Dir    string
	LogOut io.Writer
}

type App struct {
	Config  *config.Config
	Service *navigate.Service
	Dir     string
	JSON    bool
}

func (me *Options) Setup(ctx context.Context) (context.Context, *App, error) {
	fs := me.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir := me.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ctx, nil, errors.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	logOut := me.LogOut
	if logOut == nil {
		logOut = os.Stderr
	}

	env, err := config.LoadEnv(fs, dir)
	if err != nil {
		return ctx, nil, err
	}
	cfg, err := config.Resolve(fs, me.ConfigFile, dir, env)
	if err != nil {
		return ctx, nil, errors.Errorf("loading config: %w", err)
	}
	if me.Workspace != "" {
		cfg.Workspace = me.Workspace
	}
	if !filepath.IsAbs(cfg.Workspace) {
		cfg.Workspace = filepath.Join(dir, cfg.Workspace)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return ctx, nil, err
	}
	if me.Debug {
		level = zerolog.DebugLevel
	}
	logger := logging.New(logOut, logging.Options{
		Level: level,
		Color: cfg.Log.Color && !color.NoColor,
		JSON:  me.JSON,
	})
	ctx = logger.WithContext(ctx)

	svc, err := navigate.NewService(fs, cfg.Workspace, navigate.Options{
		SharedDir: cfg.SharedPartsDir,
		CacheSize: cfg.Cache.Size,
		MaxFiles:  cfg.Chain.MaxFiles,
	})
	if err != nil {
		return ctx, nil, err
	}

	logger.Debug().Str("workspace", cfg.Workspace).Str("shared_parts_dir", cfg.SharedPartsDir).Msg("ready")

	return ctx, &App{Config: cfg, Service: svc, Dir: dir, JSON: me.JSON}, nil
}

// Abs resolves a file argument against the working directory.
func (me *App) Abs(file string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(me.Dir, file)
}

// Rel shortens a path for display, relative to the workspace when possible.
func (me *App) Rel(file string) string {
	if r, err := filepath.Rel(me.Config.Workspace, file); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r)
	}
	return file
}

// Print writes v as indented JSON in JSON mode and runs text otherwise.
func (me *App) Print(w io.Writer, v any, text func(w io.Writer) error) error {
	if !me.JSON {
		return text(w)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Errorf("encoding output: %w", err)
	}
	return nil
}

// ParsePlace reads zero-based line and character arguments. The character
// counts user-perceived characters, not bytes.
func ParsePlace(line, character string) (position.Place, error) {
	l, err := strconv.Atoi(line)
	if err != nil || l < 0 {
		return position.Place{}, errors.Errorf("invalid line %q", line)
	}
	c, err := strconv.Atoi(character)
	if err != nil || c < 0 {
		return position.Place{}, errors.Errorf("invalid character %q", character)
	}
	return position.Place{Line: l, Character: c}, nil
}
