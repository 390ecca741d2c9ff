// Package include maps include directives to the files they pull in.
package include

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/liquidscope/pkg/template"
)

const (
	textPartsPrefix = "parts/"
	sharedPrefix    = "shared/"
	sourceExt       = ".liquid"
)

// Resolution is the file an include path resolved to.
type Resolution struct {
	File string
	Kind template.PartKind
	// Name is the part name the file is known by, which is what parts are labelled with.
	Name string
}

type candidate struct {
	file string
	kind template.PartKind
	name string
}

type Resolver struct {
	fs    afero.Fs
	ws    *template.Workspace
	perms template.Permissions
}

func NewResolver(ws *template.Workspace, perms template.Permissions) *Resolver {
	return &Resolver{fs: ws.Fs(), ws: ws, perms: perms}
}

// Candidates lists the files tried for includePath, in priority order. Shared
// parts are not included since they need a permission check.
func Candidates(includePath, dir string) []string {
	var out []string
	for _, c := range localCandidates(includePath, dir) {
		out = append(out, c.file)
	}
	return out
}

func localCandidates(includePath, dir string) []candidate {
	var out []candidate
	add := func(kind template.PartKind, name string, elems ...string) {
		out = append(out, candidate{file: filepath.Join(append([]string{dir}, elems...)...), kind: kind, name: name})
	}

	if name, ok := strings.CutPrefix(includePath, textPartsPrefix); ok {
		add(template.PartText, name, template.TextPartsDir, name+sourceExt)
		add(template.PartText, name, template.TextPartsDir, name)
	}

	add(template.PartText, includePath, includePath+sourceExt)
	add(template.PartText, includePath, includePath)
	add(template.PartText, includePath, template.TextPartsDir, includePath+sourceExt)
	add(template.PartText, includePath, template.TextPartsDir, includePath)
	add(template.PartText, includePath, "parts", includePath+sourceExt)
	add(template.PartText, includePath, "parts", includePath)
	return out
}

// Resolve returns the first existing file for includePath. Local candidates
// are always relative to the directory of the template's manifest, never to
// the file the include appears in.
func (me *Resolver) Resolve(ctx context.Context, includePath string, tmpl template.Identity) (Resolution, bool) {
	logger := zerolog.Ctx(ctx).With().Str("include", includePath).Logger()

	if includePath == "" {
		return Resolution{}, false
	}

	for _, c := range localCandidates(includePath, tmpl.Dir) {
		if me.isFile(c.file) {
			logger.Debug().Str("file", c.file).Msg("include resolved")
			return Resolution{File: c.file, Kind: c.kind, Name: c.name}, true
		}
	}

	if name, ok := strings.CutPrefix(includePath, sharedPrefix); ok && name != "" {
		file := filepath.Join(me.ws.SharedRoot(), name, name+sourceExt)
		if !me.isFile(file) {
			logger.Debug().Str("file", file).Msg("shared part not found")
			return Resolution{}, false
		}
		if me.perms == nil || !me.perms.IsAllowed(ctx, name, tmpl.Handle) {
			logger.Debug().Str("file", file).Msg("shared part not allowed for template")
			return Resolution{}, false
		}
		return Resolution{File: file, Kind: template.PartShared, Name: name}, true
	}

	return Resolution{}, false
}

func (me *Resolver) isFile(name string) bool {
	fi, err := me.fs.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}
