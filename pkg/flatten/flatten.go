// Package flatten turns a template's tree of files into the order its lines
// run in once every include has been inlined.
package flatten

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/liquidscope/pkg/include"
	"github.com/walteh/liquidscope/pkg/liquid"
	"github.com/walteh/liquidscope/pkg/template"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrMissingRoot        = errors.Base("root template file missing")
	ErrMissingTemplateDir = errors.Base("template directory missing")
	ErrMissingPart        = errors.Base("included part missing")
	ErrCycle              = errors.Base("include cycle")
)

// TemplatePart is a run of lines from one file. Lines are zero-based and
// both ends are inclusive.
type TemplatePart struct {
	Kind       template.PartKind `json:"kind"`
	Name       string            `json:"name"`
	SourceFile string            `json:"source_file"`
	StartLine  int               `json:"start_line"`
	EndLine    int               `json:"end_line"`
}

func (p TemplatePart) String() string {
	return fmt.Sprintf("%s:%s [%d-%d]", p.Kind, p.Name, p.StartLine, p.EndLine)
}

// Contains reports whether the part covers line of file.
func (p TemplatePart) Contains(file string, line int) bool {
	return p.SourceFile == file && p.StartLine <= line && line <= p.EndLine
}

// TemplateParts is in execution order, not file order.
type TemplateParts []TemplatePart

// Files lists the distinct source files in first-seen order.
func (ps TemplateParts) Files() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range ps {
		if !seen[p.SourceFile] {
			seen[p.SourceFile] = true
			out = append(out, p.SourceFile)
		}
	}
	return out
}

type Flattener struct {
	fs       afero.Fs
	ws       *template.Workspace
	resolver *include.Resolver
}

func New(ws *template.Workspace, resolver *include.Resolver) *Flattener {
	return &Flattener{fs: ws.Fs(), ws: ws, resolver: resolver}
}

// Flatten returns the parts of the template tmpl belongs to. Only a missing
// template directory or root file is an error; broken includes are skipped.
func (me *Flattener) Flatten(ctx context.Context, tmpl template.Identity) (TemplateParts, error) {
	parts, _, err := me.FlattenWithReport(ctx, tmpl)
	return parts, err
}

// FlattenWithReport is Flatten plus a record of every include that was skipped.
func (me *Flattener) FlattenWithReport(ctx context.Context, tmpl template.Identity) (TemplateParts, *Report, error) {
	root := me.ws.EntryFile(tmpl)
	logger := zerolog.Ctx(ctx).With().Str("template", tmpl.Handle.String()).Logger()
	ctx = logger.WithContext(ctx)

	exists, err := afero.DirExists(me.fs, tmpl.Dir)
	if err != nil {
		return nil, nil, errors.Errorf("checking template directory: %w", err)
	}
	if !exists {
		return nil, nil, errors.Errorf("%w: %s", ErrMissingTemplateDir, tmpl.Dir)
	}

	tree, err := me.parse(root)
	if err != nil {
		return nil, nil, errors.Errorf("%w: %s: %s", ErrMissingRoot, root, err.Error())
	}

	kind, name := template.PartMain, "main"
	if tmpl.PartKind == template.PartShared {
		kind, name = template.PartShared, tmpl.Name
	}

	rep := &Report{}
	active := map[string]bool{root: true}
	parts := me.expand(ctx, tmpl, unit{file: root, kind: kind, name: name, tree: tree}, active, rep)

	logger.Debug().Int("parts", len(parts)).Int("skipped", len(rep.Skipped)).Msg("template flattened")
	return parts, rep, nil
}

type unit struct {
	file string
	kind template.PartKind
	name string
	tree *liquid.Tree
}

func (me *Flattener) parse(file string) (*liquid.Tree, error) {
	src, err := afero.ReadFile(me.fs, file)
	if err != nil {
		return nil, err
	}
	return liquid.Parse(src)
}

// expand flattens one file. active holds the files on the current recursion
// path only, so a part included twice from different places is expanded both
// times while a cycle is cut at the second visit.
func (me *Flattener) expand(ctx context.Context, tmpl template.Identity, u unit, active map[string]bool, rep *Report) TemplateParts {
	logger := zerolog.Ctx(ctx)

	var parts TemplateParts
	emit := func(start, end int) {
		parts = append(parts, TemplatePart{Kind: u.kind, Name: u.name, SourceFile: u.file, StartLine: start, EndLine: end})
	}

	cut := 0
	for _, stmt := range include.Scan(ctx, u.tree, me.resolver, tmpl) {
		if stmt.Line > cut {
			emit(cut, stmt.Line-1)
		}
		cut = max(cut, stmt.EndLine+1)

		if !stmt.Resolved {
			logger.Warn().Str("file", u.file).Int("line", stmt.Line).Str("include", stmt.IncludePath).Msg("included part not found, skipping")
			rep.Skipped = append(rep.Skipped, Skipped{File: u.file, Statement: stmt})
			continue
		}
		if active[stmt.ResolvedFile] {
			logger.Warn().Str("file", u.file).Int("line", stmt.Line).Str("include", stmt.IncludePath).Msg("include cycle, not expanding again")
			rep.Cycles = append(rep.Cycles, Skipped{File: u.file, Statement: stmt})
			continue
		}

		tree, err := me.parse(stmt.ResolvedFile)
		if err != nil {
			logger.Warn().Err(err).Str("file", stmt.ResolvedFile).Msg("reading included part, skipping")
			rep.Skipped = append(rep.Skipped, Skipped{File: u.file, Statement: stmt, Err: err})
			continue
		}

		active[stmt.ResolvedFile] = true
		parts = append(parts, me.expand(ctx, tmpl, unit{file: stmt.ResolvedFile, kind: stmt.Kind, name: stmt.Name, tree: tree}, active, rep)...)
		delete(active, stmt.ResolvedFile)
	}

	if lines := u.tree.LineCount(); cut < lines {
		emit(cut, lines-1)
	}
	return parts
}
