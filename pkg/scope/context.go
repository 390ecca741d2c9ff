// Package scope finds the definition a template would actually use for a
// translation key or variable, following includes the way the runtime
// inlines them.
package scope

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/liquidscope/pkg/include"
	"github.com/walteh/liquidscope/pkg/liquid"
	"github.com/walteh/liquidscope/pkg/position"
	"github.com/walteh/liquidscope/pkg/template"
	"gitlab.com/tozd/go/errors"
)

const DefaultMaxFiles = 256

// Request is a lookup from a cursor in File, which belongs to Template.
type Request struct {
	Template template.Identity
	File     string
	Cursor   position.Place
}

// Context is what is in scope for a request. It is rebuilt for every request.
type Context struct {
	CurrentFile string
	CurrentLine int
	// Chain holds the includes that were expanded, depth first in the order
	// they were met.
	Chain       []include.Statement
	ScopedFiles map[string]bool
}

type Locator struct {
	fs       afero.Fs
	resolver *include.Resolver
	maxFiles int
}

type Option func(*Locator)

// WithMaxFiles bounds how many files one chain expansion may read.
func WithMaxFiles(n int) Option {
	return func(l *Locator) {
		if n > 0 {
			l.maxFiles = n
		}
	}
}

func NewLocator(ws *template.Workspace, resolver *include.Resolver, opts ...Option) *Locator {
	l := &Locator{fs: ws.Fs(), resolver: resolver, maxFiles: DefaultMaxFiles}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// session caches the trees parsed during one request.
type session struct {
	*Locator
	trees map[string]*liquid.Tree
}

func (me *Locator) newSession() *session {
	return &session{Locator: me, trees: map[string]*liquid.Tree{}}
}

func (s *session) parse(file string) (*liquid.Tree, error) {
	if t, ok := s.trees[file]; ok {
		return t, nil
	}
	src, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", file, err)
	}
	t, err := liquid.Parse(src)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", file, err)
	}
	s.trees[file] = t
	return t, nil
}

// BuildContext expands every include of the request file on or before the
// cursor line.
func (me *Locator) BuildContext(ctx context.Context, req Request) (*Context, error) {
	sc, _, err := me.newSession().buildContext(ctx, req, true)
	return sc, err
}

// buildContext returns the scope and the parsed request file. inclusive
// decides whether an include on the cursor line is in scope.
func (s *session) buildContext(ctx context.Context, req Request, inclusive bool) (*Context, *liquid.Tree, error) {
	tree, err := s.parse(req.File)
	if err != nil {
		return nil, nil, err
	}

	sc := &Context{
		CurrentFile: req.File,
		CurrentLine: req.Cursor.Line,
		ScopedFiles: map[string]bool{req.File: true},
	}
	active := map[string]bool{req.File: true}

	for _, stmt := range include.Scan(ctx, tree, s.resolver, req.Template) {
		if stmt.Line > req.Cursor.Line || (!inclusive && stmt.Line == req.Cursor.Line) {
			break
		}
		s.expand(ctx, req.Template, stmt, active, sc)
	}
	return sc, tree, nil
}

// expand enters an included file in full: once inside, every include it has
// counts as executed.
func (s *session) expand(ctx context.Context, tmpl template.Identity, stmt include.Statement, active map[string]bool, sc *Context) {
	logger := zerolog.Ctx(ctx).With().Str("include", stmt.IncludePath).Int("line", stmt.Line).Logger()

	switch {
	case !stmt.Resolved:
		logger.Warn().Msg("include not found, no definitions from it")
		return
	case active[stmt.ResolvedFile]:
		logger.Warn().Str("file", stmt.ResolvedFile).Msg("include cycle, not entering again")
		return
	case !sc.ScopedFiles[stmt.ResolvedFile] && len(sc.ScopedFiles) >= s.maxFiles:
		logger.Warn().Int("max_files", s.maxFiles).Msg("scope file limit reached")
		return
	}

	tree, err := s.parse(stmt.ResolvedFile)
	if err != nil {
		logger.Warn().Err(err).Msg("skipping unreadable include")
		return
	}

	sc.Chain = append(sc.Chain, stmt)
	sc.ScopedFiles[stmt.ResolvedFile] = true

	active[stmt.ResolvedFile] = true
	defer delete(active, stmt.ResolvedFile)

	for _, sub := range include.Scan(ctx, tree, s.resolver, tmpl) {
		s.expand(ctx, tmpl, sub, active, sc)
	}
}
