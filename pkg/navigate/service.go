// Package navigate answers editor requests (go to definition, hover, tag
// search) for files in a template workspace.
package navigate

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/liquidscope/pkg/classify"
	"github.com/walteh/liquidscope/pkg/flatten"
	"github.com/walteh/liquidscope/pkg/hover"
	"github.com/walteh/liquidscope/pkg/include"
	"github.com/walteh/liquidscope/pkg/liquid"
	"github.com/walteh/liquidscope/pkg/partscache"
	"github.com/walteh/liquidscope/pkg/position"
	"github.com/walteh/liquidscope/pkg/scope"
	"github.com/walteh/liquidscope/pkg/template"
	"gitlab.com/tozd/go/errors"
)

type Options struct {
	SharedDir string
	CacheSize int
	MaxFiles  int
}

// Service is safe for concurrent use. Unsaved editor buffers are layered over
// the base file system with SetOverlay.
type Service struct {
	overlay   afero.Fs
	fs        afero.Fs
	ws        *template.Workspace
	resolver  *include.Resolver
	flattener *flatten.Flattener
	locator   *scope.Locator
	cache     *partscache.Cache
	format    hover.Formatter
}

func NewService(base afero.Fs, root string, opts Options) (*Service, error) {
	overlay := afero.NewMemMapFs()
	fs := afero.NewCopyOnWriteFs(base, overlay)

	cache, err := partscache.New(opts.CacheSize)
	if err != nil {
		return nil, errors.Errorf("creating parts cache: %w", err)
	}

	ws := template.NewWorkspace(fs, root, template.WithSharedDir(opts.SharedDir))
	resolver := include.NewResolver(ws, template.NewManifestPermissions(ws))

	return &Service{
		overlay:   overlay,
		fs:        fs,
		ws:        ws,
		resolver:  resolver,
		flattener: flatten.New(ws, resolver),
		locator:   scope.NewLocator(ws, resolver, scope.WithMaxFiles(opts.MaxFiles)),
		cache:     cache,
		format:    hover.Formatter{Root: ws.Root()},
	}, nil
}

func (me *Service) Workspace() *template.Workspace {
	return me.ws
}

func withRequest(ctx context.Context, op, file string) context.Context {
	logger := zerolog.Ctx(ctx).With().
		Str("request_id", uuid.NewString()).
		Str("op", op).
		Str("file", file).
		Logger()
	return logger.WithContext(ctx)
}

// SetOverlay makes content the text of file until ClearOverlay is called.
func (me *Service) SetOverlay(ctx context.Context, file string, content []byte) error {
	if err := afero.WriteFile(me.fs, file, content, 0o644); err != nil {
		return errors.Errorf("writing overlay: %w", err)
	}
	me.invalidate(ctx, file)
	return nil
}

func (me *Service) ClearOverlay(ctx context.Context, file string) error {
	if err := me.overlay.Remove(file); err != nil && !errors.Is(err, afero.ErrFileNotFound) {
		return errors.Errorf("removing overlay: %w", err)
	}
	me.invalidate(ctx, file)
	return nil
}

func (me *Service) invalidate(ctx context.Context, file string) {
	id, err := me.ws.Identify(file)
	if err != nil {
		return
	}
	if id.PartKind == template.PartShared {
		// any template may include it
		me.cache.Purge()
		return
	}
	zerolog.Ctx(ctx).Debug().Str("template", id.Handle.String()).Msg("invalidating parts")
	me.cache.Invalidate(id.Handle)
}

// target is what sits under the cursor of a request.
type target struct {
	tmpl template.Identity
	file string
	at   position.Place
	tree *liquid.Tree
	role classify.Role
}

func (me *Service) resolveTarget(file string, at position.Place) (*target, error) {
	file = filepath.Clean(file)
	tmpl, err := me.ws.Identify(file)
	if err != nil {
		return nil, err
	}
	src, err := afero.ReadFile(me.fs, file)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", file, err)
	}
	tree, err := liquid.Parse(src)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", file, err)
	}
	// requests count characters, the tree counts bytes
	at = tree.Lines().BytePlace(tree.Source(), at)
	return &target{
		tmpl: tmpl,
		file: file,
		at:   at,
		tree: tree,
		role: classify.Classify(tree.DescendantForPlace(at)),
	}, nil
}

// characters converts a range of the target file back to character columns.
func (t *target) characters(r position.Range) position.Range {
	return t.tree.Lines().CharacterRange(t.tree.Source(), r)
}

// characters converts a range of file back to character columns. The range
// is returned as is when file cannot be read.
func (me *Service) characters(file string, r position.Range) position.Range {
	src, err := afero.ReadFile(me.fs, file)
	if err != nil {
		return r
	}
	return position.NewLineIndex(src).CharacterRange(src, r)
}

func (t *target) request() scope.Request {
	return scope.Request{Template: t.tmpl, File: t.file, Cursor: t.at}
}

// Parts returns the flattened parts of the template file belongs to, cached
// until one of its files gets an overlay.
func (me *Service) Parts(ctx context.Context, file string) (flatten.TemplateParts, template.Identity, error) {
	tmpl, err := me.ws.Identify(filepath.Clean(file))
	if err != nil {
		return nil, template.Identity{}, err
	}
	parts, err := me.cache.GetOrCompute(ctx, tmpl.Handle, func(ctx context.Context) (flatten.TemplateParts, error) {
		return me.flattener.Flatten(ctx, tmpl)
	})
	if err != nil {
		return nil, tmpl, err
	}
	return parts, tmpl, nil
}

// Flatten flattens the template file belongs to, bypassing the cache so the
// report is complete.
func (me *Service) Flatten(ctx context.Context, file string) (flatten.TemplateParts, *flatten.Report, error) {
	ctx = withRequest(ctx, "flatten", file)
	tmpl, err := me.ws.Identify(filepath.Clean(file))
	if err != nil {
		return nil, nil, err
	}
	return me.flattener.FlattenWithReport(ctx, tmpl)
}

// Tags lists the statements of a custom tag across the whole template, in
// execution order.
func (me *Service) Tags(ctx context.Context, file, keyword string) ([]scope.TagResult, error) {
	ctx = withRequest(ctx, "tags", file)
	parts, _, err := me.Parts(ctx, file)
	if err != nil {
		return nil, err
	}
	return me.locator.FindTags(ctx, parts, keyword), nil
}

func (me *Service) Templates(ctx context.Context) ([]template.Identity, error) {
	return me.ws.Templates()
}
