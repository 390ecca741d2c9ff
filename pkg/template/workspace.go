package template

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const (
	MainFileName     = "main.liquid"
	TextPartsDir     = "text_parts"
	ManifestFileName = "config.json"
	sourceExt        = ".liquid"
)

// Workspace is a directory holding templates of every type plus the shared parts.
type Workspace struct {
	fs        afero.Fs
	root      string
	sharedDir string
}

type WorkspaceOption func(*Workspace)

// WithSharedDir overrides the shared parts directory, relative to the root.
func WithSharedDir(dir string) WorkspaceOption {
	return func(w *Workspace) {
		if dir != "" {
			w.sharedDir = filepath.ToSlash(filepath.Clean(dir))
		}
	}
}

func NewWorkspace(fs afero.Fs, root string, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{fs: fs, root: filepath.Clean(root), sharedDir: string(TypeSharedPart)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workspace) Fs() afero.Fs {
	return w.fs
}

func (w *Workspace) Root() string {
	return w.root
}

// SharedRoot is the directory holding one subdirectory per shared part.
func (w *Workspace) SharedRoot() string {
	return filepath.Join(w.root, filepath.FromSlash(w.sharedDir))
}

func (w *Workspace) typesPattern() string {
	names := make([]string, len(TemplateTypes))
	for i, t := range TemplateTypes {
		names[i] = string(t)
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Identify works out which template and part path belongs to.
func (w *Workspace) Identify(p string) (Identity, error) {
	rel, err := filepath.Rel(w.root, filepath.Clean(p))
	if err != nil || strings.HasPrefix(rel, "..") {
		return Identity{}, errors.Errorf("%w: %s is outside %s", ErrNotTemplate, p, w.root)
	}
	rel = filepath.ToSlash(rel)
	segs := strings.Split(rel, "/")

	types := w.typesPattern()
	switch {
	case match(types+"/*/"+MainFileName, rel):
		return Identity{
			Handle:   Handle{Type: Type(segs[0]), Name: segs[1]},
			PartKind: PartMain,
			PartName: strings.TrimSuffix(MainFileName, sourceExt),
			Dir:      filepath.Join(w.root, segs[0], segs[1]),
			File:     p,
		}, nil
	case match(types+"/*/"+TextPartsDir+"/**/*"+sourceExt, rel):
		return Identity{
			Handle:   Handle{Type: Type(segs[0]), Name: segs[1]},
			PartKind: PartText,
			PartName: strings.TrimSuffix(strings.Join(segs[3:], "/"), sourceExt),
			Dir:      filepath.Join(w.root, segs[0], segs[1]),
			File:     p,
		}, nil
	case match(w.sharedDir+"/*/*"+sourceExt, rel):
		n := len(strings.Split(w.sharedDir, "/"))
		name := segs[n]
		if path.Base(rel) != name+sourceExt {
			break
		}
		return Identity{
			Handle:   Handle{Type: TypeSharedPart, Name: name},
			PartKind: PartShared,
			PartName: name,
			Dir:      filepath.Join(w.SharedRoot(), name),
			File:     p,
		}, nil
	}
	return Identity{}, errors.Errorf("%w: %s", ErrNotTemplate, p)
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// EntryFile is the file flattening starts from for the template owning id.
func (w *Workspace) EntryFile(id Identity) string {
	if id.PartKind == PartShared {
		return filepath.Join(id.Dir, id.Name+sourceExt)
	}
	return filepath.Join(id.Dir, MainFileName)
}

// Templates lists every template and shared part in the workspace, sorted by handle.
func (w *Workspace) Templates() ([]Identity, error) {
	exists, err := afero.DirExists(w.fs, w.root)
	if err != nil {
		return nil, errors.Errorf("checking workspace: %w", err)
	}
	if !exists {
		return nil, errors.Errorf("workspace %s does not exist", w.root)
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(w.fs, w.root))
	patterns := []string{
		w.typesPattern() + "/*/" + MainFileName,
		w.sharedDir + "/*/*" + sourceExt,
	}

	var out []Identity
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, errors.Errorf("globbing %s: %w", pattern, err)
		}
		for _, m := range matches {
			id, err := w.Identify(filepath.Join(w.root, filepath.FromSlash(m)))
			if err != nil {
				// shared dirs may hold stray .liquid files that are not the part itself
				continue
			}
			out = append(out, id)
		}
	}

	slices.SortFunc(out, func(a, b Identity) int {
		return strings.Compare(a.Handle.String(), b.Handle.String())
	})
	return out, nil
}
