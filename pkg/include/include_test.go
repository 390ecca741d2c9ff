package include

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/liquidscope/pkg/liquid"
	"github.com/walteh/liquidscope/pkg/template"
)

type mockPermissions struct {
	mock.Mock
}

func (m *mockPermissions) IsAllowed(ctx context.Context, sharedPart string, tmpl template.Handle) bool {
	args := m.Called(ctx, sharedPart, tmpl)
	return args.Bool(0)
}

var tmpl = template.Identity{
	Handle:   template.Handle{Type: template.TypeReconciliationText, Name: "rt"},
	PartKind: template.PartMain,
	PartName: "main",
	Dir:      "/ws/reconciliation_texts/rt",
	File:     "/ws/reconciliation_texts/rt/main.liquid",
}

func setup(t *testing.T, files ...string) (*template.Workspace, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/ws", f), []byte("x"), 0o644))
	}
	return template.NewWorkspace(fs, "/ws"), fs
}

func TestCandidatesOrder(t *testing.T) {
	assert.Equal(t, []string{
		"/d/text_parts/a.liquid",
		"/d/text_parts/a",
		"/d/parts/a.liquid",
		"/d/parts/a",
		"/d/text_parts/parts/a.liquid",
		"/d/text_parts/parts/a",
		"/d/parts/parts/a.liquid",
		"/d/parts/parts/a",
	}, Candidates("parts/a", "/d"))

	assert.Equal(t, []string{
		"/d/b.liquid",
		"/d/b",
		"/d/text_parts/b.liquid",
		"/d/text_parts/b",
		"/d/parts/b.liquid",
		"/d/parts/b",
	}, Candidates("b", "/d"))
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		files    []string
		path     string
		wantFile string
		wantKind template.PartKind
		wantName string
	}{
		{
			name:     "parts_prefix_prefers_text_parts_with_extension",
			files:    []string{"reconciliation_texts/rt/text_parts/a.liquid", "reconciliation_texts/rt/text_parts/a"},
			path:     "parts/a",
			wantFile: "/ws/reconciliation_texts/rt/text_parts/a.liquid",
			wantKind: template.PartText,
			wantName: "a",
		},
		{
			name:     "parts_prefix_without_extension",
			files:    []string{"reconciliation_texts/rt/text_parts/a"},
			path:     "parts/a",
			wantFile: "/ws/reconciliation_texts/rt/text_parts/a",
			wantKind: template.PartText,
			wantName: "a",
		},
		{
			name:     "bare_name_in_text_parts",
			files:    []string{"reconciliation_texts/rt/text_parts/b.liquid"},
			path:     "b",
			wantFile: "/ws/reconciliation_texts/rt/text_parts/b.liquid",
			wantKind: template.PartText,
			wantName: "b",
		},
		{
			name:     "template_dir_wins_over_text_parts",
			files:    []string{"reconciliation_texts/rt/b.liquid", "reconciliation_texts/rt/text_parts/b.liquid"},
			path:     "b",
			wantFile: "/ws/reconciliation_texts/rt/b.liquid",
			wantKind: template.PartText,
			wantName: "b",
		},
		{
			name:  "directory_is_not_a_file",
			files: []string{"reconciliation_texts/rt/text_parts/a/inner.liquid"},
			path:  "parts/a",
		},
		{
			name: "missing",
			path: "parts/none",
		},
		{
			name: "empty",
			path: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, _ := setup(t, tt.files...)
			r := NewResolver(ws, nil)
			res, ok := r.Resolve(ctx, tt.path, tmpl)
			if tt.wantFile == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantFile, res.File)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.wantName, res.Name)
		})
	}
}

func TestResolveSharedChecksPermission(t *testing.T) {
	ctx := context.Background()
	ws, _ := setup(t, "shared_parts/logo/logo.liquid")

	perms := &mockPermissions{}
	perms.On("IsAllowed", mock.Anything, "logo", tmpl.Handle).Return(true).Once()
	perms.On("IsAllowed", mock.Anything, "logo", tmpl.Handle).Return(false).Once()

	r := NewResolver(ws, perms)

	res, ok := r.Resolve(ctx, "shared/logo", tmpl)
	require.True(t, ok)
	assert.Equal(t, "/ws/shared_parts/logo/logo.liquid", res.File)
	assert.Equal(t, template.PartShared, res.Kind)
	assert.Equal(t, "logo", res.Name)

	_, ok = r.Resolve(ctx, "shared/logo", tmpl)
	assert.False(t, ok, "a shared part that exists but is not allowed resolves to nothing")

	_, ok = r.Resolve(ctx, "shared/missing", tmpl)
	assert.False(t, ok)

	perms.AssertExpectations(t)
}

func TestNestedIncludesResolveAgainstTemplateDir(t *testing.T) {
	ctx := context.Background()
	ws, fs := setup(t, "reconciliation_texts/rt/text_parts/b.liquid")
	require.NoError(t, afero.WriteFile(fs, "/ws/reconciliation_texts/rt/text_parts/a.liquid", []byte(`{% include "parts/b" %}`), 0o644))

	src, err := afero.ReadFile(fs, "/ws/reconciliation_texts/rt/text_parts/a.liquid")
	require.NoError(t, err)
	tree, err := liquid.Parse(src)
	require.NoError(t, err)

	stmts := Scan(ctx, tree, NewResolver(ws, nil), tmpl)
	require.Len(t, stmts, 1)
	assert.True(t, stmts[0].Resolved)
	assert.Equal(t, "/ws/reconciliation_texts/rt/text_parts/b.liquid", stmts[0].ResolvedFile)
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	ws, _ := setup(t, "reconciliation_texts/rt/text_parts/a.liquid")
	src := "{% assign x = 1 %}\n{% include 'parts/a' %}\n{% include dynamic %}\n{% include \"parts/missing\" %}\n"
	tree, err := liquid.Parse([]byte(src))
	require.NoError(t, err)

	stmts := Scan(ctx, tree, NewResolver(ws, nil), tmpl)
	require.Len(t, stmts, 2)

	assert.Equal(t, "parts/a", stmts[0].IncludePath)
	assert.Equal(t, 1, stmts[0].Line)
	assert.Equal(t, 1, stmts[0].EndLine)
	assert.True(t, stmts[0].Resolved)
	assert.Equal(t, "a", stmts[0].Name)

	assert.Equal(t, "parts/missing", stmts[1].IncludePath)
	assert.Equal(t, 3, stmts[1].Line)
	assert.False(t, stmts[1].Resolved)
	assert.Empty(t, stmts[1].ResolvedFile)
}
