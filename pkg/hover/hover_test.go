package hover_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/liquidscope/pkg/classify"
	"github.com/walteh/liquidscope/pkg/hover"
	"github.com/walteh/liquidscope/pkg/include"
	"github.com/walteh/liquidscope/pkg/liquid"
	"github.com/walteh/liquidscope/pkg/position"
	"github.com/walteh/liquidscope/pkg/scope"
	"github.com/walteh/liquidscope/pkg/template"
)

var at = position.Range{Start: position.Place{Line: 1, Character: 2}, End: position.Place{Line: 1, Character: 5}}

func TestTranslation(t *testing.T) {
	f := hover.Formatter{Root: "/ws"}
	info := f.Translation(scope.TranslationDefinitionResult{
		Definition: liquid.NodeRef{Range: position.Range{Start: position.Place{Line: 4}}},
		FilePath:   "/ws/reconciliation_texts/rt/text_parts/a.liquid",
		Key:        "title",
		Values:     map[string]string{"nl": "Titel", "default": "Title", "en": "A|B"},
	}, at)

	require.Len(t, info.Content, 1)
	assert.Equal(t, "### Translation\n\n`title`\n\n"+
		"| locale | text |\n|---|---|\n"+
		"| default | Title |\n"+
		"| en | A\\|B |\n"+
		"| nl | Titel |\n\n"+
		"Defined in `reconciliation_texts/rt/text_parts/a.liquid:5`", info.Content[0])
	assert.Equal(t, at, info.Range)
}

func TestVariable(t *testing.T) {
	f := hover.Formatter{}
	info := f.Variable(scope.VariableDefinitionResult{
		Definition:     liquid.NodeRef{Range: position.Range{Start: position.Place{Line: 0, Character: 10}}},
		Statement:      liquid.NodeRef{Text: "{% assign x = 1 %}"},
		FilePath:       "main.liquid",
		Name:           "x",
		DefinitionKind: classify.DefinitionAssign,
	}, at)

	assert.Equal(t, "### Variable `x`\n\n```liquid\n{% assign x = 1 %}\n```\n\nBound by `assign`, defined in `main.liquid:1`", info.Markdown())
}

func TestInclude(t *testing.T) {
	f := hover.Formatter{Root: "/ws"}

	info := f.Include(include.Statement{
		IncludePath:  "parts/a",
		Resolved:     true,
		ResolvedFile: "/ws/reconciliation_texts/rt/text_parts/a.liquid",
		Kind:         template.PartText,
		Name:         "a",
	}, at)
	assert.Equal(t, "### Include `parts/a`\n\ntext_part `a` from `reconciliation_texts/rt/text_parts/a.liquid:1`", info.Markdown())

	info = f.Include(include.Statement{IncludePath: "parts/missing"}, at)
	assert.Equal(t, "### Include `parts/missing`\n\nPart not found", info.Markdown())
}

func TestTag(t *testing.T) {
	f := hover.Formatter{}
	info := f.Tag("assign", at)
	require.NotNil(t, info)
	assert.Contains(t, info.Markdown(), "### `assign`")
	assert.Contains(t, info.Markdown(), "{% assign total = 0 %}")

	assert.Nil(t, f.Tag("no_such_tag", at))
}

func TestNotFound(t *testing.T) {
	info := hover.NotFound(at)
	assert.Equal(t, hover.NotFoundText, info.Markdown())
	assert.Equal(t, "definition not found", info.Markdown())

	var nilInfo *hover.Info
	assert.Equal(t, "", nilInfo.Markdown())
}

func TestBackticksStayInsideCode(t *testing.T) {
	f := hover.Formatter{}

	tests := []struct {
		name string
		info *hover.Info
		want string
	}{
		{
			name: "translation_key",
			info: f.Translation(scope.TranslationDefinitionResult{FilePath: "a.liquid", Key: "a`b"}, at),
			want: "### Translation\n\n``a`b``\n\nDefined in `a.liquid:1`",
		},
		{
			name: "include_path",
			info: f.Include(include.Statement{IncludePath: "parts/``x"}, at),
			want: "### Include ```parts/``x```\n\nPart not found",
		},
		{
			name: "leading_backtick",
			info: f.Include(include.Statement{IncludePath: "`x"}, at),
			want: "### Include `` `x ``\n\nPart not found",
		},
		{
			name: "fence_in_statement",
			info: f.Variable(scope.VariableDefinitionResult{
				Statement:      liquid.NodeRef{Text: "{% capture x %}```{% endcapture %}"},
				FilePath:       "a.liquid",
				Name:           "x",
				DefinitionKind: classify.DefinitionCapture,
			}, at),
			want: "### Variable `x`\n\n````liquid\n{% capture x %}```{% endcapture %}\n````\n\nBound by `capture`, defined in `a.liquid:1`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Markdown())
		})
	}
}
