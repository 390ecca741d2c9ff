package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/liquidscope/pkg/liquid"
)

// nodeAt parses src and returns the smallest node under the first occurrence of marker.
func nodeAt(t *testing.T, src, marker string) *liquid.Node {
	t.Helper()
	tree, err := liquid.Parse([]byte(src))
	require.NoError(t, err)
	idx := strings.Index(src, marker)
	require.GreaterOrEqual(t, idx, 0, "marker %q not in source", marker)
	return tree.DescendantForPlace(tree.Lines().PlaceOf(idx))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		marker     string
		kind       RoleKind
		roleName   string
		definition DefinitionKind
	}{
		{name: "assign_target", src: `{% assign total = price %}`, marker: "total", kind: RoleVariableDefinition, roleName: "total", definition: DefinitionAssign},
		{name: "assign_value", src: `{% assign total = price %}`, marker: "price", kind: RoleVariableReference, roleName: "price"},
		{name: "assign_bracket", src: `{% assign [dyn] = 1 %}`, marker: "dyn", kind: RoleVariableDefinition, roleName: "dyn", definition: DefinitionAssign},
		{name: "capture_target", src: `{% capture body %}x{% endcapture %}`, marker: "body", kind: RoleVariableDefinition, roleName: "body", definition: DefinitionCapture},
		{name: "for_item", src: `{% for row in rows %}{% endfor %}`, marker: "row ", kind: RoleVariableDefinition, roleName: "row", definition: DefinitionForItem},
		{name: "for_iterator", src: `{% for row in rows %}{% endfor %}`, marker: "rows", kind: RoleVariableReference, roleName: "rows"},
		{name: "print", src: `{{ amount }}`, marker: "amount", kind: RoleVariableReference, roleName: "amount"},
		{name: "print_in_block", src: `{% if a %}{{ amount }}{% endif %}`, marker: "amount", kind: RoleVariableReference, roleName: "amount"},
		{name: "filter_body", src: `{{ amount | round }}`, marker: "amount", kind: RoleVariableReference, roleName: "amount"},
		{name: "filter_name_is_not_a_variable", src: `{{ amount | round }}`, marker: "round", kind: RoleNone},
		{name: "filter_argument", src: `{{ amount | plus: extra }}`, marker: "extra", kind: RoleVariableReference, roleName: "extra"},
		{name: "if_condition", src: `{% if flag %}{% endif %}`, marker: "flag", kind: RoleVariableReference, roleName: "flag"},
		{name: "unless_condition", src: `{% unless flag %}{% endunless %}`, marker: "flag", kind: RoleVariableReference, roleName: "flag"},
		{name: "elsif_condition", src: `{% if a %}{% elsif other %}{% endif %}`, marker: "other", kind: RoleVariableReference, roleName: "other"},
		{name: "push_array", src: `{% push x to:list %}`, marker: "list", kind: RoleVariableReference, roleName: "list"},
		{name: "comparison_is_not_listed", src: `{% if a == b %}{% endif %}`, marker: "b ", kind: RoleNone},
		{name: "dotted_access_is_not_listed", src: `{{ company.name }}`, marker: "name", kind: RoleNone},
		{name: "named_argument_value_is_not_listed", src: `{% input custom.a as:kind %}`, marker: "kind", kind: RoleNone},
		{name: "translation_definition_key", src: `{% t= "greet" default:"Hi" %}`, marker: "greet", kind: RoleTranslationDefinition, roleName: "greet"},
		{name: "translation_definition_keyword", src: `{% t= "greet" %}`, marker: "t=", kind: RoleTranslationDefinition, roleName: "greet"},
		{name: "translation_reference", src: `{% t 'greet' %}`, marker: "greet", kind: RoleTranslationReference, roleName: "greet"},
		{name: "include_path", src: `{% include "parts/a" %}`, marker: "parts", kind: RoleInclude, roleName: "parts/a"},
		{name: "custom_tag", src: `{% result 'total' x %}`, marker: "result", kind: RoleTag, roleName: "result"},
		{name: "assign_keyword", src: `{% assign a = 1 %}`, marker: "assign", kind: RoleTag, roleName: "assign"},
		{name: "capture_keyword", src: `{% capture a %}{% endcapture %}`, marker: "capture", kind: RoleTag, roleName: "capture"},
		{name: "plain_text", src: `hello`, marker: "hello", kind: RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role := Classify(nodeAt(t, tt.src, tt.marker))
			assert.Equal(t, tt.kind, role.Kind, "got %s", role.Kind)
			if tt.kind == RoleNone {
				return
			}
			assert.Equal(t, tt.roleName, role.Name)
			assert.Equal(t, tt.definition, role.Definition)
			require.NotNil(t, role.Node)
		})
	}
}

// pop's item is the destination, but the closed list still names it as a use.
func TestPopItemIsReference(t *testing.T) {
	role := Classify(nodeAt(t, `{% pop list to:dest %}`, "dest"))
	assert.Equal(t, RoleVariableReference, role.Kind)
	assert.Equal(t, "dest", role.Name)
}

func TestNilNode(t *testing.T) {
	assert.Equal(t, RoleNone, Classify(nil).Kind)
}

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{`"k"`, "k"},
		{`'k'`, "k"},
		{`"k'`, `"k'`},
		{`"`, `"`},
		{`k`, `k`},
		{`""`, ``},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.out, StripQuotes(tt.in))
		})
	}
}

func TestLocaleValuesRoundTrip(t *testing.T) {
	for _, src := range []string{
		`{% t= "k" default:"v" nl:"w" %}`,
		`{% t= 'k' default:'v' nl:'w' %}`,
	} {
		t.Run(src, func(t *testing.T) {
			role := Classify(nodeAt(t, src, "k"))
			require.Equal(t, RoleTranslationDefinition, role.Kind)
			assert.Equal(t, "k", role.Name)
			assert.Equal(t, map[string]string{"default": "v", "nl": "w"}, LocaleValues(role.Statement))
		})
	}
}
