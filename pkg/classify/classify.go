// Package classify decides what a syntax node means for navigation: a
// translation or variable definition, a use of one, an include or a tag.
package classify

import (
	"strings"

	"github.com/walteh/liquidscope/pkg/liquid"
)

type RoleKind int

const (
	RoleNone RoleKind = iota
	RoleTranslationDefinition
	RoleTranslationReference
	RoleVariableDefinition
	RoleVariableReference
	RoleInclude
	RoleTag
)

func (k RoleKind) String() string {
	switch k {
	case RoleTranslationDefinition:
		return "translation_definition"
	case RoleTranslationReference:
		return "translation_reference"
	case RoleVariableDefinition:
		return "variable_definition"
	case RoleVariableReference:
		return "variable_reference"
	case RoleInclude:
		return "include"
	case RoleTag:
		return "tag"
	}
	return "none"
}

// DefinitionKind says which statement bound a variable.
type DefinitionKind int

const (
	DefinitionNone DefinitionKind = iota
	DefinitionAssign
	DefinitionCapture
	DefinitionForItem
)

func (k DefinitionKind) String() string {
	switch k {
	case DefinitionAssign:
		return "assign"
	case DefinitionCapture:
		return "capture"
	case DefinitionForItem:
		return "for"
	}
	return "none"
}

// Role is the result of classifying a node.
type Role struct {
	Kind RoleKind
	// Node is the key, name, path or keyword node the role is about.
	Node *liquid.Node
	// Statement is the enclosing statement, nil for bare variable uses.
	Statement *liquid.Node
	// Name is the translation key, variable name, include path or tag name,
	// unquoted.
	Name       string
	Definition DefinitionKind
}

var none = Role{Kind: RoleNone}

// Classify returns the role of n. Anything outside the known contexts is RoleNone.
func Classify(n *liquid.Node) Role {
	if n == nil {
		return none
	}

	switch n.Kind() {
	case liquid.KindTranslationStatement:
		return keyed(RoleTranslationDefinition, n, "key")
	case liquid.KindTranslationExpression:
		return keyed(RoleTranslationReference, n, "key")
	case liquid.KindIncludeStatement:
		return keyed(RoleInclude, n, "path")
	case liquid.KindCustomUnpairedStatement, liquid.KindCustomPairedStatement:
		if kw := n.ChildOfKind(liquid.KindCustomKeyword); kw != nil {
			return Role{Kind: RoleTag, Node: kw, Statement: n, Name: kw.Text()}
		}
		return none
	case liquid.KindCustomKeyword:
		return Role{Kind: RoleTag, Node: n, Statement: n.Parent(), Name: n.Text()}
	case liquid.KindKeyword:
		return classifyKeyword(n)
	case liquid.KindString:
		return classifyString(n)
	case liquid.KindIdentifier:
		return classifyIdentifier(n)
	}
	return none
}

func keyed(kind RoleKind, stmt *liquid.Node, field string) Role {
	key := stmt.ChildByFieldName(field)
	if key == nil {
		return none
	}
	return Role{Kind: kind, Node: key, Statement: stmt, Name: StripQuotes(key.Text())}
}

// classifyKeyword treats the keyword of a translation or include as the
// statement itself; every other keyword is a tag.
func classifyKeyword(n *liquid.Node) Role {
	parent := n.Parent()
	if parent == nil {
		return none
	}
	switch parent.Kind() {
	case liquid.KindTranslationStatement, liquid.KindTranslationExpression, liquid.KindIncludeStatement:
		return Classify(parent)
	}
	return Role{Kind: RoleTag, Node: n, Statement: parent, Name: strings.TrimSuffix(n.Text(), "=")}
}

func classifyString(n *liquid.Node) Role {
	parent := n.Parent()
	if parent == nil {
		return none
	}
	switch {
	case n.FieldName() == "key" && (parent.Kind() == liquid.KindTranslationStatement || parent.Kind() == liquid.KindTranslationExpression):
		return Classify(parent)
	case n.FieldName() == "path" && parent.Kind() == liquid.KindIncludeStatement:
		return Classify(parent)
	}
	return none
}

type site struct {
	parent liquid.NodeKind
	field  string
}

var definitionSites = map[site]DefinitionKind{
	{liquid.KindAssignmentStatement, "variable_name"}: DefinitionAssign,
	{liquid.KindCaptureStatement, "variable"}:         DefinitionCapture,
	{liquid.KindForLoopStatement, "item"}:             DefinitionForItem,
}

var referenceSites = map[site]bool{
	{liquid.KindProgram, ""}:                  true,
	{liquid.KindBlock, ""}:                    true,
	{liquid.KindFilter, "body"}:               true,
	{liquid.KindAssignmentStatement, "value"}: true,
	{liquid.KindForLoopStatement, "iterator"}: true,
	{liquid.KindIfStatement, "condition"}:     true,
	{liquid.KindUnlessStatement, "condition"}: true,
	{liquid.KindElsifClause, "condition"}:     true,
	{liquid.KindPushStatement, "array"}:       true,
	{liquid.KindPushStatement, "item"}:        true,
	{liquid.KindPopStatement, "array"}:        true,
	{liquid.KindPopStatement, "item"}:         true,
	{liquid.KindArgumentList, ""}:             true,
}

func classifyIdentifier(n *liquid.Node) Role {
	parent := n.Parent()
	if parent == nil {
		return none
	}
	s := site{parent: parent.Kind(), field: n.FieldName()}

	if def, ok := definitionSites[s]; ok {
		return Role{
			Kind:       RoleVariableDefinition,
			Node:       n,
			Statement:  parent,
			Name:       BindingName(n.Text()),
			Definition: def,
		}
	}
	if referenceSites[s] {
		r := Role{Kind: RoleVariableReference, Node: n, Name: BindingName(n.Text())}
		if parent.Kind().IsStatement() {
			r.Statement = parent
		}
		return r
	}
	return none
}

// StripQuotes removes one pair of matching single or double quotes.
func StripQuotes(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// BindingName returns the variable name for plain and bracket ([name]) forms.
func BindingName(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// LocaleValues returns the named arguments of a translation definition
// (default, nl, en, ...) with their values unquoted.
func LocaleValues(stmt *liquid.Node) map[string]string {
	out := map[string]string{}
	for _, c := range stmt.ChildrenByFieldName("argument") {
		if c.Kind() != liquid.KindNamedArgument {
			continue
		}
		key, value := c.ChildByFieldName("key"), c.ChildByFieldName("value")
		if key == nil || value == nil {
			continue
		}
		out[key.Text()] = StripQuotes(value.Text())
	}
	return out
}
