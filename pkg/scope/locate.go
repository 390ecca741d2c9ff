package scope

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/liquidscope/pkg/classify"
	"github.com/walteh/liquidscope/pkg/flatten"
	"github.com/walteh/liquidscope/pkg/liquid"
)

type TranslationDefinitionResult struct {
	Definition liquid.NodeRef    `json:"definition"`
	KeyNode    liquid.NodeRef    `json:"key_node"`
	FilePath   string            `json:"file_path"`
	Key        string            `json:"key"`
	Values     map[string]string `json:"values"`
}

type VariableDefinitionResult struct {
	// Definition is the bound name when there is one, the statement otherwise.
	Definition     liquid.NodeRef          `json:"definition"`
	Statement      liquid.NodeRef          `json:"statement"`
	FilePath       string                  `json:"file_path"`
	Name           string                  `json:"name"`
	DefinitionKind classify.DefinitionKind `json:"-"`
}

type TagResult struct {
	Statement liquid.NodeRef       `json:"statement"`
	FilePath  string               `json:"file_path"`
	Part      flatten.TemplatePart `json:"part"`
}

// FindTranslation returns the definition of key in scope at the request
// cursor. Same-file definitions on earlier lines win over anything included;
// otherwise the first included file, in chain order, that defines key wins.
func (me *Locator) FindTranslation(ctx context.Context, req Request, key string) (TranslationDefinitionResult, bool, error) {
	s := me.newSession()
	sc, tree, err := s.buildContext(ctx, req, false)
	if err != nil {
		return TranslationDefinitionResult{}, false, err
	}

	before := func(n *liquid.Node) bool {
		return n.StartPoint().Line < req.Cursor.Line
	}
	if res, ok := lastTranslation(tree, req.File, key, before); ok {
		return res, true, nil
	}

	for _, stmt := range sc.Chain {
		if res, ok := lastTranslation(s.trees[stmt.ResolvedFile], stmt.ResolvedFile, key, nil); ok {
			return res, true, nil
		}
	}

	zerolog.Ctx(ctx).Debug().Str("key", key).Int("chain", len(sc.Chain)).Msg("translation not found")
	return TranslationDefinitionResult{}, false, nil
}

// lastTranslation returns the last definition of key in tree accepted by keep.
func lastTranslation(tree *liquid.Tree, file, key string, keep func(*liquid.Node) bool) (TranslationDefinitionResult, bool) {
	var res TranslationDefinitionResult
	found := false
	for _, m := range liquid.TranslationDefinitions.Matches(tree.Root()) {
		role := classify.Classify(m.Capture("definition"))
		if role.Kind != classify.RoleTranslationDefinition || role.Name != key {
			continue
		}
		if keep != nil && !keep(role.Statement) {
			continue
		}
		res = TranslationDefinitionResult{
			Definition: liquid.Snapshot(role.Statement),
			KeyNode:    liquid.Snapshot(role.Node),
			FilePath:   file,
			Key:        role.Name,
			Values:     classify.LocaleValues(role.Statement),
		}
		found = true
	}
	return res, found
}

// FindVariable returns the binding of name in scope at the request cursor.
// In the request file a binding counts once it is complete before the
// cursor: assign and capture statements must end first, a for item only
// needs its loop to have started.
func (me *Locator) FindVariable(ctx context.Context, req Request, name string) (VariableDefinitionResult, bool, error) {
	s := me.newSession()
	sc, tree, err := s.buildContext(ctx, req, true)
	if err != nil {
		return VariableDefinitionResult{}, false, err
	}

	inScope := func(role classify.Role) bool {
		if role.Definition == classify.DefinitionForItem {
			return role.Statement.StartPoint().Before(req.Cursor)
		}
		return role.Statement.EndPoint().Compare(req.Cursor) <= 0
	}
	if res, ok := lastVariable(tree, req.File, name, inScope); ok {
		return res, true, nil
	}

	for _, stmt := range sc.Chain {
		if res, ok := lastVariable(s.trees[stmt.ResolvedFile], stmt.ResolvedFile, name, nil); ok {
			return res, true, nil
		}
	}

	zerolog.Ctx(ctx).Debug().Str("name", name).Int("chain", len(sc.Chain)).Msg("variable not found")
	return VariableDefinitionResult{}, false, nil
}

func lastVariable(tree *liquid.Tree, file, name string, keep func(classify.Role) bool) (VariableDefinitionResult, bool) {
	var res VariableDefinitionResult
	found := false
	for _, m := range liquid.VariableDefinitions.Matches(tree.Root()) {
		stmt := m.Capture("definition")
		nameNode := m.Capture("name")
		role := classify.Classify(nameNode)
		if role.Kind != classify.RoleVariableDefinition || role.Name != name {
			continue
		}
		if keep != nil && !keep(role) {
			continue
		}
		def := stmt
		if nameNode != nil {
			def = nameNode
		}
		res = VariableDefinitionResult{
			Definition:     liquid.Snapshot(def),
			Statement:      liquid.Snapshot(stmt),
			FilePath:       file,
			Name:           role.Name,
			DefinitionKind: role.Definition,
		}
		found = true
	}
	return res, found
}

// FindTags lists every custom tag statement with the given keyword across the
// parts, in execution order. Unreadable part files are skipped.
func (me *Locator) FindTags(ctx context.Context, parts flatten.TemplateParts, keyword string) []TagResult {
	s := me.newSession()
	var out []TagResult
	for _, p := range parts {
		tree, err := s.parse(p.SourceFile)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("file", p.SourceFile).Msg("skipping unreadable part")
			continue
		}
		for _, m := range liquid.CustomTags.Matches(tree.Root()) {
			stmt := m.Capture("statement")
			if m.Capture("tag").Text() != keyword {
				continue
			}
			if line := stmt.StartPoint().Line; line < p.StartLine || line > p.EndLine {
				continue
			}
			out = append(out, TagResult{Statement: liquid.Snapshot(stmt), FilePath: p.SourceFile, Part: p})
		}
	}
	return out
}
