package navigate

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/liquidscope/pkg/classify"
	"github.com/walteh/liquidscope/pkg/hover"
	"github.com/walteh/liquidscope/pkg/include"
	"github.com/walteh/liquidscope/pkg/liquid"
	"github.com/walteh/liquidscope/pkg/position"
	"github.com/walteh/liquidscope/pkg/scope"
)

// Location is where a definition lives. Includes point at the start of the
// included file.
type Location struct {
	File  string         `json:"file"`
	Range position.Range `json:"range"`
	Role  string         `json:"role"`
	Name  string         `json:"name"`
}

// Definition finds what the symbol under the cursor refers to. Definitions
// resolve to themselves. Columns in at and in the result count characters.
func (me *Service) Definition(ctx context.Context, file string, at position.Place) (Location, bool, error) {
	ctx = withRequest(ctx, "definition", file)

	t, err := me.resolveTarget(file, at)
	if err != nil {
		return Location{}, false, err
	}

	role := t.role
	loc := Location{Role: role.Kind.String(), Name: role.Name}
	zerolog.Ctx(ctx).Debug().Str("role", loc.Role).Str("name", role.Name).Msg("classified cursor")

	switch role.Kind {
	case classify.RoleTranslationDefinition, classify.RoleVariableDefinition:
		loc.File, loc.Range = t.file, t.characters(role.Node.Range())
		return loc, true, nil

	case classify.RoleTranslationReference:
		res, ok, err := me.locator.FindTranslation(ctx, t.request(), role.Name)
		if err != nil || !ok {
			return Location{}, false, err
		}
		loc.File, loc.Range = res.FilePath, me.characters(res.FilePath, res.KeyNode.Range)
		return loc, true, nil

	case classify.RoleVariableReference:
		res, ok, err := me.locator.FindVariable(ctx, t.request(), role.Name)
		if err != nil || !ok {
			return Location{}, false, err
		}
		loc.File, loc.Range = res.FilePath, me.characters(res.FilePath, res.Definition.Range)
		return loc, true, nil

	case classify.RoleInclude:
		res, ok := me.resolver.Resolve(ctx, role.Name, t.tmpl)
		if !ok {
			return Location{}, false, nil
		}
		loc.File = res.File
		return loc, true, nil
	}

	return Location{}, false, nil
}

// Hover describes the symbol under the cursor. It returns nil when the cursor
// is on nothing navigable, and hover.NotFound when a reference does not
// resolve.
func (me *Service) Hover(ctx context.Context, file string, at position.Place) (*hover.Info, error) {
	ctx = withRequest(ctx, "hover", file)

	t, err := me.resolveTarget(file, at)
	if err != nil {
		return nil, err
	}

	role := t.role
	if role.Kind == classify.RoleNone {
		return nil, nil
	}
	rng := t.characters(role.Node.Range())

	switch role.Kind {
	case classify.RoleTranslationDefinition:
		return me.format.Translation(scope.TranslationDefinitionResult{
			Definition: liquid.Snapshot(role.Statement),
			KeyNode:    liquid.Snapshot(role.Node),
			FilePath:   t.file,
			Key:        role.Name,
			Values:     classify.LocaleValues(role.Statement),
		}, rng), nil

	case classify.RoleTranslationReference:
		res, ok, err := me.locator.FindTranslation(ctx, t.request(), role.Name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return hover.NotFound(rng), nil
		}
		return me.format.Translation(res, rng), nil

	case classify.RoleVariableDefinition:
		stmt := role.Statement
		if stmt == nil {
			stmt = role.Node
		}
		return me.format.Variable(scope.VariableDefinitionResult{
			Definition:     liquid.Snapshot(role.Node),
			Statement:      liquid.Snapshot(stmt),
			FilePath:       t.file,
			Name:           role.Name,
			DefinitionKind: role.Definition,
		}, rng), nil

	case classify.RoleVariableReference:
		res, ok, err := me.locator.FindVariable(ctx, t.request(), role.Name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return hover.NotFound(rng), nil
		}
		return me.format.Variable(res, rng), nil

	case classify.RoleInclude:
		stmt := include.Statement{IncludePath: role.Name, Range: role.Statement.Range()}
		if res, ok := me.resolver.Resolve(ctx, role.Name, t.tmpl); ok {
			stmt.Resolved, stmt.ResolvedFile, stmt.Kind, stmt.Name = true, res.File, res.Kind, res.Name
		}
		return me.format.Include(stmt, rng), nil

	case classify.RoleTag:
		return me.format.Tag(role.Name, rng), nil
	}

	return nil, nil
}
