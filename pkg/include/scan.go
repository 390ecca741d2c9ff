package include

import (
	"context"

	"github.com/walteh/liquidscope/pkg/classify"
	"github.com/walteh/liquidscope/pkg/liquid"
	"github.com/walteh/liquidscope/pkg/position"
	"github.com/walteh/liquidscope/pkg/template"
)

// Statement is one include directive found in a file.
type Statement struct {
	IncludePath string
	// Resolved is false when no candidate file exists or a shared part is not
	// allowed; ResolvedFile is then empty.
	Resolved     bool
	ResolvedFile string
	Kind         template.PartKind
	Name         string
	// Line is the first line of the directive, EndLine its last.
	Line    int
	EndLine int
	Range   position.Range
}

// Scan lists the include directives of tree in document order, resolving each
// against tmpl. Includes whose path is not a string literal are skipped.
func Scan(ctx context.Context, tree *liquid.Tree, r *Resolver, tmpl template.Identity) []Statement {
	var out []Statement
	for _, m := range liquid.Includes.Matches(tree.Root()) {
		stmt, path := m.Capture("include"), m.Capture("path")
		if stmt == nil || path == nil {
			continue
		}
		rng := stmt.Range()
		s := Statement{
			IncludePath: classify.StripQuotes(path.Text()),
			Line:        rng.Start.Line,
			EndLine:     rng.End.Line,
			Range:       rng,
		}
		if res, ok := r.Resolve(ctx, s.IncludePath, tmpl); ok {
			s.Resolved = true
			s.ResolvedFile = res.File
			s.Kind = res.Kind
			s.Name = res.Name
		}
		out = append(out, s)
	}
	return out
}
