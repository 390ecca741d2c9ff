package get_flattened

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/walteh/liquidscope/pkg/cli"
	"github.com/walteh/liquidscope/pkg/flatten"
	"github.com/walteh/liquidscope/pkg/template"
)

type Handler struct {
	opts   *cli.Options
	file   string
	strict bool
}

func NewGetFlattenedCommand(opts *cli.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "get-flattened <file>",
		Short: "print the execution-ordered parts of the template owning file",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().BoolVar(&me.strict, "strict", false, "fail when an include is missing or part of a cycle")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

type skipped struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	IncludePath string `json:"include_path"`
	Reason      string `json:"reason"`
}

type output struct {
	Parts   flatten.TemplateParts `json:"parts"`
	Skipped []skipped             `json:"skipped,omitempty"`
}

var kindColors = map[template.PartKind]*color.Color{
	template.PartMain:   color.New(color.FgCyan),
	template.PartText:   color.New(color.FgGreen),
	template.PartShared: color.New(color.FgMagenta),
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	ctx, app, err := me.opts.Setup(ctx)
	if err != nil {
		return err
	}

	parts, report, err := app.Service.Flatten(ctx, app.Abs(me.file))
	if err != nil {
		return err
	}

	res := output{Parts: parts}
	for _, s := range report.Skipped {
		reason := "not found"
		if s.Err != nil {
			reason = s.Err.Error()
		}
		res.Skipped = append(res.Skipped, skipped{File: app.Rel(s.File), Line: s.Statement.Line, IncludePath: s.Statement.IncludePath, Reason: reason})
	}
	for _, c := range report.Cycles {
		res.Skipped = append(res.Skipped, skipped{File: app.Rel(c.File), Line: c.Statement.Line, IncludePath: c.Statement.IncludePath, Reason: "cycle"})
	}

	err = app.Print(out, res, func(w io.Writer) error {
		for _, p := range parts {
			kind := kindColors[p.Kind].Sprintf("%-11s", p.Kind)
			if _, err := fmt.Fprintf(w, "%s %-24s %s:%d-%d\n", kind, p.Name, app.Rel(p.SourceFile), p.StartLine+1, p.EndLine+1); err != nil {
				return err
			}
		}
		warn := color.New(color.FgYellow)
		for _, s := range res.Skipped {
			if _, err := fmt.Fprintf(w, "%s %q at %s:%d (%s)\n", warn.Sprint("skipped"), s.IncludePath, s.File, s.Line+1, s.Reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if me.strict {
		return report.Err()
	}
	return nil
}
