package get_tags

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/walteh/liquidscope/pkg/cli"
)

type Handler struct {
	opts    *cli.Options
	file    string
	keyword string
}

func NewGetTagsCommand(opts *cli.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "get-tags <file> <keyword>",
		Short: "list every use of a custom tag across the template owning file, in execution order",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file, me.keyword = args[0], args[1]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	ctx, app, err := me.opts.Setup(ctx)
	if err != nil {
		return err
	}

	tags, err := app.Service.Tags(ctx, app.Abs(me.file), me.keyword)
	if err != nil {
		return err
	}

	loc := color.New(color.Faint)
	return app.Print(out, tags, func(w io.Writer) error {
		for _, t := range tags {
			where := loc.Sprintf("%s:%d", app.Rel(t.FilePath), t.Statement.Range.Start.Line+1)
			if _, err := fmt.Fprintf(w, "%s\t%s\n", where, t.Statement.Text); err != nil {
				return err
			}
		}
		return nil
	})
}
