package get_definition

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/liquidscope/pkg/cli"
	"github.com/walteh/liquidscope/pkg/hover"
	"github.com/walteh/liquidscope/pkg/navigate"
)

type Handler struct {
	opts      *cli.Options
	file      string
	line      string
	character string
}

func NewGetDefinitionCommand(opts *cli.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "get-definition <file> <line> <character>",
		Short: "find where the symbol at a zero-based position is defined",
		Args:  cobra.ExactArgs(3),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file, me.line, me.character = args[0], args[1], args[2]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

type output struct {
	Found    bool               `json:"found"`
	Location *navigate.Location `json:"location,omitempty"`
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	ctx, app, err := me.opts.Setup(ctx)
	if err != nil {
		return err
	}

	at, err := cli.ParsePlace(me.line, me.character)
	if err != nil {
		return err
	}

	loc, found, err := app.Service.Definition(ctx, app.Abs(me.file), at)
	if err != nil {
		return err
	}

	res := output{Found: found}
	if found {
		res.Location = &loc
	}

	return app.Print(out, res, func(w io.Writer) error {
		if !found {
			_, err := fmt.Fprintln(w, hover.NotFoundText)
			return err
		}
		_, err := fmt.Fprintf(w, "%s:%d:%d\t%s %s\n", app.Rel(loc.File), loc.Range.Start.Line+1, loc.Range.Start.Character+1, loc.Role, loc.Name)
		return err
	})
}
