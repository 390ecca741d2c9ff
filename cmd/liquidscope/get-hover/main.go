package get_hover

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/liquidscope/pkg/cli"
)

type Handler struct {
	opts      *cli.Options
	file      string
	line      string
	character string
}

func NewGetHoverCommand(opts *cli.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "get-hover <file> <line> <character>",
		Short: "print the hover markdown for a zero-based position",
		Args:  cobra.ExactArgs(3),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file, me.line, me.character = args[0], args[1], args[2]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
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

	info, err := app.Service.Hover(ctx, app.Abs(me.file), at)
	if err != nil {
		return err
	}

	return app.Print(out, info, func(w io.Writer) error {
		if info == nil {
			return nil
		}
		_, err := fmt.Fprintln(w, info.Markdown())
		return err
	})
}
