package list_templates

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/walteh/liquidscope/pkg/cli"
	"github.com/walteh/liquidscope/pkg/template"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

type Handler struct {
	opts    *cli.Options
	flatten bool
}

func NewListTemplatesCommand(opts *cli.Options) *cobra.Command {
	me := &Handler{opts: opts}

	cmd := &cobra.Command{
		Use:   "list-templates",
		Short: "list the templates and shared parts of the workspace",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().BoolVar(&me.flatten, "flatten", false, "flatten every template and report part and skip counts")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

type entry struct {
	Template string `json:"template"`
	File     string `json:"file"`
	Parts    *int   `json:"parts,omitempty"`
	Skipped  *int   `json:"skipped,omitempty"`
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	ctx, app, err := me.opts.Setup(ctx)
	if err != nil {
		return err
	}

	ids, err := app.Service.Templates(ctx)
	if err != nil {
		return err
	}

	entries := make([]entry, len(ids))
	for i, id := range ids {
		entries[i] = entry{Template: id.Handle.String(), File: app.Service.Workspace().EntryFile(id)}
	}

	if me.flatten {
		if err := flattenAll(ctx, app, ids, entries); err != nil {
			return err
		}
	}

	return app.Print(out, entries, func(w io.Writer) error {
		for _, e := range entries {
			line := fmt.Sprintf("%-40s %s", e.Template, app.Rel(e.File))
			if e.Parts != nil {
				line += fmt.Sprintf("\tparts=%d skipped=%d", *e.Parts, *e.Skipped)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// flattenAll fills in part counts. Each goroutine writes only its own entry.
func flattenAll(ctx context.Context, app *cli.App, ids []template.Identity, entries []entry) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, id := range ids {
		g.Go(func() error {
			parts, report, err := app.Service.Flatten(ctx, entries[i].File)
			if err != nil {
				return errors.Errorf("flattening %s: %w", id.Handle, err)
			}
			n, skipped := len(parts), len(report.Skipped)+len(report.Cycles)
			entries[i].Parts, entries[i].Skipped = &n, &skipped
			return nil
		})
	}

	return g.Wait()
}
