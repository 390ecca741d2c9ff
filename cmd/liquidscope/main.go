package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	getdefinitioncmd "github.com/walteh/liquidscope/cmd/liquidscope/get-definition"
	getflattenedcmd "github.com/walteh/liquidscope/cmd/liquidscope/get-flattened"
	gethovercmd "github.com/walteh/liquidscope/cmd/liquidscope/get-hover"
	gettagscmd "github.com/walteh/liquidscope/cmd/liquidscope/get-tags"
	listtemplatescmd "github.com/walteh/liquidscope/cmd/liquidscope/list-templates"
	"github.com/walteh/liquidscope/pkg/cli"
)

func main() {
	ctx := context.Background()

	opts := &cli.Options{}

	cmd := &cobra.Command{
		Use:   "liquidscope",
		Short: "navigate liquid templates: definitions, hovers, includes and tags",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: .liquidscope.{hcl,yaml,yml,toml} in the working directory)")
	cmd.PersistentFlags().StringVar(&opts.Workspace, "workspace", "", "workspace root holding the template type directories")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print results and logs as JSON")

	cmd.AddCommand(getflattenedcmd.NewGetFlattenedCommand(opts))
	cmd.AddCommand(getdefinitioncmd.NewGetDefinitionCommand(opts))
	cmd.AddCommand(gethovercmd.NewGetHoverCommand(opts))
	cmd.AddCommand(gettagscmd.NewGetTagsCommand(opts))
	cmd.AddCommand(listtemplatescmd.NewListTemplatesCommand(opts))

	info, ok := debug.ReadBuildInfo()
	if !ok {
		cmd.Version = "unknown"
	} else {
		cmd.Version = info.Main.Version
	}

	cmd.AddCommand(&cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(cmd.Version)
		},
		Hidden: true,
	})

	cmd.SilenceUsage = true

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
