package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dsstool/internal/app"
	"dsstool/internal/templates"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			application, err := app.NewApplication(cfg, nil)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "bind host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func newTemplatesCommand(root *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the templates available to runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Templates.Dir = dir
			}
			list, err := templates.NewStore(cfg.Templates.Dir, nil).List()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSECTORS\tSIZE")
			for _, t := range list {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", t.Name, t.Sectors, t.Size)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dir, "templates", "", "template directory (overrides config)")
	return cmd
}
