package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dsstool/internal/config"
	"dsstool/internal/exporter"
	"dsstool/internal/infrastructure"
	"dsstool/internal/operations"
	"dsstool/internal/services"
	"dsstool/internal/templates"
)

type runOptions struct {
	input     string
	templates string
	out       string
	run       services.RunOptions
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one survey workbook and write the rendered configurations",
		Example: `  dsstool run --input survey.xlsx
  dsstool run --input survey.xlsx --variant single --template DSS_3_sectors.txt --out ./configs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			return opts.execute(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "survey workbook (.xlsx or .xlsm)")
	f.StringVar(&opts.templates, "templates", "", "template directory (overrides config)")
	f.StringVarP(&opts.out, "out", "o", "", "output directory (overrides config)")
	f.StringVar(&opts.run.Variant, "variant", "", "template variant: dual or single")
	f.StringVar(&opts.run.Template, "template", "", "template file for the single variant")
	f.StringVar(&opts.run.Worksheet, "worksheet", "", "survey worksheet name")
	f.StringVar(&opts.run.DSSColumn, "dss-column", "", "DSS key column")
	f.StringVar(&opts.run.CellColumn, "cell-column", "", "cell name column")
	f.StringVar(&opts.run.Exclude, "exclude", "", "DSS value whose rows are skipped")
	f.BoolVar(&opts.run.Archive, "archive", false, "also write a zip archive of the outputs")
	return cmd
}

func (o *runOptions) execute(cmd *cobra.Command, cfg *config.Config) error {
	if o.input == "" {
		return &usageError{err: errors.New("required flag \"input\" not set")}
	}
	if o.templates != "" {
		cfg.Templates.Dir = o.templates
	}
	out := cfg.Storage.OutputDir
	if o.out != "" {
		out = o.out
	}

	// Run log lines go to stdout; only errors reach stderr directly.
	logger, err := infrastructure.NewLogger(config.LoggingConfig{Level: "error", Format: "text"}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	manager, err := operations.NewManager(nil, logger)
	if err != nil {
		return err
	}
	store := templates.NewStore(cfg.Templates.Dir, logger)
	service := services.NewRunService(cfg, manager, store, nil, logger)

	f, err := os.Open(o.input)
	if err != nil {
		return &usageError{err: fmt.Errorf("failed to open input: %w", err)}
	}
	defer f.Close()

	report, runErr := service.Process(cmd.Context(), services.Upload{Filename: o.input, Reader: f}, o.run)
	if report != nil {
		for _, line := range report.Log {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
	if runErr != nil {
		return runErr
	}

	paths, err := exporter.NewOutputWriter(out, logger).WriteAll(report.Outputs)
	if err != nil {
		return err
	}
	if o.run.Archive && report.Archive != nil {
		p := filepath.Join(out, report.ArchiveName)
		if err := os.WriteFile(p, report.Archive, 0644); err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}
		paths = append(paths, p)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d configuration(s) written to %s (run %s)\n", len(report.Outputs), out, report.RunID)
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
	}
	return nil
}
