package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"turbo-export/internal/config"
	"turbo-export/internal/core/domain"
	"turbo-export/internal/core/render"
	"turbo-export/internal/core/usecases"
	"turbo-export/internal/shell/executor"
	"turbo-export/internal/shell/storage"
	"turbo-export/internal/shell/worker"
)

type exportOptions struct {
	input        string
	output       string
	mode         string
	format       string
	workers      int
	chunkSize    int
	splitZip     bool
	noHeaders    bool
	defaultsFile string
}

// exportInput is the document read by the export command.
type exportInput struct {
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

func newExportCommand() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a JSON document of headers and rows to a local file",
		Example: `  turbo-export export --input data.json --output report.csv
  turbo-export export --input data.json --output report.xlsx --format xlsx --mode parallel --workers 8
  cat data.json | turbo-export export --output parts.zip --split-zip --chunk-size 50000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "-", "input JSON file ({\"headers\":[...],\"rows\":[[...]]}), - for stdin")
	flags.StringVarP(&opts.output, "output", "o", "", "output file path")
	flags.StringVar(&opts.mode, "mode", "", "execution mode (sync, parallel, global_pool)")
	flags.StringVar(&opts.format, "format", "", "output format (csv, xlsx)")
	flags.IntVar(&opts.workers, "workers", 0, "worker count for parallel modes")
	flags.IntVar(&opts.chunkSize, "chunk-size", 0, "rows per chunk, and rows per part with --split-zip")
	flags.BoolVar(&opts.splitZip, "split-zip", false, "write numbered parts into a ZIP archive")
	flags.BoolVar(&opts.noHeaders, "no-headers", false, "omit the header row from split parts")
	flags.StringVar(&opts.defaultsFile, "defaults", "", "YAML or JSON file of export defaults")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(ctx context.Context, opts *exportOptions, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	input, err := readExportInput(opts.input, stdin)
	if err != nil {
		return err
	}

	defaults, err := config.LoadDefaultsFile(opts.defaultsFile)
	if err != nil {
		return err
	}

	cfg := defaults.Apply(domain.ExportConfig{
		Mode:       domain.ExportMode(opts.mode),
		Format:     domain.ExportFormat(opts.format),
		Workers:    opts.workers,
		ChunkSize:  opts.chunkSize,
		OutputPath: opts.output,
	})

	renderer := render.NewRenderer()
	shared := worker.NewSharedPool(cfg.Normalize().Workers, worker.DefaultQueueCapacity, renderer)
	defer shared.Shutdown()

	service := usecases.NewExportService(newJobExecutor(shared, renderer), storage.NewMemoryExportRunRepository(), executor.NewNullJobCompletionNotifier())

	rows := make([]domain.Row, len(input.Rows))
	for i, row := range input.Rows {
		rows[i] = domain.Row(row)
	}

	var run domain.ExportRun
	if opts.splitZip {
		splitCfg := domain.SplitZipConfig{
			ExportConfig:   cfg,
			Split:          true,
			Zip:            true,
			IncludeHeaders: !opts.noHeaders && defaults.HeadersIncluded(nil),
		}
		run, _, err = service.SplitZip(ctx, "", splitCfg, input.Headers, rows)
	} else {
		run, _, err = service.Export(ctx, "", cfg, input.Headers, rows)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %d rows to %s", run.RowCount, run.OutputPath)
	if run.PartCount > 0 {
		fmt.Fprintf(stdout, " in %d parts", run.PartCount)
	}
	fmt.Fprintf(stdout, " (%s, %s mode, %v)\n", run.Format, run.Mode, run.Duration())
	return nil
}

func readExportInput(path string, stdin io.Reader) (exportInput, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return exportInput{}, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var input exportInput
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&input); err != nil {
		return exportInput{}, fmt.Errorf("failed to parse input: %w", err)
	}
	return input, nil
}
