package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	exportclient "turbo-export/internal/clients/export"
	"turbo-export/internal/identity"
)

type remoteOptions struct {
	url           string
	orgID         string
	username      string
	accountNumber string
}

func (o *remoteOptions) client() (*exportclient.Client, error) {
	header, err := identity.NewHeaderGenerator(o.accountNumber).Generate(o.orgID, o.username)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity: %w", err)
	}
	return exportclient.NewClient(o.url, header), nil
}

func newRemoteCommand() *cobra.Command {
	opts := &remoteOptions{}

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Talk to a running turbo-export API",
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.url, "url", "http://localhost:8000/api/v1", "API base URL")
	flags.StringVar(&opts.orgID, "org-id", "", "organization ID to act as")
	flags.StringVar(&opts.username, "username", "turbo-export-cli", "username placed in the identity header")
	flags.StringVar(&opts.accountNumber, "account", "", "account number placed in the identity header")
	cmd.MarkPersistentFlagRequired("org-id")

	cmd.AddCommand(newRemoteExportCommand(opts))
	cmd.AddCommand(newRemoteRunsCommand(opts))
	cmd.AddCommand(newRemoteRunCommand(opts))

	return cmd
}

func newRemoteExportCommand(remote *remoteOptions) *cobra.Command {
	var (
		input    string
		output   string
		mode     string
		format   string
		workers  int
		chunk    int
		splitZip bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Submit a JSON document of headers and rows to the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readExportInput(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			client, err := remote.client()
			if err != nil {
				return err
			}

			req := exportclient.ExportRequest{
				Headers: data.Headers,
				Rows:    data.Rows,
				Config: exportclient.ExportConfig{
					Mode:       mode,
					Format:     format,
					Workers:    workers,
					ChunkSize:  chunk,
					OutputPath: output,
				},
			}

			var resp *exportclient.ExportResponse
			if splitZip {
				resp, err = client.CreateSplitZip(cmd.Context(), req)
			} else {
				resp, err = client.CreateExport(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s wrote %s\n", resp.RunID, resp.Result.OutputPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "-", "input JSON file, - for stdin")
	flags.StringVarP(&output, "output", "o", "", "output file name inside the server's output directory")
	flags.StringVar(&mode, "mode", "", "execution mode (sync, parallel, global_pool)")
	flags.StringVar(&format, "format", "", "output format (csv, xlsx)")
	flags.IntVar(&workers, "workers", 0, "worker count for parallel modes")
	flags.IntVar(&chunk, "chunk-size", 0, "rows per chunk, and rows per part with --split-zip")
	flags.BoolVar(&splitZip, "split-zip", false, "write numbered parts into a ZIP archive")

	return cmd
}

func newRemoteRunsCommand(remote *remoteOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded export runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := remote.client()
			if err != nil {
				return err
			}
			page, err := client.ListRuns(cmd.Context(), &exportclient.ListParams{Limit: &limit, Offset: &offset})
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), page.Data)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d runs\n", len(page.Data), page.Meta.Count)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	return cmd
}

func newRemoteRunCommand(remote *remoteOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Show one export run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := remote.client()
			if err != nil {
				return err
			}
			run, err := client.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), []exportclient.Run{*run})
			if run.ErrorMessage != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", *run.ErrorMessage)
			}
			return nil
		},
	}
}

func printRuns(w io.Writer, runs []exportclient.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tMODE\tFORMAT\tSTATUS\tROWS\tPARTS\tDURATION\tOUTPUT")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%v\t%s\n",
			run.ID, run.Kind, run.Mode, run.Format, run.Status,
			run.RowCount, run.PartCount, time.Duration(run.DurationMS)*time.Millisecond, run.OutputPath)
	}
	tw.Flush()
}
