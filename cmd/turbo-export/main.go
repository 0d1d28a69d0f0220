package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "turbo-export",
		Short:         "Tabular export engine: CSV, XLSX and split+zip archives",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newRemoteCommand())

	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
