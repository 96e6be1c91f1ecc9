package app

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"futoshiki-results/internal/config"
	"futoshiki-results/internal/dataset"
)

// newExportCommand dumps the reconciled dataset as JSON, in the table's
// canonical order, for ad hoc inspection and scripting.
func newExportCommand() *cobra.Command {
	var csvPath, outPath, configFile string

	cmd := &cobra.Command{
		Use:           "export",
		Short:         "Dump the reconciled dataset as JSON",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(configFile)
			if err != nil {
				return err
			}
			cfg := config.Resolve(v, csvPath, "", "", false)

			if _, err := os.Stat(cfg.CSVPath); err != nil {
				return fmt.Errorf("dataset %s: %w", cfg.CSVPath, err)
			}

			var loadErr string
			records := dataset.Load(cfg.CSVPath, func(msg string) { loadErr = msg })
			if loadErr != "" {
				return fmt.Errorf("%s", loadErr)
			}

			data, err := json.MarshalIndent(dataset.Sorted(records), "", "  ")
			if err != nil {
				return fmt.Errorf("encode dataset: %w", err)
			}
			data = append(data, '\n')

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(outPath, data, 0o644)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Path of the dataset CSV (default: "+config.DefaultCSVPath+")")
	cmd.Flags().StringVar(&outPath, "out", "", "Write JSON to this file instead of stdout")
	cmd.Flags().StringVar(&configFile, "config", "", "Config file path")
	return cmd
}
