package main

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/csvimport"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		update bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create or update the collection hierarchy from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(true)
			if err != nil {
				return err
			}
			done, err := root.setupLogging(cfg, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer done()

			f, err := csvimport.ReadFile(file)
			if err != nil {
				return withCode(exitUsage, err)
			}
			create := cfg.CreateCSV
			if cmd.Flags().Changed("update") {
				create = !update
			}
			m := newImporter(cfg, connect(cfg), create, eventPrinter(cmd.OutOrStdout()))
			if err := m.SelectFile(f); err != nil {
				return err
			}
			if err := m.Validate(cmd.Context()); err != nil {
				var se *csvimport.StepError
				if errors.As(err, &se) {
					msg := se.Message
					if se.Detail != "" {
						msg += ": " + se.Detail
					}
					return withCode(exitImport, errors.New(msg))
				}
				return withCode(exitImport, err)
			}
			s, _ := m.Session()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s imported from %s\n", cfg.Label(config.LabelImportConfirmed), f.Name, s.FileURL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to import (required)")
	cmd.Flags().BoolVar(&update, "update", false, "update the existing hierarchy instead of creating it")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
