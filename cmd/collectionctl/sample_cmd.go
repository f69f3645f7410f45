package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
)

func newSampleCmd(root *rootOptions) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Download the sample hierarchy CSV as <collection id>.csv",
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

			m := newImporter(cfg, connect(cfg), cfg.CreateCSV, nil)
			f, err := m.SampleCSV(cmd.Context())
			if err != nil {
				return withCode(exitAPI, err)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return errors.Wrap(err, "create output dir")
			}
			path := filepath.Join(outDir, f.Name)
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return errors.Wrap(err, "write sample")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.Label(config.LabelSampleDownloaded), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}
