package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
	"github.com/manojSRawat/sunbird-resource-library/internal/ui"
)

func newLibraryCmd(root *rootOptions) *cobra.Command {
	var sampleDir string
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Open the interactive library picker and CSV import dialog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(false)
			if err != nil {
				return err
			}
			done, err := root.setupLogging(cfg, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer done()

			rec := &events.Recorder{}
			model := ui.NewModel(ui.Options{
				Config:     cfg,
				ConfigPath: root.configPath,
				Connect:    connect,
				Sink:       rec.Sink(),
				SampleDir:  sampleDir,
			})
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return err
			}
			// hand the collected events to the caller once the screen is gone
			out := eventPrinter(cmd.OutOrStdout())
			for _, ev := range rec.Events() {
				out.Emit(ev)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sampleDir, "sample-dir", ".", "directory for downloaded sample sheets")
	return cmd
}
