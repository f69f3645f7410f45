package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/ui"
)

func newTreeCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the unit tree of the collection",
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

			nodes, err := fetchTree(cmd, cfg, connect(cfg))
			if err != nil {
				return err
			}
			if asJSON {
				if nodes == nil {
					nodes = []hierarchy.Node{}
				}
				return writeJSON(cmd.OutOrStdout(), nodes)
			}
			if len(nodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No units in this collection.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderTree(nodes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print nodes as JSON")
	return cmd
}

func fetchTree(cmd *cobra.Command, cfg config.Config, s ui.Services) ([]hierarchy.Node, error) {
	doc, err := s.Hierarchy.FetchHierarchy(cmd.Context(), cfg.CollectionID)
	if err != nil {
		return nil, withCode(exitAPI, err)
	}
	return hierarchy.BuildTree(doc, cfg.CollectionID, cfg.Hierarchy), nil
}
