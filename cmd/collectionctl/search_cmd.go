package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
)

type searchOptions struct {
	query     string
	filters   []string
	byName    bool
	showAdded bool
	asJSON    bool
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the library for resources that can be added to the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(opts.filters)
			if err != nil {
				return withCode(exitUsage, err)
			}
			cfg, err := root.load(true)
			if err != nil {
				return err
			}
			done, err := root.setupLogging(cfg, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer done()

			svc := connect(cfg)
			doc, err := svc.Hierarchy.FetchHierarchy(cmd.Context(), cfg.CollectionID)
			if err != nil {
				return withCode(exitAPI, err)
			}
			engine := newEngine(cfg, svc)
			engine.LoadHierarchy(doc)
			if err := engine.Fetch(cmd.Context(), filters, opts.query); err != nil {
				return withCode(exitAPI, err)
			}
			if opts.byName {
				engine.Sort(true)
			}

			items := engine.Items()
			if !opts.showAdded {
				kept := items[:0:0]
				for _, it := range items {
					if !it.IsAdded {
						kept = append(kept, it)
					}
				}
				items = kept
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderItems(items))
			fmt.Fprintf(cmd.OutOrStdout(), "%d resources\n", len(items))
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "free text query")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "filter as key=value[,value] (repeatable; replaces the collection defaults)")
	cmd.Flags().BoolVar(&opts.byName, "by-name", false, "sort by name instead of last update")
	cmd.Flags().BoolVar(&opts.showAdded, "show-added", false, "include resources already in the collection")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print items as JSON")
	return cmd
}

// parseFilters turns key=a,b flags into a FilterSet. No flags means the
// defaults derived from the collection apply.
func parseFilters(raw []string) (library.FilterSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	fs := library.FilterSet{}
	for _, r := range raw {
		key, val, ok := strings.Cut(r, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid --filter %q (want key=value)", r)
		}
		for _, v := range strings.Split(val, ",") {
			if v = strings.TrimSpace(v); v != "" {
				fs[key] = append(fs[key], v)
			}
		}
	}
	return fs, nil
}

func renderItems(items []library.Item) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("IDENTIFIER", "NAME", "CATEGORY", "TYPE", "UPDATED")
	for _, it := range items {
		updated := ""
		if !it.LastUpdatedOn.IsZero() {
			updated = it.LastUpdatedOn.Format("2006-01-02")
		}
		t.Row(it.Identifier, it.Name, it.PrimaryCategory, it.ObjectType, updated)
	}
	return t.String()
}
