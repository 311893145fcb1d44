package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"digital.vasic.gwt/internal/demo"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Filter         string
	IncludeFailing bool
}

type listEntry struct {
	Name      string   `json:"name"`
	Givens    []string `json:"givens"`
	Overrides bool     `json:"overrides"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the example definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := demo.Catalog(opts.IncludeFailing).Match(opts.Filter)
			if err != nil {
				return WrapExitError(ExitCommandError, "filter", err)
			}

			entries := make([]listEntry, 0, len(defs))
			for _, d := range defs {
				entries = append(entries, listEntry{
					Name:      d.Name(),
					Givens:    d.Givens(),
					Overrides: d.HasOverrides(),
				})
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, e := range entries {
				givens := "-"
				if len(e.Givens) > 0 {
					givens = strings.Join(e.Givens, ", ")
				}
				fmt.Fprintf(out, "%-22s given: %s\n", e.Name, givens)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter definitions by glob pattern")
	cmd.Flags().BoolVar(&opts.IncludeFailing, "include-failing", false, "include intentionally failing examples")

	return cmd
}
