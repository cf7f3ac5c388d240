package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/umalloc/internal/procs"
)

func newProcsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "procs",
		Short: "Print the number of active processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var g globalOptions
			if err := loadOptions(cmd.Flags(), &g); err != nil {
				return err
			}
			out, err := setup(cmd, g)
			if err != nil {
				return err
			}

			n, err := procs.Count()
			if err != nil {
				return err
			}
			if g.JSON {
				return out.json(struct {
					Processes int `json:"processes"`
				}{n})
			}
			out.info("There are %d active processes.\n", n)
			return nil
		},
	}
}
