package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newJoinCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "join",
		Short: "Write the combined table to combined_<year>.csv",
		Long: `Reads both source tables under <data-dir>/data, joins them for the
target year and writes <data-dir>/combined_<year>.csv. The output file only
appears once it is complete; a failed run leaves any previous file in place.`,
		Args: cobra.NoArgs,
		RunE: a.runJoin,
	}
}

func (a *app) runJoin(cmd *cobra.Command, args []string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	res, err := svc.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(res.Rows), res.OutputPath)
	return nil
}
