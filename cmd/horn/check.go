package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <paths...>",
		Short: "Parse files and report the first error in each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.collectSourceFiles(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range files {
				_, clauses, err := a.parseFile(path)
				if err != nil {
					failed++
					fmt.Fprintln(out, describeError(path, err))
					continue
				}
				fmt.Fprintf(out, "%s: %d clause(s)\n", path, len(clauses))
			}
			if failed > 0 {
				return errors.Errorf("horn check: %d of %d file(s) failed", failed, len(files))
			}
			return nil
		},
	}
}
