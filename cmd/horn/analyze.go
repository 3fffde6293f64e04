package main

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hornlang/horn/horn"
)

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Report singleton variables, discontiguous predicates and bad heads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Wrap(err, "resolve source path")
			}
			_, clauses, err := a.parseFile(path)
			if err != nil {
				return errors.Errorf("analysis parse failed: %s", describeError(path, err))
			}

			out := cmd.OutOrStdout()
			warnings := horn.Lint(clauses, a.lintOptions())
			if len(warnings) == 0 {
				fmt.Fprintln(out, "No issues found")
				return nil
			}
			for _, w := range warnings {
				fmt.Fprintf(out, "%s:%d:%d: %s (%s)\n", path, w.Pos.Line, w.Pos.Column, w.Message, w.Kind)
			}
			return errors.Errorf("analysis found %d issue(s)", len(warnings))
		},
	}
}
