package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hornlang/horn/horn"
)

func (a *app) fmtCmd() *cobra.Command {
	var write, check, canonical bool
	cmd := &cobra.Command{
		Use:   "fmt <paths...>",
		Short: "Normalise whitespace in source files",
		Long: `fmt strips trailing whitespace, normalises line endings and ends each
file with a single newline. Files that do not parse are left untouched.

With --canonical the clauses are re-rendered one per line. Comments are
lost in that mode.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("horn fmt: path required")
			}
			files, err := a.collectSourceFiles(args)
			if err != nil {
				return err
			}

			changedCount := 0
			for _, path := range files {
				originalBytes, err := os.ReadFile(path)
				if err != nil {
					return errors.Wrapf(err, "read %s", path)
				}
				original := string(originalBytes)
				formatted, err := a.formatSource(original, canonical)
				if err != nil {
					return errors.Errorf("horn fmt: %s", describeError(path, err))
				}
				changed := formatted != original
				if changed {
					changedCount++
				}

				switch {
				case write && changed:
					info, err := os.Stat(path)
					if err != nil {
						return errors.Wrapf(err, "stat %s", path)
					}
					if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
						return errors.Wrapf(err, "write %s", path)
					}
				case !write && !check:
					fmt.Fprint(cmd.OutOrStdout(), formatted)
				}
			}

			if check && changedCount > 0 {
				return errors.Errorf("horn fmt: %d file(s) need formatting", changedCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write result to source files instead of stdout")
	cmd.Flags().BoolVar(&check, "check", false, "fail if any source file needs formatting")
	cmd.Flags().BoolVar(&canonical, "canonical", false, "re-render clauses instead of only fixing whitespace")
	return cmd
}

func (a *app) formatSource(source string, canonical bool) (string, error) {
	clauses, err := a.parse(source)
	if err != nil {
		return "", err
	}
	if canonical {
		return horn.FormatClauses(clauses), nil
	}
	return normalizeWhitespace(source), nil
}

func normalizeWhitespace(source string) string {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	joined := strings.Join(lines, "\n")
	joined = strings.TrimRight(joined, "\n")
	return joined + "\n"
}
