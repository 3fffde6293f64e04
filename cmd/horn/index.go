package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hornlang/horn/horn"
	"github.com/hornlang/horn/internal/store"
)

func (a *app) openStore(ctx context.Context, override string) (*store.Store, error) {
	path := a.cfg.Store.Path
	if override != "" {
		path = override
	}
	a.logger.Debug("opening store", "path", path)
	return store.Open(ctx, store.Config{Path: path})
}

func (a *app) indexCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "index <paths...>",
		Short: "Store the clauses of source files in the predicate database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			files, err := a.collectSourceFiles(args)
			if err != nil {
				return err
			}
			db, err := a.openStore(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			for _, path := range files {
				_, clauses, err := a.parseFile(path)
				if err != nil {
					return errors.Errorf("horn index: %s", describeError(path, err))
				}
				consult, err := db.SaveConsult(ctx, path, clauses)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "indexed %s: %d clause(s)\n", path, consult.Clauses)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (default: store.path from the config)")
	return cmd
}

func (a *app) predicatesCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "predicates [name/arity]",
		Short: "List indexed predicates, or the clauses of one predicate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openStore(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				ind, err := parseIndicator(args[0])
				if err != nil {
					return err
				}
				texts, err := db.Clauses(ctx, ind)
				if err != nil {
					return err
				}
				if len(texts) == 0 {
					return errors.Errorf("unknown predicate %s", ind)
				}
				for _, text := range texts {
					fmt.Fprintln(out, text)
				}
				return nil
			}

			rows, err := db.Predicates(ctx)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No predicates indexed")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PREDICATE\tCLAUSES\tSOURCES")
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", row.Indicator, row.Clauses, row.Sources)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (default: store.path from the config)")
	return cmd
}

// parseIndicator reads "name/arity".
func parseIndicator(s string) (horn.Indicator, error) {
	slash := strings.LastIndex(s, "/")
	if slash <= 0 {
		return horn.Indicator{}, errors.Errorf("invalid predicate indicator %q (want name/arity)", s)
	}
	arity, err := strconv.Atoi(s[slash+1:])
	if err != nil || arity < 0 {
		return horn.Indicator{}, errors.Errorf("invalid arity in %q", s)
	}
	return horn.Indicator{Name: s[:slash], Arity: arity}, nil
}
