package main

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hornlang/horn/horn"
	"github.com/hornlang/horn/internal/config"
)

type app struct {
	cfgFile string
	verbose bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}
	root := &cobra.Command{
		Use:   "horn",
		Short: "Tools for Horn-clause programs",
		Long: `horn reads Prolog-style Horn clauses.

It checks, formats, lints and indexes source files, and ships an
interactive term explorer and a language server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: horn.toml or horn.yaml in the working directory)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "trace the parser on stderr")

	root.AddCommand(
		a.checkCmd(),
		a.dumpCmd(),
		a.fmtCmd(),
		a.analyzeCmd(),
		a.indexCmd(),
		a.predicatesCmd(),
		a.replCmd(),
		a.lspCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	if a.cfgFile != "" {
		cfg, err := config.Load(a.cfgFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "resolve working directory")
		}
		cfg, err := config.Discover(wd)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level := slog.LevelWarn
	if a.verbose || a.cfg.Trace {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if path := a.cfg.Path(); path != "" {
		a.logger.Debug("loaded config", "path", path)
	}
	return nil
}

func (a *app) parse(source string) ([]horn.Clause, error) {
	return horn.Parse(source, horn.WithTracer(a.logger))
}

func (a *app) parseFile(path string) (string, []horn.Clause, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.Wrap(err, "read source")
	}
	source := string(data)
	clauses, err := a.parse(source)
	return source, clauses, err
}

func (a *app) lintOptions() horn.LintOptions {
	return horn.LintOptions{
		Singletons:    a.cfg.Lint.Singletons,
		Discontiguous: a.cfg.Lint.Discontiguous,
		Heads:         a.cfg.Lint.Heads,
	}
}

// collectSourceFiles expands directories into the files whose extension
// the config accepts. Files named directly are always kept.
func (a *app) collectSourceFiles(targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0)
	addFile := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", target)
		}
		if !info.IsDir() {
			addFile(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() || !a.cfg.MatchesExtension(path) {
				return nil
			}
			addFile(path)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", target)
		}
	}

	sort.Strings(files)
	return files, nil
}

// describeError renders err as "path:line:col: message" when it carries a
// source position.
func describeError(path string, err error) string {
	var parseErr *horn.ParseError
	if errors.As(err, &parseErr) {
		return path + ":" + parseErr.Pos.String() + ": " + parseErr.Message()
	}
	return path + ": " + err.Error()
}
