package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/hornlang/horn/horn"
	"github.com/hornlang/horn/internal/store"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

var replCommands = []string{":help", ":clauses", ":predicates", ":clear", ":reset", ":quit"}

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

type replOptions struct {
	prompt       string
	historyLimit int
	// db, when set, mirrors the session clauses under the session source.
	db     *store.Store
	logger *slog.Logger
}

type replModel struct {
	textInput    textinput.Model
	sessionID    string
	clauses      []horn.Clause
	history      []historyEntry
	cmdHistory   []string
	historyIdx   int
	historyLimit int
	db           *store.Store
	logger       *slog.Logger
	width        int
	height       int
	showHelp     bool
	quitting     bool
	initialized  bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
	Tab   key.Binding
	CtrlH key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous input"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next input"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "autocomplete"),
	),
	CtrlH: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newREPLModel(opts replOptions) replModel {
	ti := textinput.New()
	ti.Placeholder = "a clause ending in '.' or a term to inspect..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = opts.prompt
	if ti.Prompt == "" {
		ti.Prompt = "?- "
	}
	logger := opts.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return replModel{
		textInput:    ti,
		sessionID:    uuid.NewString(),
		history:      make([]historyEntry, 0),
		cmdHistory:   make([]string, 0),
		historyIdx:   -1,
		historyLimit: opts.historyLimit,
		db:           opts.db,
		logger:       logger,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlH):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(input)
				m.textInput.SetValue("")
				m.historyIdx = -1
				return m, cmd
			}

			output, isErr := m.evaluate(input)
			m.history = append(m.history, historyEntry{
				input:  input,
				output: output,
				isErr:  isErr,
			})
			m.remember(input)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// remember appends input to the recall list, dropping the oldest entries
// past the configured limit. A limit of zero keeps everything.
func (m *replModel) remember(input string) {
	m.cmdHistory = append(m.cmdHistory, input)
	if m.historyLimit > 0 && len(m.cmdHistory) > m.historyLimit {
		m.cmdHistory = m.cmdHistory[len(m.cmdHistory)-m.historyLimit:]
	}
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clauses", ":l":
		output := "No clauses"
		if len(m.clauses) > 0 {
			output = strings.TrimRight(horn.FormatClauses(m.clauses), "\n")
		}
		m.history = append(m.history, historyEntry{input: input, output: output})
	case ":predicates", ":p":
		m.history = append(m.history, historyEntry{input: input, output: describePredicates(m.clauses)})
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":reset", ":r":
		m.clauses = nil
		output := "Session cleared"
		isErr := false
		if m.db != nil {
			if err := m.db.Forget(context.Background(), m.sessionSource()); err != nil {
				output = err.Error()
				isErr = true
			}
		}
		m.history = append(m.history, historyEntry{input: input, output: output, isErr: isErr})
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", cmd),
			isErr:  true,
		})
	}
	return m, nil
}

// completionCandidates lists commands plus the predicate and variable names
// known to the session.
func (m replModel) completionCandidates() []string {
	seen := make(map[string]struct{})
	candidates := make([]string, 0, len(replCommands))
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		candidates = append(candidates, name)
	}
	for _, c := range replCommands {
		add(c)
	}
	for _, pred := range horn.Predicates(m.clauses) {
		if horn.IsValidAtom(pred.Name) {
			add(pred.Name)
		}
	}
	for _, c := range m.clauses {
		for _, v := range horn.Variables(c) {
			add(v.Name)
		}
	}
	return candidates
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	if input == "" {
		return m
	}

	start := strings.LastIndexFunc(input, func(r rune) bool {
		return !(r == ':' || r == '_' || isWordRune(r))
	}) + 1
	lastWord := input[start:]
	if lastWord == "" {
		return m
	}

	matches := fuzzy.Find(lastWord, m.completionCandidates())
	switch {
	case len(matches) == 1:
		m.textInput.SetValue(input[:start] + matches[0].Str)
		m.textInput.CursorEnd()
	case len(matches) > 1:
		names := make([]string, len(matches))
		for i, match := range matches {
			names[i] = match.Str
		}
		m.history = append(m.history, historyEntry{
			output: "Completions: " + strings.Join(names, ", "),
		})
	}
	return m
}

// evaluate adds clauses when the last token of input is a full stop. Anything
// else is read as a single term and described.
func (m *replModel) evaluate(input string) (string, bool) {
	if endsWithFullStop(input) {
		clauses, err := horn.Parse(input, horn.WithTracer(m.logger))
		if err != nil {
			return replError(err), true
		}
		next := append(slices.Clone(m.clauses), clauses...)
		if m.db != nil {
			if _, err := m.db.SaveConsult(context.Background(), m.sessionSource(), next); err != nil {
				return err.Error(), true
			}
		}
		m.clauses = next
		return describeAdded(clauses), false
	}

	term, err := horn.ParseTermString(input)
	if err != nil {
		return replError(err), true
	}
	return fmt.Sprintf("%s  %s", term, mutedStyle.Render(describeTerm(term))), false
}

// endsWithFullStop reports whether the final token of input is ".", so
// trailing comments do not change how the line is read. Input that does not
// tokenize is left to the term path, which reports the lex error.
func endsWithFullStop(input string) bool {
	tokens, err := horn.Tokenize(input)
	if err != nil || len(tokens) == 0 {
		return false
	}
	return tokens[len(tokens)-1].Type == horn.TokenDot
}

func (m replModel) sessionSource() string {
	return "repl:" + m.sessionID
}

func replError(err error) string {
	var parseErr *horn.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("%s: %s", parseErr.Pos, parseErr.Message())
	}
	return err.Error()
}

func describeAdded(clauses []horn.Clause) string {
	inds := make([]string, 0, len(clauses))
	for _, pred := range horn.Predicates(clauses) {
		inds = append(inds, pred.Indicator.String())
	}
	noun := "clauses"
	if len(clauses) == 1 {
		noun = "clause"
	}
	if len(inds) == 0 {
		return fmt.Sprintf("added %d %s", len(clauses), noun)
	}
	return fmt.Sprintf("added %d %s for %s", len(clauses), noun, strings.Join(inds, ", "))
}

func describeTerm(t horn.Term) string {
	switch t := t.(type) {
	case *horn.Atom:
		return "atom"
	case *horn.Variable:
		return "variable"
	case *horn.Structure:
		return fmt.Sprintf("structure %s/%d", t.Functor, t.Arity)
	case *horn.List:
		return fmt.Sprintf("list of %d", len(t.Elements))
	default:
		return fmt.Sprintf("%T", t)
	}
}

func describePredicates(clauses []horn.Clause) string {
	preds := horn.Predicates(clauses)
	if len(preds) == 0 {
		return "No predicates"
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Indicator.String() < preds[j].Indicator.String()
	})
	lines := make([]string, len(preds))
	for i, pred := range preds {
		lines[i] = fmt.Sprintf("%s (%d)", pred.Indicator, len(pred.Clauses))
	}
	return strings.Join(lines, "\n")
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("horn REPL")
	session := mutedStyle.Render("session " + m.sessionID[:8])
	b.WriteString(header + " " + session + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(min(m.width-2, 60), 0))) + "\n\n")

	reservedLines := 8
	if m.showHelp {
		reservedLines += len(replCommands) + 6
	}
	availableHeight := m.height - reservedLines

	historyStart := 0
	if availableHeight > 0 && len(m.history) > availableHeight {
		historyStart = len(m.history) - availableHeight
	}

	for i := historyStart; i < len(m.history); i++ {
		entry := m.history[i]
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		for _, line := range strings.Split(entry.output, "\n") {
			if entry.isErr {
				b.WriteString("  " + errorStyle.Render("✗ "+line) + "\n")
			} else {
				b.WriteString("  " + resultStyle.Render("→ "+line) + "\n")
			}
		}
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("tab") + helpDescStyle.Render(" complete  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate input history"},
		{"Tab", "Complete commands and names"},
		{"p(a).", "Add clauses to the session"},
		{"f(X)", "Show how a term parses"},
		{":help", "Toggle this help"},
		{":clauses", "List session clauses"},
		{":predicates", "List session predicates"},
		{":clear", "Clear output"},
		{":reset", "Drop all session clauses"},
		{":quit", "Exit REPL"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range help {
		line := fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-12s", h.key)),
			helpDescStyle.Render(h.desc))
		lines = append(lines, line)
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func (a *app) replCmd() *cobra.Command {
	var persist bool
	var dbPath string
	cmd := &cobra.Command{
		Use:   "repl [files...]",
		Short: "Explore clauses and terms interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := replOptions{
				prompt:       a.cfg.REPL.Prompt,
				historyLimit: a.cfg.REPL.HistoryLimit,
				logger:       a.logger,
			}
			if persist || dbPath != "" {
				db, err := a.openStore(cmd.Context(), dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				opts.db = db
			}

			m := newREPLModel(opts)
			for _, path := range args {
				_, clauses, err := a.parseFile(path)
				if err != nil {
					return errors.Errorf("horn repl: %s", describeError(path, err))
				}
				m.clauses = append(m.clauses, clauses...)
			}

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(os.Stdin), tea.WithOutput(cmd.OutOrStdout()))
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "mirror session clauses into the predicate database")
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (implies --persist)")
	return cmd
}
