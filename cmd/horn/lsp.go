package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hornlang/horn/horn"
)

const (
	severityError   = 1
	severityWarning = 2

	completionKindFunction = 3
	completionKindVariable = 6
)

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspDidCloseParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
}

type lspTextDocumentPositionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	lint   horn.LintOptions
	logger *slog.Logger
	docs   map[string]string
}

func newLSPServer(in io.Reader, out io.Writer, lint horn.LintOptions, logger *slog.Logger) *lspServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &lspServer{
		reader: bufio.NewReader(in),
		writer: bufio.NewWriter(out),
		lint:   lint,
		logger: logger,
		docs:   make(map[string]string),
	}
}

func (a *app) lspCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newLSPServer(cmd.InOrStdin(), cmd.OutOrStdout(), a.lintOptions(), a.logger).serve()
		},
	}
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			s.logger.Warn("dropping malformed message", "err", err)
			continue
		}
		s.logger.Debug("lsp message", "method", incoming.Method)

		messages := s.handleMessage(incoming)
		for _, msg := range messages {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}

		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	switch incoming.Method {
	case "initialize":
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"capabilities": map[string]any{
						"textDocumentSync": 1,
						"hoverProvider":    true,
						"completionProvider": map[string]any{
							"resolveProvider": false,
						},
					},
					"serverInfo": map[string]any{
						"name":    "horn",
						"version": Version,
					},
				},
			},
		}
	case "initialized":
		return nil
	case "shutdown":
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: nil}}
	case "exit":
		return nil
	case "textDocument/didOpen":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		s.docs[params.TextDocument.URI] = params.TextDocument.Text
		return []lspOutboundMessage{
			s.publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text),
		}
	case "textDocument/didChange":
		var params lspDidChangeParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		if len(params.ContentChanges) == 0 {
			return nil
		}
		latest := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.docs[params.TextDocument.URI] = latest
		return []lspOutboundMessage{
			s.publishDiagnostics(params.TextDocument.URI, latest),
		}
	case "textDocument/didClose":
		var params lspDidCloseParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		delete(s.docs, params.TextDocument.URI)
		return nil
	case "textDocument/completion":
		if incoming.ID == nil {
			return nil
		}
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return []lspOutboundMessage{
				{
					JSONRPC: "2.0",
					ID:      incoming.ID,
					Error:   &lspResponseError{Code: -32602, Message: "invalid completion params"},
				},
			}
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"isIncomplete": false,
					"items":        completionItems(s.docs[params.TextDocument.URI]),
				},
			},
		}
	case "textDocument/hover":
		if incoming.ID == nil {
			return nil
		}
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return []lspOutboundMessage{
				{
					JSONRPC: "2.0",
					ID:      incoming.ID,
					Error:   &lspResponseError{Code: -32602, Message: "invalid hover params"},
				},
			}
		}
		source := s.docs[params.TextDocument.URI]
		word := wordAtPosition(source, params.Position.Line, params.Position.Character)
		if word == "" {
			return []lspOutboundMessage{
				{JSONRPC: "2.0", ID: incoming.ID, Result: nil},
			}
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"contents": map[string]any{
						"kind":  "markdown",
						"value": hoverText(source, word),
					},
				},
			},
		}
	default:
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Error: &lspResponseError{
					Code:    -32601,
					Message: "method not found",
				},
			},
		}
	}
}

func (s *lspServer) publishDiagnostics(uri, source string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(source, s.lint),
		},
	}
}

// diagnosticsForSource reports the parse error of source, or its lint
// warnings when it parses.
func diagnosticsForSource(source string, lint horn.LintOptions) []map[string]any {
	clauses, err := horn.Parse(source)
	if err != nil {
		var parseErr *horn.ParseError
		if !errors.As(err, &parseErr) {
			return []map[string]any{newDiagnostic(0, 0, err.Error(), severityError)}
		}
		line, character := lspPosition(source, parseErr.Pos)
		return []map[string]any{newDiagnostic(line, character, parseErr.Message(), severityError)}
	}

	warnings := horn.Lint(clauses, lint)
	out := make([]map[string]any, 0, len(warnings))
	for _, w := range warnings {
		line, character := lspPosition(source, w.Pos)
		out = append(out, newDiagnostic(line, character, w.Message, severityWarning))
	}
	return out
}

func newDiagnostic(line, character int, message string, severity int) map[string]any {
	return map[string]any{
		"range": map[string]any{
			"start": map[string]any{
				"line":      line,
				"character": character,
			},
			"end": map[string]any{
				"line":      line,
				"character": character + 1,
			},
		},
		"severity": severity,
		"source":   "horn",
		"message":  message,
	}
}

// lspPosition converts a 1-based rune position into the zero-based UTF-16
// offsets the protocol uses.
func lspPosition(source string, pos horn.Position) (int, int) {
	line := max(0, pos.Line-1)
	column := max(0, pos.Column-1)
	lines := strings.Split(source, "\n")
	if line >= len(lines) {
		return line, column
	}
	runes := []rune(lines[line])
	if column > len(runes) {
		column = len(runes)
	}
	character := 0
	for _, r := range runes[:column] {
		character += utf16.RuneLen(r)
	}
	return line, character
}

// completionItems offers the predicates defined in source. When source does
// not parse the atoms of its token stream are offered instead.
func completionItems(source string) []map[string]any {
	type candidate struct {
		label  string
		detail string
		kind   int
	}
	var candidates []candidate

	if clauses, err := horn.Parse(source); err == nil {
		for _, pred := range horn.Predicates(clauses) {
			candidates = append(candidates, candidate{
				label:  pred.Name,
				detail: fmt.Sprintf("%s (%d clause(s))", pred.Indicator, len(pred.Clauses)),
				kind:   completionKindFunction,
			})
		}
	} else {
		seen := make(map[string]struct{})
		tokens, _ := horn.Tokenize(source)
		for _, tok := range tokens {
			if tok.Type != horn.TokenAtom && tok.Type != horn.TokenVariable {
				continue
			}
			if _, ok := seen[tok.Text]; ok {
				continue
			}
			seen[tok.Text] = struct{}{}
			c := candidate{label: tok.Text, detail: "atom", kind: completionKindFunction}
			if tok.Type == horn.TokenVariable {
				c.detail, c.kind = "variable", completionKindVariable
			}
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].label != candidates[j].label {
			return candidates[i].label < candidates[j].label
		}
		return candidates[i].detail < candidates[j].detail
	})
	items := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, map[string]any{
			"label":  c.label,
			"kind":   c.kind,
			"detail": c.detail,
		})
	}
	return items
}

func hoverText(source, word string) string {
	if horn.IsVariableName(word) {
		return fmt.Sprintf("`%s`\n\nvariable", word)
	}

	clauses, err := horn.Parse(source)
	if err != nil {
		return fmt.Sprintf("`%s`\n\natom", word)
	}
	var lines []string
	for _, pred := range horn.Predicates(clauses) {
		if pred.Name == word {
			lines = append(lines, fmt.Sprintf("`%s`: %d clause(s)", pred.Indicator, len(pred.Clauses)))
		}
	}
	if len(lines) == 0 {
		return fmt.Sprintf("`%s`\n\natom", word)
	}
	return strings.Join(lines, "\n\n")
}

// wordAtPosition finds the name under a zero-based line and UTF-16
// character offset.
func wordAtPosition(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	runes := []rune(lines[line])
	if len(runes) == 0 {
		return ""
	}
	if character < 0 {
		character = 0
	}

	cursor := 0
	for offset := 0; cursor < len(runes); cursor++ {
		if offset >= character {
			break
		}
		offset += utf16.RuneLen(runes[cursor])
	}

	if cursor == len(runes) {
		cursor--
	}
	if !isWordRune(runes[cursor]) {
		if cursor > 0 && isWordRune(runes[cursor-1]) {
			cursor--
		} else {
			return ""
		}
	}

	start := cursor
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	end := cursor
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (s *lspServer) readPayload() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if strings.EqualFold(name, "Content-Length") {
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, errors.Wrap(err, "invalid Content-Length")
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, errors.New("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}
