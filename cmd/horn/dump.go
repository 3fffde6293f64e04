package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hornlang/horn/horn"
)

type termNode struct {
	Kind     string     `json:"kind" yaml:"kind"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Arity    *int       `json:"arity,omitempty" yaml:"arity,omitempty"`
	Args     []termNode `json:"args,omitempty" yaml:"args,omitempty"`
	Elements []termNode `json:"elements,omitempty" yaml:"elements,omitempty"`
}

type clauseNode struct {
	Line   int        `json:"line" yaml:"line"`
	Column int        `json:"column" yaml:"column"`
	Head   termNode   `json:"head" yaml:"head"`
	Body   []termNode `json:"body,omitempty" yaml:"body,omitempty"`
}

func (a *app) dumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the parsed clauses of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, clauses, err := a.parseFile(args[0])
			if err != nil {
				return err
			}
			return dumpClauses(cmd.OutOrStdout(), clauses, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func dumpClauses(w io.Writer, clauses []horn.Clause, format string) error {
	switch format {
	case "text":
		_, err := io.WriteString(w, horn.FormatClauses(clauses))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(clauseNodes(clauses)), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(clauseNodes(clauses)); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return errors.Wrap(enc.Close(), "encode yaml")
	default:
		return errors.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func clauseNodes(clauses []horn.Clause) []clauseNode {
	nodes := make([]clauseNode, 0, len(clauses))
	for _, c := range clauses {
		node := clauseNode{
			Line:   c.Pos.Line,
			Column: c.Pos.Column,
			Head:   newTermNode(c.Head),
		}
		for _, goal := range c.Body {
			node.Body = append(node.Body, newTermNode(goal))
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func newTermNode(t horn.Term) termNode {
	switch t := t.(type) {
	case *horn.Atom:
		return termNode{Kind: "atom", Name: t.Name}
	case *horn.Variable:
		return termNode{Kind: "variable", Name: t.Name}
	case *horn.Structure:
		arity := t.Arity
		node := termNode{Kind: "structure", Name: t.Functor, Arity: &arity}
		for _, arg := range t.Args {
			node.Args = append(node.Args, newTermNode(arg))
		}
		return node
	case *horn.List:
		node := termNode{Kind: "list"}
		for _, el := range t.Elements {
			node.Elements = append(node.Elements, newTermNode(el))
		}
		return node
	default:
		return termNode{Kind: "unknown"}
	}
}
