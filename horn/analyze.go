package horn

import (
	"fmt"
	"sort"
	"strings"
)

// Predicate groups the clauses sharing a head indicator. Clauses holds
// indexes into the slice given to Predicates.
type Predicate struct {
	Indicator
	Clauses []int
}

// Predicates groups clauses by head indicator in order of first appearance.
// Clauses whose head is not callable are left out.
func Predicates(clauses []Clause) []Predicate {
	var out []Predicate
	index := make(map[Indicator]int)
	for i, c := range clauses {
		ind, ok := IndicatorOf(c.Head)
		if !ok {
			continue
		}
		if j, seen := index[ind]; seen {
			out[j].Clauses = append(out[j].Clauses, i)
			continue
		}
		index[ind] = len(out)
		out = append(out, Predicate{Indicator: ind, Clauses: []int{i}})
	}
	return out
}

// WarningKind names a lint check.
type WarningKind string

const (
	WarnSingleton     WarningKind = "singleton"
	WarnDiscontiguous WarningKind = "discontiguous"
	WarnHead          WarningKind = "head"
)

// Warning is a lint finding anchored at the start of a clause.
type Warning struct {
	Kind    WarningKind
	Pos     Position
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Pos, w.Message)
}

// LintOptions selects the checks Lint runs.
type LintOptions struct {
	Singletons    bool
	Discontiguous bool
	Heads         bool
}

// DefaultLintOptions enables every check.
func DefaultLintOptions() LintOptions {
	return LintOptions{Singletons: true, Discontiguous: true, Heads: true}
}

// Lint reports common mistakes in parsed clauses, sorted by position.
func Lint(clauses []Clause, opts LintOptions) []Warning {
	var warnings []Warning

	for _, c := range clauses {
		if opts.Heads {
			if _, ok := IndicatorOf(c.Head); !ok {
				warnings = append(warnings, Warning{
					Kind:    WarnHead,
					Pos:     c.Pos,
					Message: fmt.Sprintf("clause head %s is not callable", c.Head),
				})
			}
		}
		if opts.Singletons {
			for _, v := range Variables(c) {
				if v.Count == 1 && !strings.HasPrefix(v.Name, "_") {
					warnings = append(warnings, Warning{
						Kind:    WarnSingleton,
						Pos:     c.Pos,
						Message: fmt.Sprintf("singleton variable %s", v.Name),
					})
				}
			}
		}
	}

	if opts.Discontiguous {
		warnings = append(warnings, discontiguous(clauses)...)
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Pos.Line != warnings[j].Pos.Line {
			return warnings[i].Pos.Line < warnings[j].Pos.Line
		}
		return warnings[i].Pos.Column < warnings[j].Pos.Column
	})
	return warnings
}

func discontiguous(clauses []Clause) []Warning {
	var warnings []Warning
	seen := make(map[Indicator]bool)
	reported := make(map[Indicator]bool)
	var last Indicator
	hasLast := false

	for _, c := range clauses {
		ind, ok := IndicatorOf(c.Head)
		if !ok {
			continue
		}
		if seen[ind] && (!hasLast || last != ind) && !reported[ind] {
			reported[ind] = true
			warnings = append(warnings, Warning{
				Kind:    WarnDiscontiguous,
				Pos:     c.Pos,
				Message: fmt.Sprintf("clauses of %s are not together", ind),
			})
		}
		seen[ind] = true
		last, hasLast = ind, true
	}
	return warnings
}
