// Package horn turns Horn-clause source text into terms and clauses for a
// downstream logic engine. The grammar is a small Prolog subset:
//   - Facts `head.` and rules `head :- goal, goal; goal.` where `,` and `;`
//     both separate body goals.
//   - Atoms, variables (uppercase or `_` first), integers, compound terms
//     `f(a, B)` and lists `[a, b]`.
//   - The fixed infix operators `is`, `+`, `-` and `*`; user operators are not
//     supported.
//
// Comments are `%` to end of line and nesting `/* ... */` blocks. Integer
// literals are represented as atoms holding their decimal text. Tokenize and
// Parse are pure functions and safe for concurrent use.
package horn
