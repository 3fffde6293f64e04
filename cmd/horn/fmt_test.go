package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFmtCommandRequiresPath(t *testing.T) {
	err := runCLI([]string{"horn", "fmt"})
	if err == nil {
		t.Fatalf("expected path required error")
	}
	if !strings.Contains(err.Error(), "path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFmtCommandCheckDetectsUnformattedFiles(t *testing.T) {
	path := writeSource(t, "a :-  \n\tb.\t \nc.")
	err := runCLI([]string{"horn", "fmt", "--check", path})
	if err == nil {
		t.Fatalf("expected formatting check failure")
	}
	if !strings.Contains(err.Error(), "need formatting") {
		t.Fatalf("unexpected check error: %v", err)
	}
}

func TestFmtCommandWriteFormatsFileInPlace(t *testing.T) {
	path := writeSource(t, "a :-  \r\n\tb.\t \r\nc.\n\n\n")
	if err := runCLI([]string{"horn", "fmt", "-w", path}); err != nil {
		t.Fatalf("fmt -w failed: %v", err)
	}

	updated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read formatted file: %v", err)
	}
	if got := string(updated); got != "a :-\n\tb.\nc.\n" {
		t.Fatalf("unexpected formatted output: %q", got)
	}
}

func TestFmtCommandPrintsFormattedOutput(t *testing.T) {
	path := writeSource(t, "% facts  \nlikes(john, pizza).  ")
	out, err := captureStdout(t, func() error {
		return runCLI([]string{"horn", "fmt", path})
	})
	if err != nil {
		t.Fatalf("fmt command failed: %v", err)
	}
	if out != "% facts\nlikes(john, pizza).\n" {
		t.Fatalf("unexpected stdout output: %q", out)
	}
}

func TestFmtCommandCanonical(t *testing.T) {
	path := writeSource(t, "% gone\nlikes(john,X):-likes(X,pizza);hungry(X).\nsum(X,Y,Z):-Z is X+Y*1.")
	out, err := captureStdout(t, func() error {
		return runCLI([]string{"horn", "fmt", "--canonical", path})
	})
	if err != nil {
		t.Fatalf("fmt --canonical failed: %v", err)
	}
	want := "likes(john, X) :- likes(X, pizza), hungry(X).\nsum(X, Y, Z) :- Z is X + Y * 1.\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestFmtCommandRefusesUnparsableFiles(t *testing.T) {
	original := "foo(bar  \n"
	path := writeSource(t, original)
	err := runCLI([]string{"horn", "fmt", "-w", path})
	if err == nil || !strings.Contains(err.Error(), "unexpected end of input") {
		t.Fatalf("expected parse failure, got %v", err)
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read file: %v", readErr)
	}
	if string(data) != original {
		t.Fatalf("unparsable file was rewritten: %q", data)
	}
}

func TestFmtCommandFormatsDirectories(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "a.pl")
	second := filepath.Join(root, "nested", "b.pro")
	if err := os.MkdirAll(filepath.Dir(second), 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	if err := os.WriteFile(first, []byte("a.  \nb :- a.  "), 0o644); err != nil {
		t.Fatalf("write first file: %v", err)
	}
	if err := os.WriteFile(second, []byte("c(1).\t\n"), 0o644); err != nil {
		t.Fatalf("write second file: %v", err)
	}

	if err := runCLI([]string{"horn", "fmt", "-w", root}); err != nil {
		t.Fatalf("fmt directory failed: %v", err)
	}
	if err := runCLI([]string{"horn", "fmt", "--check", root}); err != nil {
		t.Fatalf("expected no formatting diffs after write, got %v", err)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	cases := map[string]string{
		"":               "\n",
		"a.":             "a.\n",
		"a.\r\nb.\r":     "a.\nb.\n",
		"a. \t\n\n\nb.":  "a.\n\n\nb.\n",
		"a.\n\n\n":       "a.\n",
		"  a.  \n  b.  ": "  a.\n  b.\n",
	}
	for input, want := range cases {
		if got := normalizeWhitespace(input); got != want {
			t.Fatalf("normalizeWhitespace(%q) = %q, want %q", input, got, want)
		}
	}
}
