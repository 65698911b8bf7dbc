// Package tokenize is the Tokeniser (spec component C): it splits a raw
// input line into pipeline stages on `|`, and splits each stage into a
// command name and an argument tail. Grounded on original_source/console.c's
// cmdtok, which is stateful per line and yields one token at a time; this
// package instead returns the whole stage slice at once, which is the same
// contract from the caller's side (the Pipeline Builder never needs partial
// results) without the C version's caller-frees bookkeeping.
package tokenize

import "strings"

// Stage is one pipeline stage: a command name plus its verbatim argument
// tail (nil if the stage had no arguments).
type Stage struct {
	Name    string
	ArgTail *string
}

// Split performs both levels of tokenisation spec.md §4.C describes: the
// pipeline split on `|`, then the name/arg-tail split within each stage.
// Whitespace-only input yields no stages. Consecutive `|` (or a `|` at the
// very start of the input) yields an empty stage string in its turn, while
// an empty segment after the last `|` is dropped. The Pipeline Builder
// treats an empty stage as "command not found" for an
// empty name — matching console.c's cmdtok and spec.md §4.C/§8's documented
// edge case for lines of only `|` characters.
func Split(line string) []Stage {
	raw := SplitStages(line)
	stages := make([]Stage, 0, len(raw))
	for _, s := range raw {
		stages = append(stages, splitStage(s))
	}
	return stages
}

// SplitStages performs only the pipeline-level split on `|`, returning the
// raw stage strings (each trimmed of surrounding whitespace, possibly
// empty) without splitting them into name and argument tail. Split is its
// only caller in this tree.
func SplitStages(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	parts := strings.Split(line, "|")
	stages := make([]string, 0, len(parts))
	for i, p := range parts {
		trimmed := strings.TrimLeft(p, " \t")
		trimmed = strings.TrimRight(trimmed, " \t\r\n")
		if trimmed == "" && i == len(parts)-1 {
			// Trailing empty segment (line ended in "|" or was blank
			// after the last pipe): suppressed per spec.md §4.C.
			continue
		}
		stages = append(stages, trimmed)
	}
	return stages
}

func splitStage(s string) Stage {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return Stage{}
	}
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return Stage{Name: s}
	}
	name := s[:idx]
	tail := strings.TrimLeft(s[idx+1:], " \t")
	if tail == "" {
		return Stage{Name: name}
	}
	return Stage{Name: name, ArgTail: &tail}
}
