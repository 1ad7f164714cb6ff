package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/cognicore/stdtext/pkg/stdtext/source"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

func main() {
	var (
		input     = flag.String("input", "", "Corpus file, CSV or XLSX (required)")
		output    = flag.String("output", "", "Dictionary file to write (required)")
		column    = flag.String("column", "", "Text column header (optional, longest column when unset)")
		separator = flag.String("separator", ";", "CSV field separator")
		encoding  = flag.String("encoding", "utf-8", "CSV encoding: utf-8 or windows-1252")
		minCount  = flag.Int("min-count", 2, "Drop words seen fewer times than this")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}
	if *output == "" {
		log.Fatal("--output required")
	}

	rows, err := source.Load(*input, source.Options{
		TextColumn: *column,
		Separator:  separatorRune(*separator),
		Encoding:   *encoding,
	})
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	log.Printf("Loaded %d corpus rows from %s", len(rows), *input)

	table := vocab.NewTable()
	for _, row := range rows {
		table.AddText(row)
	}

	entries := collectEntries(table, *minCount)
	if len(entries) == 0 {
		log.Fatalf("No words passed the %d-occurrence threshold; corpus too small?", *minCount)
	}

	if err := writeDict(*output, entries); err != nil {
		log.Fatalf("Failed to write dictionary: %v", err)
	}
	log.Printf("✓ Dictionary written: %d words (of %d distinct) to %s",
		len(entries), table.Len(), *output)
}

type dictEntry struct {
	word  string
	count int
}

// collectEntries filters rare words and orders the rest most-frequent
// first, ties alphabetical, so lookups and reviews both start with the
// words that matter.
func collectEntries(table *vocab.Table, minCount int) []dictEntry {
	var entries []dictEntry
	table.Range(func(word string, count int) bool {
		if count >= minCount {
			entries = append(entries, dictEntry{word: word, count: count})
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].word < entries[j].word
	})
	return entries
}

func writeDict(path string, entries []dictEntry) error {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %d\n", e.word, e.count)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func separatorRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ';'
}
