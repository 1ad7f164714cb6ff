package main

import (
	"flag"
	"log"
	"sort"

	"github.com/cognicore/stdtext/pkg/stdtext/abbrev"
	"github.com/cognicore/stdtext/pkg/stdtext/source"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

func main() {
	var (
		input         = flag.String("input", "", "Corpus file, CSV or XLSX (required)")
		output        = flag.String("output", "", "Pair file to write (required)")
		column        = flag.String("column", "", "Text column header (optional)")
		separator     = flag.String("separator", ";", "CSV field separator")
		encoding      = flag.String("encoding", "utf-8", "CSV encoding: utf-8 or windows-1252")
		minShortLen   = flag.Int("min-short", 4, "Shortest candidate short form")
		maxLongLen    = flag.Int("max-long", 15, "Longest considered vocabulary word")
		minFreq       = flag.Int("min-freq", 2, "Words below this count are ignored")
		maxPrefixDiff = flag.Int("max-prefix-diff", 4, "Max extra characters in the long form")
		maxShortFreq  = flag.Int("max-short-freq", 20, "Short forms above this count are full words")
		preview       = flag.Int("preview", 10, "Pairs to echo to the log")
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

	pairs := abbrev.Mine(table.Counts(), abbrev.MineOptions{
		MinShortLen:   *minShortLen,
		MaxLongLen:    *maxLongLen,
		MinFreq:       *minFreq,
		MaxPrefixDiff: *maxPrefixDiff,
		MaxShortFreq:  *maxShortFreq,
	})
	if len(pairs) == 0 {
		log.Println("WARNING: no abbreviation pairs found; thresholds may be too strict for this corpus")
	}

	if err := abbrev.WritePairs(*output, pairs); err != nil {
		log.Fatalf("Failed to write pairs: %v", err)
	}
	log.Printf("✓ %d abbreviation pairs written to %s", len(pairs), *output)

	shorts := make([]string, 0, len(pairs))
	for s := range pairs {
		shorts = append(shorts, s)
	}
	sort.Strings(shorts)
	for i, s := range shorts {
		if i >= *preview {
			break
		}
		log.Printf("  %s -> %s", s, pairs[s])
	}
}

func separatorRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ';'
}
