package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/cognicore/stdtext/pkg/stdtext/abbrev"
	"github.com/cognicore/stdtext/pkg/stdtext/source"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

type report struct {
	TotalRows     int         `json:"total_rows"`
	TotalTokens   int         `json:"total_tokens"`
	DistinctWords int         `json:"distinct_words"`
	TopWords      []wordEntry `json:"top_words"`
	AbbrevPairs   []pairEntry `json:"abbrev_pairs"`
	OOV           *oovReport  `json:"oov,omitempty"`
}

type wordEntry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type pairEntry struct {
	Short string `json:"short"`
	Long  string `json:"long"`
}

type oovReport struct {
	DictWords  int         `json:"dict_words"`
	Distinct   int         `json:"distinct"`
	TokenRate  float64     `json:"token_rate"`
	TopUnknown []wordEntry `json:"top_unknown"`
}

func main() {
	var (
		input     = flag.String("input", "", "Corpus file, CSV or XLSX (required)")
		column    = flag.String("column", "", "Text column header (optional, longest column when unset)")
		separator = flag.String("separator", ";", "CSV field separator")
		encoding  = flag.String("encoding", "utf-8", "CSV encoding: utf-8 or windows-1252")
		dictPath  = flag.String("dict", "", "Base dictionary for out-of-vocabulary stats (optional)")
		top       = flag.Int("top", 20, "Number of top words to report")
		pairLimit = flag.Int("pairs", 10, "Number of mined abbreviation pairs to report")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	rows, err := source.Load(*input, source.Options{
		TextColumn: *column,
		Separator:  separatorRune(*separator),
		Encoding:   *encoding,
	})
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}

	table := vocab.NewTable()
	for _, row := range rows {
		table.AddText(row)
	}

	rep := report{
		TotalRows:     len(rows),
		TotalTokens:   table.Total(),
		DistinctWords: table.Len(),
		TopWords:      topWords(table, *top),
		AbbrevPairs:   minedPairs(table, *pairLimit),
	}

	if *dictPath != "" {
		dict, err := vocab.Load(*dictPath)
		if err != nil {
			log.Fatalf("Failed to load dictionary: %v", err)
		}
		rep.OOV = oovStats(table, dict, 10)
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

// topWords orders by count, most frequent first with alphabetical ties, and
// truncates to the requested length.
func topWords(table *vocab.Table, limit int) []wordEntry {
	entries := make([]wordEntry, 0, table.Len())
	table.Range(func(word string, count int) bool {
		entries = append(entries, wordEntry{Word: word, Count: count})
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func minedPairs(table *vocab.Table, limit int) []pairEntry {
	pairs := abbrev.Mine(table.Counts(), abbrev.DefaultMineOptions())
	shorts := make([]string, 0, len(pairs))
	for s := range pairs {
		shorts = append(shorts, s)
	}
	sort.Strings(shorts)
	if limit > 0 && len(shorts) > limit {
		shorts = shorts[:limit]
	}
	out := make([]pairEntry, 0, len(shorts))
	for _, s := range shorts {
		out = append(out, pairEntry{Short: s, Long: pairs[s]})
	}
	return out
}

// oovStats measures how much of the corpus a base dictionary covers. The
// token rate weights unknown words by occurrence, so one frequent unknown
// word moves it more than many rare ones.
func oovStats(table *vocab.Table, dict *vocab.Table, sample int) *oovReport {
	rep := &oovReport{DictWords: dict.Len()}
	var unknownTokens int
	var unknown []wordEntry
	table.Range(func(word string, count int) bool {
		if !dict.Contains(word) {
			rep.Distinct++
			unknownTokens += count
			unknown = append(unknown, wordEntry{Word: word, Count: count})
		}
		return true
	})
	if total := table.Total(); total > 0 {
		rep.TokenRate = float64(unknownTokens) / float64(total)
	}
	sort.Slice(unknown, func(i, j int) bool {
		if unknown[i].Count != unknown[j].Count {
			return unknown[i].Count > unknown[j].Count
		}
		return unknown[i].Word < unknown[j].Word
	})
	if sample > 0 && len(unknown) > sample {
		unknown = unknown[:sample]
	}
	rep.TopUnknown = unknown
	return rep
}

func separatorRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ';'
}
