package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/cognicore/stdtext/pkg/stdtext"
	"github.com/cognicore/stdtext/pkg/stdtext/config"
	"github.com/cognicore/stdtext/pkg/stdtext/entities"
	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
	"github.com/cognicore/stdtext/pkg/stdtext/source"
	"github.com/cognicore/stdtext/pkg/stdtext/store/sqlite"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

func main() {
	var (
		input       = flag.String("input", "", "Historical corpus file, CSV or XLSX (required)")
		cleanedPath = flag.String("cleaned", "cleaned.csv", "Normalized output file")
		comparePath = flag.String("compare", "compare.csv", "Side-by-side original/rewritten file")
		configPath  = flag.String("config", "", "Configuration file (optional)")
		column      = flag.String("column", "", "Text column header override")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}
	if *column != "" {
		cfg.Model.TextColumn = *column
	}

	ctx := context.Background()

	var vocabulary *vocab.Table
	if cfg.Dictionary.Path != "" {
		table, err := vocab.Load(cfg.Dictionary.Path)
		if err != nil {
			log.Printf("WARNING: no base dictionary at %s: %v", cfg.Dictionary.Path, err)
		} else {
			vocabulary = table
		}
	}

	var cities []string
	if cfg.Dictionary.CitiesPath != "" {
		loaded, err := entities.LoadCities(cfg.Dictionary.CitiesPath)
		if err != nil {
			log.Printf("WARNING: no city gazetteer at %s: %v", cfg.Dictionary.CitiesPath, err)
		} else {
			cities = loaded
		}
	}

	opts := stdtext.Options{
		Config:     cfg,
		Vocabulary: vocabulary,
		Cities:     cities,
	}

	// Reuse a fitted model when one is already persisted, so phrase
	// corrections match what the service would produce.
	if _, err := os.Stat(cfg.Model.StorePath); err == nil {
		modelStore, err := sqlite.Open(ctx, cfg.Model.StorePath)
		if err != nil {
			log.Fatalf("Failed to open model store %s: %v", cfg.Model.StorePath, err)
		}
		opts.Store = modelStore
	}

	rewriter := stdtext.New(opts)
	defer rewriter.Close()

	if opts.Store != nil {
		if err := rewriter.Restore(ctx); err != nil {
			if errors.Is(err, internalerr.ErrNotFound) {
				log.Println("Model store holds no snapshot; scrubbing without corpus corrections")
			} else {
				log.Printf("WARNING: restoring model snapshot: %v", err)
			}
		} else {
			log.Printf("Model restored: %d records", rewriter.ModelInfo().Records)
		}
	}

	rows, err := source.Load(*input, source.Options{
		TextColumn: cfg.Model.TextColumn,
		Separator:  cfg.Model.SeparatorRune(),
		Encoding:   cfg.Model.Encoding,
	})
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	log.Printf("Loaded %d corpus rows from %s", len(rows), *input)

	cleaned := [][]string{{"text"}}
	compare := [][]string{{"original", "rewritten"}}
	changed := 0
	for i, row := range rows {
		res := rewriter.Rewrite(row)
		cleaned = append(cleaned, []string{res.Output})
		compare = append(compare, []string{row, res.Output})
		if !strings.EqualFold(strings.Join(strings.Fields(row), " "), res.Output) {
			changed++
		}
		if (i+1)%500 == 0 {
			log.Printf("Scrubbed %d/%d rows", i+1, len(rows))
		}
	}

	if err := writeCSV(*cleanedPath, cfg.Model.SeparatorRune(), cleaned); err != nil {
		log.Fatalf("Failed to write %s: %v", *cleanedPath, err)
	}
	if err := writeCSV(*comparePath, cfg.Model.SeparatorRune(), compare); err != nil {
		log.Fatalf("Failed to write %s: %v", *comparePath, err)
	}

	log.Printf("✓ Scrub complete: %d rows, %d rewritten, cleaned corpus in %s, review file in %s",
		len(rows), changed, *cleanedPath, *comparePath)
}

func writeCSV(path string, separator rune, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Comma = separator
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
