package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cognicore/stdtext/pkg/stdtext"
	"github.com/cognicore/stdtext/pkg/stdtext/config"
	"github.com/cognicore/stdtext/pkg/stdtext/counts"
	"github.com/cognicore/stdtext/pkg/stdtext/entities"
	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
	"github.com/cognicore/stdtext/pkg/stdtext/store"
	"github.com/cognicore/stdtext/pkg/stdtext/store/sqlite"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (optional, defaults apply without one)")
		dictPath   = flag.String("dict", "", "Frequency dictionary file (overrides config)")
		citiesPath = flag.String("cities", "", "City gazetteer file (overrides config)")
		storePath  = flag.String("store", "", "Model snapshot database (optional)")
		line       = flag.String("line", "", "One-shot line to rewrite (non-interactive mode)")
		topK       = flag.Int("topk", 3, "Number of nearest examples to show")
		trace      = flag.Bool("trace", false, "Print the stage trace after each rewrite")
	)
	flag.Parse()

	ctx := context.Background()

	rewriter, cleanup, err := buildRewriter(ctx, *configPath, *dictPath, *citiesPath, *storePath)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	// One-shot mode
	if *line != "" {
		executeRewrite(rewriter, *line, *topK, *trace)
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  stdtext Rewrite CLI")
	fmt.Println("  Danish service-line normalization")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type a service line (Ctrl+D to exit).")
	fmt.Println("Commands: :spell <text>   :model")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case strings.HasPrefix(input, ":spell "):
			executeSpell(rewriter, strings.TrimPrefix(input, ":spell "))
		case input == ":model":
			executeModel(rewriter)
		default:
			executeRewrite(rewriter, input, *topK, *trace)
		}
	}

	fmt.Println("\nGoodbye!")
}

func executeRewrite(r *stdtext.Rewriter, line string, topK int, trace bool) {
	res := r.Rewrite(line)

	fmt.Println()
	fmt.Println(res.Output)

	if len(res.Entities) > 0 {
		fmt.Println("\nEntities:")
		for _, key := range sortedKeys(res.Entities) {
			fmt.Printf("  %s = %s\n", key, res.Entities[key])
		}
	}
	if len(res.Abbreviations) > 0 {
		fmt.Println("\nAbbreviations:")
		for _, key := range sortedKeys(res.Abbreviations) {
			fmt.Printf("  %s = %s\n", key, res.Abbreviations[key])
		}
	}
	if len(res.Counts) > 0 {
		fmt.Println("\nCounts:")
		keys := make([]string, 0, len(res.Counts))
		for k := range res.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("  %s = %s\n", key, counts.Format(res.Counts[key]))
		}
	}

	if examples := r.NearestExamples(line, topK); len(examples) > 0 {
		fmt.Println("\nNearest examples:")
		for i, ex := range examples {
			fmt.Printf("  %d. %-36s distance %.3f\n", i+1, ex.Text, ex.Distance)
		}
	}

	if trace {
		fmt.Println("\nStage trace:")
		for _, st := range res.Stages {
			fmt.Printf("  %-22s %s\n", st.Name, st.Text)
		}
	}
	fmt.Println()
}

func executeSpell(r *stdtext.Rewriter, text string) {
	res := r.CheckSpelling(text)

	fmt.Println()
	fmt.Println(res.Corrected)
	if len(res.Tokens) == 0 {
		fmt.Println("  no corrections")
	}
	for _, tok := range res.Tokens {
		fmt.Printf("  %s -> %s", tok.Token, tok.Correction)
		if len(tok.Suggestions) > 1 {
			fmt.Printf("  (also: %s)", strings.Join(tok.Suggestions[1:], ", "))
		}
		fmt.Println()
	}
	fmt.Println()
}

func executeModel(r *stdtext.Rewriter) {
	info := r.ModelInfo()

	fmt.Println()
	if info.Fitted {
		fmt.Printf("  fitted:  yes (%d records, built %s)\n", info.Records, info.BuiltAt.Format(time.RFC3339))
	} else {
		fmt.Println("  fitted:  no")
	}
	fmt.Printf("  backend: %s\n", info.Backend)
	fmt.Println()
}

func buildRewriter(ctx context.Context, configPath, dictPath, citiesPath, storePath string) (*stdtext.Rewriter, func(), error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	// An explicit flag path must load; the config fallback is best effort.
	strictDict := dictPath != ""
	if dictPath == "" {
		dictPath = cfg.Dictionary.Path
	}
	var vocabulary *vocab.Table
	if dictPath != "" {
		table, err := vocab.Load(dictPath)
		switch {
		case err != nil && strictDict:
			return nil, nil, fmt.Errorf("load dictionary: %w", err)
		case err != nil:
			log.Printf("WARNING: no base dictionary at %s: %v", dictPath, err)
		default:
			vocabulary = table
		}
	}

	strictCities := citiesPath != ""
	if citiesPath == "" {
		citiesPath = cfg.Dictionary.CitiesPath
	}
	var cities []string
	if citiesPath != "" {
		loaded, err := entities.LoadCities(citiesPath)
		switch {
		case err != nil && strictCities:
			return nil, nil, fmt.Errorf("load cities: %w", err)
		case err != nil:
			log.Printf("WARNING: no city gazetteer at %s: %v", citiesPath, err)
		default:
			cities = loaded
		}
	}

	var modelStore store.ModelStore
	if storePath != "" {
		st, err := sqlite.Open(ctx, storePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open model store: %w", err)
		}
		modelStore = st
	}

	rewriter := stdtext.New(stdtext.Options{
		Config:     cfg,
		Vocabulary: vocabulary,
		Cities:     cities,
		Store:      modelStore,
	})

	// A missing snapshot is a normal first start; anything else is fatal.
	if modelStore != nil {
		if err := rewriter.Restore(ctx); err != nil && !errors.Is(err, internalerr.ErrNotFound) {
			rewriter.Close()
			return nil, nil, fmt.Errorf("restore model snapshot: %w", err)
		}
	}

	cleanup := func() {
		rewriter.Close()
	}

	return rewriter, cleanup, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
