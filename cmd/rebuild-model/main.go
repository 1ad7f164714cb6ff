package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/cognicore/stdtext/pkg/stdtext"
	"github.com/cognicore/stdtext/pkg/stdtext/config"
	"github.com/cognicore/stdtext/pkg/stdtext/store/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (optional)")
		sourcePath = flag.String("source", "", "Corpus source override (CSV or XLSX)")
		storePath  = flag.String("store", "", "Snapshot database override")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}
	if *sourcePath != "" {
		cfg.Model.SourcePath = *sourcePath
	}
	if *storePath != "" {
		cfg.Model.StorePath = *storePath
	}

	ctx := context.Background()

	modelStore, err := sqlite.Open(ctx, cfg.Model.StorePath)
	if err != nil {
		log.Fatalf("Failed to open model store %s: %v", cfg.Model.StorePath, err)
	}

	rewriter := stdtext.New(stdtext.Options{
		Config: cfg,
		Store:  modelStore,
	})
	defer rewriter.Close()

	log.Printf("Fitting corpus model from %s", cfg.Model.SourcePath)
	info, err := rewriter.Rebuild(ctx)
	if err != nil {
		log.Fatalf("Rebuild failed: %v", err)
	}

	log.Printf("✓ Model rebuilt: %d records, built %s, snapshot in %s",
		info.Records, info.BuiltAt.Format(time.RFC3339), cfg.Model.StorePath)
}
