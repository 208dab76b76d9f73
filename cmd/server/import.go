package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/jawab/pkg/importer"
	"github.com/hazyhaar/jawab/pkg/match"
	"github.com/hazyhaar/jawab/pkg/store"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	sheet := fs.String("sheet", "", "path to one sheet spec (YAML)")
	dir := fs.String("dir", "", "directory of sheet specs")
	fs.Parse(args)

	logger := newLogger()
	cfg := loadConfig(*cfgPath, logger)

	if *sheet == "" && *dir == "" {
		fmt.Println("Available sheet adapters:")
		fmt.Println()
		for _, a := range importer.All() {
			fmt.Printf("  %-8s %s\n", a.ID(), a.Description())
		}
		fmt.Println()
		printRecentRuns(cfg)
		fmt.Println("Usage:")
		fmt.Println("  jawab import --sheet <spec.yaml>")
		fmt.Println("  jawab import --dir <specs/>")
		return
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open record store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	m := match.New(st, cfg.matcherConfig(), nil, logger.With("component", "matcher"))

	ingest := func(ctx context.Context, question, answer string) (importer.IngestOutcome, error) {
		created, _, err := m.Teach(ctx, question, answer, "import")
		if err != nil {
			if errors.Is(err, match.ErrQuestionTooShort) || errors.Is(err, match.ErrEmptyAnswer) {
				return importer.Rejected, nil
			}
			return importer.Rejected, err
		}
		if created {
			return importer.Ingested, nil
		}
		return importer.Duplicate, nil
	}

	var specs []*importer.SheetSpec
	if *sheet != "" {
		spec, err := importer.LoadSheetSpec(*sheet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		specs = append(specs, spec)
	}
	if *dir != "" {
		dirSpecs, err := importer.LoadSheetSpecs(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		specs = append(specs, dirSpecs...)
	}
	if len(specs) == 0 {
		fmt.Fprintln(os.Stderr, "no sheet specs found")
		os.Exit(1)
	}

	log, err := importer.OpenImportLog(importLogPath(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open import log: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	failed := 0
	for _, spec := range specs {
		a, err := importer.Get(spec.Adapter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[%s] %v\n", spec.Name, err)
			failed++
			continue
		}

		fmt.Printf("[%s] importing via %s...\n", spec.Name, a.ID())
		stats, importErr := a.Import(ctx, *spec, ingest)

		run := importer.Run{
			Sheet:      spec.Name,
			Adapter:    a.ID(),
			Source:     spec.Source,
			Rows:       stats.Rows,
			Ingested:   stats.Ingested,
			Duplicates: stats.Duplicates,
			Rejected:   stats.Rejected,
		}
		if importErr != nil {
			run.Error = importErr.Error()
		}
		if err := log.RecordRun(ctx, run); err != nil {
			fmt.Fprintf(os.Stderr, "[%s] record run: %v\n", spec.Name, err)
		}

		if importErr != nil {
			fmt.Fprintf(os.Stderr, "[%s] FAILED: %v\n", spec.Name, importErr)
			failed++
			continue
		}
		fmt.Printf("[%s] OK: %d rows, %d ingested, %d duplicates, %d rejected\n",
			spec.Name, stats.Rows, stats.Ingested, stats.Duplicates, stats.Rejected)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func importLogPath(cfg config) string {
	return filepath.Join(filepath.Dir(cfg.DBPath), "imports.db")
}

func printRecentRuns(cfg config) {
	log, err := importer.OpenImportLog(importLogPath(cfg))
	if err != nil {
		return
	}
	defer log.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runs, err := log.ListRuns(ctx, 10)
	if err != nil || len(runs) == 0 {
		return
	}
	fmt.Println("Recent runs:")
	for _, r := range runs {
		status := "OK"
		if r.Error != "" {
			status = "FAILED"
		}
		fmt.Printf("  %s  %-20s %s (%d ingested, %d duplicates)\n",
			time.Unix(r.RanAt, 0).Format("2006-01-02 15:04"), r.Sheet, status, r.Ingested, r.Duplicates)
	}
	fmt.Println()
}
