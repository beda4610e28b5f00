// Command recent_signals prints the newest rows of the signal journal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"candleSignals/config"
	"candleSignals/internal/adapters/csvsink"
	"candleSignals/internal/adapters/logger"
	"candleSignals/internal/adapters/sqlite"
	"candleSignals/internal/domain"
)

func main() {
	limit := flag.Int("limit", 20, "number of rows to print, newest first")
	asset := flag.String("asset", "", "asset to list (default ASSET)")
	flag.Parse()

	cfg, err := config.LoadToolConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if *asset == "" {
		*asset = cfg.Asset
	}

	appLogger := logger.New(cfg.LogLevel)
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open signal journal: %v", err)
	}
	defer repo.Close()

	records, err := repo.FindRecent(context.Background(), strings.ToUpper(*asset), *limit)
	if err != nil {
		log.Fatalf("Error reading signal journal: %v", err)
	}
	if len(records) == 0 {
		fmt.Printf("no signals recorded for %s in %s\n", strings.ToUpper(*asset), cfg.DBPath)
		return
	}

	fmt.Println(strings.Join(append([]string{"id", "run_id"}, domain.SignalColumns...), "\t"))
	for _, rec := range records {
		fmt.Printf("%d\t%s\t%s\n", rec.ID, rec.RunID, strings.Join(csvsink.Record(rec.Row), "\t"))
	}
}
