// Catalog ingest tool for cartwright.
// Reads a products CSV (id,name,price,category,image_url,vendor_url),
// creates the search index, and upserts products in batches.
//
// Usage:
//
//	catalogctl -csv products.csv -batch-size 100
//
// Connection settings come from the same YAML config as the API server
// (ENV selects the file, default "local").
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/quotient-labs/cartwright/internal/config"
	dbRedis "github.com/quotient-labs/cartwright/internal/db/redis"
	"github.com/quotient-labs/cartwright/internal/domain"
	logpkg "github.com/quotient-labs/cartwright/internal/logger"
	catalogrepo "github.com/quotient-labs/cartwright/internal/repository/catalog"
)

type options struct {
	csvPath   string
	batchSize int
	dryRun    bool
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.csvPath, "csv", "", "path to the products CSV (required)")
	flag.IntVar(&opts.batchSize, "batch-size", 100, "products per pipelined upsert")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "parse and validate without writing")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()
	if opts.csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, opts, logger); err != nil {
		logger.Fatal("Ingest failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) error {
	start := time.Now()

	f, err := os.Open(opts.csvPath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	repo := catalogrepo.New(store)
	if !opts.dryRun {
		if err := repo.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}

	total, err := ingest(ctx, f, repo, opts, logger)
	if err != nil {
		return err
	}

	logger.Info("Ingest complete",
		zap.Int("products", total),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("dry_run", opts.dryRun),
	)
	return nil
}

func ingest(ctx context.Context, r io.Reader, repo *catalogrepo.Repo, opts options, logger *zap.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	batch := make([]domain.Product, 0, opts.batchSize)
	total := 0
	line := 0

	flush := func() error {
		if len(batch) == 0 || opts.dryRun {
			batch = batch[:0]
			return nil
		}
		if err := repo.UpsertMulti(ctx, batch); err != nil {
			return fmt.Errorf("upsert batch ending at line %d: %w", line, err)
		}
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++

		// Header row
		if line == 1 && len(record) > 0 && record[0] == "id" {
			continue
		}

		p, err := parseRecord(record)
		if err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}

		batch = append(batch, p)
		total++

		if len(batch) >= opts.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
			logger.Info("Progress", zap.Int("products", total))
		}
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

func parseRecord(record []string) (domain.Product, error) {
	if len(record) < 3 {
		return domain.Product{}, fmt.Errorf("expected at least 3 fields (id,name,price), got %d", len(record))
	}

	id, name := record[0], record[1]
	if id == "" || name == "" {
		return domain.Product{}, errors.New("id and name are required")
	}

	price, err := strconv.ParseFloat(record[2], 64)
	if err != nil || price < 0 {
		return domain.Product{}, fmt.Errorf("invalid price %q", record[2])
	}

	p := domain.Product{ID: id, Name: name, Price: price}
	if len(record) > 3 {
		p.Category = record[3]
	}
	if len(record) > 4 {
		p.ImageURL = record[4]
	}
	if len(record) > 5 {
		p.VendorURL = record[5]
	}
	return p, nil
}
