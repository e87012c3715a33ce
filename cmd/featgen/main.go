package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/csy1204/recsys-2019-conf-ver/internal/accumulator"
	"github.com/csy1204/recsys-2019-conf-ver/internal/config"
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/featgen"
	"github.com/csy1204/recsys-2019-conf-ver/internal/ingestion"
	"github.com/csy1204/recsys-2019-conf-ver/internal/observability"
	"github.com/csy1204/recsys-2019-conf-ver/internal/priors"
	"github.com/csy1204/recsys-2019-conf-ver/internal/similarity"
	"github.com/csy1204/recsys-2019-conf-ver/internal/storage"
	chstore "github.com/csy1204/recsys-2019-conf-ver/internal/storage/clickhouse"
	"github.com/csy1204/recsys-2019-conf-ver/internal/storage/migrations"
	pgstore "github.com/csy1204/recsys-2019-conf-ver/internal/storage/postgres"
)

const storeBatchSize = 1000

func main() {
	mode := flag.String("mode", "generate", "Run mode: generate or load")
	configPath := flag.String("config", "", "Config file path (overrides search paths)")
	outPath := flag.String("out", "", "JSON-lines output path for generate mode (default stdout, ignored when a ClickHouse DSN is set)")
	validate := flag.Bool("validate", false, "Validate stream ordering before generating (buffers all events in memory)")

	flag.Parse()

	logger := log.New(os.Stdout, "[featgen] ", log.LstdFlags|log.Lshortfile)

	if *configPath != "" {
		os.Setenv(config.ConfigPathEnvVar, *configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing exit", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	switch *mode {
	case "generate":
		err = runGenerate(ctx, logger, cfg, *outPath, *validate)
	case "load":
		err = runLoad(ctx, logger, cfg)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}
	logger.Println("Done")
}

// runLoad bulk-loads the events CSV into PostgreSQL.
func runLoad(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	if cfg.Storage.PostgresDSN == "" {
		return fmt.Errorf("storage.postgres_dsn is required for load mode")
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run postgres migrations: %w", err)
	}
	store := pgstore.NewEventStore(pool)

	src, err := ingestion.OpenCSV(cfg.Input.EventsCSV)
	if err != nil {
		return fmt.Errorf("open events csv: %w", err)
	}
	defer src.Close()

	batch := make([]*domain.Event, 0, storeBatchSize)
	total := 0
	for {
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}
		batch = append(batch, row)
		if len(batch) == storeBatchSize {
			if err := store.InsertBulk(ctx, batch); err != nil {
				return fmt.Errorf("insert events: %w", err)
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := store.InsertBulk(ctx, batch); err != nil {
			return fmt.Errorf("insert events: %w", err)
		}
		total += len(batch)
	}

	logger.Printf("Loaded %d events into postgres", total)
	return nil
}

// runGenerate streams the ordered event log through the accumulator set and
// writes one feature record per clickout candidate.
func runGenerate(ctx context.Context, logger *log.Logger, cfg *config.Config, outPath string, validate bool) error {
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	deps, err := loadDeps(cfg)
	if err != nil {
		return err
	}

	accs := accumulator.Defaults(deps)
	if cfg.Sharding.Count > 1 {
		accs = accumulator.Shard(accs, cfg.Sharding.Count, cfg.Sharding.Index)
		logger.Printf("Shard %d/%d runs %d accumulators", cfg.Sharding.Index, cfg.Sharding.Count, len(accs))
	}
	gen := featgen.New(accs, featgen.WithMetrics(metrics))

	src, cleanup, err := openSource(ctx, cfg, validate)
	if err != nil {
		return err
	}
	defer cleanup()

	emit, flush, err := openSink(ctx, logger, cfg, outPath, metrics)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := gen.RunEach(ctx, src, emit); err != nil {
		return fmt.Errorf("generate features: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("flush feature records: %w", err)
	}

	logger.Printf("Feature generation finished in %s", time.Since(start))
	return nil
}

// loadDeps reads the precomputed tables. Unset paths yield empty tables, so
// the dependent features fall back to their defaults.
func loadDeps(cfg *config.Config) (accumulator.Deps, error) {
	deps := accumulator.Deps{
		ClickProbs:  priors.FromEntries(nil),
		MetadataSim: similarity.NewJaccard(nil),
		PoiSim:      similarity.NewJaccard(nil),
		PriceSim:    similarity.NewPriceSim(nil),
	}

	if p := cfg.Priors.ClickProbsPath; p != "" {
		probs, err := priors.Load(p)
		if err != nil {
			return deps, fmt.Errorf("load click probabilities: %w", err)
		}
		deps.ClickProbs = probs
	}
	if p := cfg.Priors.MetadataSimPath; p != "" {
		sim, err := similarity.LoadJaccard(p)
		if err != nil {
			return deps, fmt.Errorf("load metadata similarity: %w", err)
		}
		deps.MetadataSim = sim
	}
	if p := cfg.Priors.PoiSimPath; p != "" {
		sim, err := similarity.LoadJaccard(p)
		if err != nil {
			return deps, fmt.Errorf("load poi similarity: %w", err)
		}
		deps.PoiSim = sim
	}
	if p := cfg.Priors.ItemPricesPath; p != "" {
		sim, err := similarity.LoadPrices(p)
		if err != nil {
			return deps, fmt.Errorf("load item prices: %w", err)
		}
		deps.PriceSim = sim
	}

	return deps, nil
}

// openSource picks the event source: PostgreSQL when a DSN is configured,
// the events CSV otherwise.
func openSource(ctx context.Context, cfg *config.Config, validate bool) (ingestion.Source, func(), error) {
	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		var store storage.EventStore = pgstore.NewEventStore(pool)
		events, err := store.GetAllOrdered(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("read events from postgres: %w", err)
		}
		pool.Close()
		if validate {
			if err := ingestion.ValidateOrdering(events); err != nil {
				return nil, nil, fmt.Errorf("validate ordering: %w", err)
			}
		}
		return ingestion.NewSliceSource(events), func() {}, nil
	}

	csvSrc, err := ingestion.OpenCSV(cfg.Input.EventsCSV)
	if err != nil {
		return nil, nil, fmt.Errorf("open events csv: %w", err)
	}
	if !validate {
		return csvSrc, func() { csvSrc.Close() }, nil
	}

	// Validation needs the whole stream up front.
	var events []*domain.Event
	for {
		row, err := csvSrc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			csvSrc.Close()
			return nil, nil, fmt.Errorf("read event: %w", err)
		}
		events = append(events, row)
	}
	csvSrc.Close()
	if err := ingestion.ValidateOrdering(events); err != nil {
		return nil, nil, fmt.Errorf("validate ordering: %w", err)
	}
	return ingestion.NewSliceSource(events), func() {}, nil
}

// openSink returns the per-record emit function and a final flush. Records
// go to ClickHouse in batches when a DSN is configured, JSON lines otherwise.
func openSink(ctx context.Context, logger *log.Logger, cfg *config.Config, outPath string, metrics *observability.Metrics) (func(*domain.FeatureRecord) error, func() error, error) {
	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		store := chstore.NewFeatureRecordStore(conn)

		batch := make([]*domain.FeatureRecord, 0, storeBatchSize)
		flushBatch := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := store.InsertBulk(ctx, batch); err != nil {
				metrics.StoreErrors.WithLabelValues("insert").Inc()
				return err
			}
			metrics.RecordsStored.Add(float64(len(batch)))
			batch = batch[:0]
			return nil
		}

		emit := func(rec *domain.FeatureRecord) error {
			batch = append(batch, rec)
			if len(batch) == storeBatchSize {
				return flushBatch()
			}
			return nil
		}
		flush := func() error {
			if err := flushBatch(); err != nil {
				return err
			}
			if err := conn.Close(); err != nil {
				logger.Printf("Close clickhouse connection: %v", err)
			}
			return nil
		}
		return emit, flush, nil
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return nil, nil, fmt.Errorf("create output file: %w", err)
		}
		out = f
	}
	w := bufio.NewWriter(out)

	emit := func(rec *domain.FeatureRecord) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal feature record: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		return w.WriteByte('\n')
	}
	flush := func() error {
		if err := w.Flush(); err != nil {
			return err
		}
		if out != os.Stdout {
			return out.Close()
		}
		return nil
	}
	return emit, flush, nil
}
