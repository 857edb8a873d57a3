// Package main runs the storefront cart session behind an HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/storefront"
	"github.com/nikolayk812/storefront/internal/timer"
	"github.com/nikolayk812/storefront/internal/transport/rest"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	lg, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger.New: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	catalog, err := loadCatalog(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("loadCatalog: %w", err)
	}
	lg.Info("catalog loaded", zap.String("source", cfg.Catalog.Source), zap.Int("products", catalog.Len()))

	slots, closeSlots, err := newSlotStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("newSlotStore: %w", err)
	}
	defer closeSlots()
	lg.Info("cart storage ready", zap.String("driver", cfg.Storage.Driver))

	repo, err := repository.NewCart(slots, cfg.Storage.Key)
	if err != nil {
		return fmt.Errorf("repository.NewCart: %w", err)
	}

	composer, err := checkout.NewComposer(cfg.Checkout.Phone, cfg.Checkout.BaseURL)
	if err != nil {
		return fmt.Errorf("checkout.NewComposer: %w", err)
	}

	sf, err := storefront.New(ctx, storefront.Deps{
		Catalog:        catalog,
		Repo:           repo,
		Composer:       composer,
		Opener:         checkout.NewLogOpener(lg),
		Scheduler:      timer.System(),
		Logger:         lg,
		ClearDelay:     cfg.Checkout.ClearDelay,
		CountdownSteps: cfg.Cart.Countdown,
		CountdownTick:  cfg.Cart.Tick,
	})
	if err != nil {
		return fmt.Errorf("storefront.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:      rest.NewHandler(sf, lg).Routes(),
		ReadTimeout:  cfg.HTTP.Timeout.Read,
		WriteTimeout: cfg.HTTP.Timeout.Write,
		IdleTimeout:  cfg.HTTP.Timeout.Idle,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server, then flush the session
	g.Go(func() error {
		<-gCtx.Done()
		lg.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		if closeErr := sf.Close(shutdownCtx); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("sf.Close: %w", closeErr))
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

func loadCatalog(ctx context.Context, cfg config.CatalogConfig) (*domain.Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	source, err := repository.NewCatalogSource(cfg.Source, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("repository.NewCatalogSource: %w", err)
	}

	products, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("source.Load: %w", err)
	}

	catalog, err := domain.NewCatalog(products)
	if err != nil {
		return nil, fmt.Errorf("domain.NewCatalog: %w", err)
	}
	return catalog, nil
}

// newSlotStore returns the configured key-value store and a func releasing its resources.
func newSlotStore(ctx context.Context, cfg config.StorageConfig) (port.SlotStore, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case config.DriverMemory:
		return repository.NewMemorySlot(), noop, nil
	case config.DriverFile:
		slots, err := repository.NewFileSlot(cfg.Dir)
		if err != nil {
			return nil, noop, fmt.Errorf("repository.NewFileSlot: %w", err)
		}
		return slots, noop, nil
	case config.DriverPostgres:
		if err := migrations.Up(cfg.URL); err != nil {
			return nil, noop, fmt.Errorf("migrations.Up: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("pool.Ping: %w", err)
		}
		return repository.NewSlot(pool), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}
