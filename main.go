package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/catalog"
	"storefront/config"
	"storefront/handler"
	"storefront/logger"
	"storefront/service"
	"storefront/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Logs go to a file so they do not interleave with the menus.
	closeLog, err := initLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := store.LoadWarehouseInventory(ctx, cfg.DataDir, cfg.WarehousePattern)
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	cat, err := catalog.Load(ctx, raw, cfg.CatalogOptions())
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := service.NewService(st, cat, cfg.FundPolicy(), service.WithCurrency(cfg.Currency))
	var serviceInterface service.ServiceInterface = svc

	h := handler.NewHandler(serviceInterface, os.Stdin, os.Stdout, cfg.MaxStateDepth)
	return h.Run(ctx)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		st, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	default:
		return store.NewFileStore(cfg.AccountsPath(), cfg.SalesPath())
	}
}

// initLogging installs the default logger. LOG_FILE "-" or empty means stderr.
func initLogging(cfg *config.Config) (func(), error) {
	if cfg.LogFile == "" || cfg.LogFile == "-" {
		logger.InitLogger(cfg.LoggerConfig())
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.InitLoggerWithWriter(cfg.LoggerConfig(), f)
	return func() { _ = f.Close() }, nil
}
