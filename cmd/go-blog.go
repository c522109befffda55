package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/adfharrison1/go-blog/pkg/config"
	"github.com/adfharrison1/go-blog/pkg/domain"
	"github.com/adfharrison1/go-blog/pkg/logging"
	"github.com/adfharrison1/go-blog/pkg/server"
	"github.com/adfharrison1/go-blog/pkg/storage"
	"github.com/adfharrison1/go-blog/pkg/storage/mongostore"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		port       = flag.String("port", "", "Server port (overrides config and BLOG_PORT)")
		driver     = flag.String("driver", "", "Store driver: mongo or embedded (overrides config)")
		showHelp   = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ngo-blog serves the blog post CRUD API used by the dashboard.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  MONGODB_URI            MongoDB connection string (required for the mongo driver)\n")
		fmt.Fprintf(os.Stderr, "  BLOG_PORT              Listen port\n")
		fmt.Fprintf(os.Stderr, "  BLOG_STORE_DRIVER      mongo | embedded\n")
		fmt.Fprintf(os.Stderr, "  BLOG_DATA_FILE         Snapshot file for the embedded driver\n")
		fmt.Fprintf(os.Stderr, "  BLOG_ALLOWED_ORIGINS   Comma separated dashboard origins\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  MONGODB_URI=mongodb://localhost:27017 %s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -driver embedded -port 3003\n", os.Args[0])
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Flags win over file and environment, so apply them before validation
	if *driver != "" {
		os.Setenv("BLOG_STORE_DRIVER", *driver)
	}
	if *port != "" {
		os.Setenv("BLOG_PORT", *port)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ERROR: invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("ERROR: could not build logger: %v", err)
	}
	defer logger.Sync()

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("could not open post store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg.Server, store, logger)
	if err := srv.Run(ctx, 30*time.Second); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (domain.PostStore, error) {
	switch cfg.Store.Driver {
	case config.DriverEmbedded:
		if cfg.Embedded.SaveInterval > 0 {
			logger.Info("background save enabled", zap.Duration("interval", cfg.Embedded.SaveInterval))
		} else if !cfg.Embedded.TransactionSave {
			logger.Warn("background and transaction saves disabled - data only saved on graceful shutdown")
		}
		return storage.Open(
			storage.WithDataFile(cfg.Embedded.DataFile),
			storage.WithTransactionSave(cfg.Embedded.TransactionSave),
			storage.WithBackgroundSave(cfg.Embedded.SaveInterval),
			storage.WithLogger(logger.Named("embedded")),
		)
	default:
		conn := mongostore.NewConnector(
			cfg.Store.MongoURI,
			cfg.Store.Database,
			cfg.Store.Collection,
			mongostore.WithConnectTimeout(cfg.Store.ConnectTimeout),
			mongostore.WithLogger(logger.Named("mongo")),
		)
		store := mongostore.NewStore(conn,
			mongostore.WithOperationTimeout(cfg.Store.OperationTimeout),
			mongostore.WithStoreLogger(logger.Named("mongo")),
		)

		// Connect eagerly so a bad URI shows up at startup; a failure is only
		// logged because the connector retries on the next request
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.ConnectTimeout)
		defer cancel()
		if _, err := conn.Connect(ctx); err != nil {
			logger.Warn("initial MongoDB connection failed, will retry on first request", zap.Error(err))
		}
		return store, nil
	}
}
