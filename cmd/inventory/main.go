package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rl1809/inventory/internal/adapter/handler"
	"github.com/rl1809/inventory/internal/adapter/storage"
	"github.com/rl1809/inventory/internal/config"
	"github.com/rl1809/inventory/internal/core/service"
)

const (
	connectTimeout  = 5 * time.Second
	notFoundMessage = "Unable to find Data File"
)

type rootOptions struct {
	configPath string
	dataFile   string
	verbose    bool

	// logger replaces the config-built logger when set.
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Interactive inventory manager backed by a flat text file",
		Long: `inventory loads ID:QTY:DESC records from a data file (./inv.dat by default)
and reads commands from standard input, one per line:

  add ID:QTY      increase the quantity of an item
  remove ID:QTY   decrease the quantity of an item
  print           show the inventory table
  quit            save the data file and exit

Changes are written back to the data file only on quit.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to the YAML config file")
	cmd.Flags().StringVar(&opts.dataFile, "data", "", "data file path (overrides config)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(ctx context.Context, opts *rootOptions, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dataFile != "" {
		cfg.DataFile = opts.dataFile
	}

	logger := opts.logger
	if logger == nil {
		logger, err = cfg.NewLogger(opts.verbose)
		if err != nil {
			return err
		}
	}
	defer logger.Sync()

	sessionID := uuid.NewString()
	logger = logger.With(zap.String("session_id", sessionID))

	svcOpts := []service.Option{
		service.WithSessionID(sessionID),
		service.WithLogger(logger),
	}

	if cfg.Mirror.RedisAddr != "" {
		rdb, err := connectRedis(ctx, cfg.Mirror.RedisAddr)
		if err != nil {
			logger.Warn("redis mirror disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			svcOpts = append(svcOpts, service.WithMirrors(storage.NewRedisAdapter(rdb)))
			logger.Info("connected to redis", zap.String("addr", cfg.Mirror.RedisAddr))
		}
	}

	if cfg.Mirror.MySQLDSN != "" {
		db, err := connectMySQL(ctx, cfg.Mirror.MySQLDSN)
		if err != nil {
			logger.Warn("mysql mirror disabled", zap.Error(err))
		} else {
			defer db.Close()
			svcOpts = append(svcOpts, service.WithMirrors(storage.NewMySQLAdapter(db)))
			logger.Info("connected to mysql")
		}
	}

	if cfg.Journal.Path != "" {
		journal, err := storage.OpenSQLiteJournal(ctx, cfg.Journal.Path)
		if err != nil {
			logger.Warn("journal disabled", zap.Error(err))
		} else {
			defer journal.Close()
			svcOpts = append(svcOpts, service.WithJournal(journal))
		}
	}

	repo := storage.NewFlatFileAdapter(cfg.DataFile)
	svc, err := service.NewInventoryService(ctx, repo, svcOpts...)
	if errors.Is(err, storage.ErrDataFileNotFound) {
		logger.Warn("data file not found", zap.String("path", repo.Path()))
		fmt.Fprintln(out, notFoundMessage)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", repo.Path(), err)
	}

	dispatcher := handler.NewDispatcher(svc, logger)
	repl := handler.NewREPL(in, out, dispatcher,
		handler.WithPrompt(cfg.Prompt),
		handler.WithSaveOnEOF(cfg.SaveOnEOF),
		handler.WithREPLLogger(logger),
	)

	return repl.Run(ctx)
}

func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: connectTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return rdb, nil
}

func connectMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	if err := storage.NewMySQLAdapter(db).EnsureSchema(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
