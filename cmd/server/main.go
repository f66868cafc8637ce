package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/streamhub/streamhub/auth"
	"github.com/streamhub/streamhub/channel"
	"github.com/streamhub/streamhub/config"
	"github.com/streamhub/streamhub/media"
	"github.com/streamhub/streamhub/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := auth.DefaultLogger()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := createTables(ctx, db); err != nil {
		return err
	}

	storage, err := media.NewS3Storage(ctx, media.Config{
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Bucket:        cfg.Storage.Bucket,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return err
	}

	users := auth.NewRepositoryManager(db)
	users.MustValidate()

	content := channel.NewRepositoryManager(db)
	content.MustValidate()

	tokens := auth.NewTokenService(cfg, logger)
	session := auth.NewSessionManager(users, tokens).WithLogger(logger)

	srv := server.New(server.Options{
		Config:  cfg,
		Logger:  logger,
		Session: session,
		Tokens:  tokens,
		Users:   users,
		Content: content,
		Storage: storage,
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", cfg.ListenAddr)
		errc <- srv.Listen()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func createTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*auth.User)(nil),
		(*channel.Video)(nil),
		(*channel.Tweet)(nil),
		(*channel.Comment)(nil),
		(*channel.Like)(nil),
		(*channel.Playlist)(nil),
		(*channel.Subscription)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
