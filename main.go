// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/campus-vote/cache"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/router"
	"github.com/danielhkuo/campus-vote/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "campus-vote:", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init(ctx, log, tracing.Config{Environment: cfg.LogMode})
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	// Connect to the database and create the schema
	gdb, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL, cfg.LogMode != "development")
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if err := db.CreateSchema(gdb); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	log.Info("Database schema ready", "type", cfg.DatabaseType)

	var tallyCache cache.TallyCache = cache.NopTallyCache{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		redisCache := cache.NewRedisTallyCache(rdb, cfg.CacheTTL, log)
		defer redisCache.Close()
		tallyCache = redisCache
		log.Info("Results cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	if cfg.LogMode != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Handler:           router.NewRouter(gdb, cfg, log, tallyCache),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Wait for Ctrl-C or a server failure
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})

	err = g.Wait()
	log.Info("Server closed", "error", err)
	return err
}
