/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gregjones/httpcache"
	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/uscf-lookup/internal"
	"github.com/mikeb26/uscf-lookup/internal/api"
	"github.com/mikeb26/uscf-lookup/internal/metrics"
	"github.com/mikeb26/uscf-lookup/s3cache"
	"github.com/mikeb26/uscf-lookup/uschess"
)

const shutdownGrace = 10 * time.Second

func init() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
}

func main() {
	configPath := flag.String("config", "",
		"Path to a json5 config file; <name>.local.json5 overrides it")
	flag.Parse()

	cfg, err := internal.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("uscflookupd.main: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	client := uschess.NewClient(uschess.ClientOptions{
		DetailURL:   cfg.DetailURL,
		SearchURL:   cfg.SearchURL,
		MinInterval: cfg.MinIntervalDuration(),
		Timeout:     cfg.RequestTimeoutDuration(),
		Recorder:    recorder,
		Archive:     openArchive(ctx, cfg.ArchiveBucket),
	})

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: api.NewRouter(api.Options{
			Looker:      client,
			Recorder:    recorder,
			Metrics:     recorder.Handler(),
			CORSOrigins: cfg.CORSOrigins,
			// name searches may wait on the throttle for up to three
			// upstream requests
			Timeout: 3*(cfg.MinIntervalDuration()+
				cfg.RequestTimeoutDuration()) + 5*time.Second,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := serve(ctx, srv); err != nil {
		log.Fatalf("uscflookupd.main: %v", err)
	}
	log.Printf("uscflookupd.main: exiting")
}

// openArchive returns nil when no bucket is configured or it cannot be
// reached; archiving is best effort.
func openArchive(ctx context.Context, bucket string) httpcache.Cache {
	if bucket == "" {
		return nil
	}

	archive := s3cache.New(ctx, bucket, s3cache.DefaultPrefix, true, true)
	if err := archive.Init(); err != nil {
		log.Printf("uscflookupd.archive: disabled: %v", err)
		return nil
	}
	log.Printf("uscflookupd.archive: writing to s3://%v/%v", bucket,
		s3cache.DefaultPrefix)

	return archive
}

func serve(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("uscflookupd.serve: listening on %v", srv.Addr)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("uscflookupd.serve: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
