package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"plumbing_portal_backend/internal/geocode"
	"plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/db"
	"plumbing_portal_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const (
	batchSize      = 25
	maxConcurrency = 4
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting geocode backfill")

	if !cfg.IsGeocodeEnabled() {
		log.Error("GOOGLE_MAPS_API_KEY not configured, nothing to do")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	geocoder := geocode.NewClient(cfg.GetGoogleMapsAPIKey(), log)
	svc := geocode.NewService(geocoder, repo, log)

	total := 0
	for {
		requests, err := repo.ListWithoutCoordinates(ctx, batchSize)
		if err != nil {
			log.Error("failed to list requests", "error", err)
			return
		}
		if len(requests) == 0 {
			log.Info("backfill complete", "geocoded", total)
			return
		}

		var group errgroup.Group
		group.SetLimit(maxConcurrency)

		progress := make(chan struct{}, len(requests))
		for i := range requests {
			req := requests[i]
			group.Go(func() error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if _, err := svc.GeocodeRequest(ctx, req.ID); err != nil {
					// Bad addresses stay unresolved; keep going.
					log.Warn("geocode failed", "requestId", req.ID, "error", err)
					return nil
				}
				log.Info("request geocoded", "requestId", req.ID)
				progress <- struct{}{}
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			log.Info("backfill interrupted", "geocoded", total)
			return
		}
		close(progress)

		batchDone := len(progress)
		total += batchDone
		if batchDone == 0 {
			log.Info("no geocode progress in batch, stopping", "geocoded", total)
			return
		}
	}
}
