package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	cfgpkg "github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/config"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/dispatcher"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/limiter"
	logpkg "github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/logger"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/metrics"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/queue"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/server"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/storage"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	metrics.Init()

	rq, err := queue.NewRedisQueue(cfg.Queue.RedisURL, cfg.Queue.Stream, cfg.Queue.Group, cfg.Queue.PollInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rq.Close()

	rs, err := store.NewRedisStatus(cfg.Queue.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init redis status store")
	}
	defer rs.Close()
	manifests := store.NewRedisManifest(rs.Client())

	local, err := storage.NewLocal(cfg.Storage.UploadDir, cfg.Storage.LocalDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init local storage")
	}

	var s3store *storage.S3Store
	if cfg.Storage.UseS3 {
		encryptKey := ""
		if cfg.Storage.Encrypt {
			encryptKey = cfg.Storage.EncryptionKey
		}
		s3store, err = storage.NewS3Store(context.Background(), storage.Options{
			Bucket:     cfg.Storage.Bucket,
			Prefix:     cfg.Storage.ArtifactPrefix,
			Region:     cfg.Storage.Region,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			EncryptKey: encryptKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init s3 storage")
		}
	}

	srv := server.New(server.Dependencies{
		Config:    cfg,
		Queue:     rq,
		Status:    rs,
		Manifests: manifests,
		Local:     local,
	})
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	if cfg.Server.RunDispatcher {
		lim, err := limiter.New(limiter.Options{
			RedisURL:    cfg.Queue.RedisURL,
			MaxInflight: cfg.Worker.MaxInflightPerModel,
			BaseBackoff: cfg.Worker.BreakerBaseBackoff,
			MaxBackoff:  cfg.Worker.BreakerMaxBackoff,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init limiter")
		}
		defer lim.CloseClient()

		worker := dispatcher.New(cfg, rq, dispatcher.Stores{
			Status:    rs,
			Manifests: manifests,
			S3:        s3store,
			Local:     local,
		}, lim)
		worker.Start()
		defer worker.Stop()
	}

	httpSrv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}
	go func() {
		log.Info().Msgf("HTTP server listening on :%s", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	log.Info().Msg("shutdown complete")
}
