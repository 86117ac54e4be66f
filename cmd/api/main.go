package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restack/internal/config"
	"restack/internal/convert"
	"restack/internal/gateway/handler"
	"restack/internal/gateway/progress"
	"restack/internal/gateway/repository/artifact"
	"restack/internal/gateway/repository/runstore"
	"restack/internal/gateway/server"
	"restack/internal/github"
	"restack/internal/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	model, err := llm.NewFromEnv(ctx, cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		log.Fatalf("init llm client: %v", err)
	}
	defer model.Close()
	log.Printf("llm backend: %s", model.Name())

	policy := convert.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = convert.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			log.Fatalf("load selection policy: %v", err)
		}
	}
	policy.MaxFiles = cfg.Convert.MaxFiles

	opts := convert.Options{
		Policy:      policy,
		SizeLimit:   cfg.Convert.BatchSizeLimit,
		MaxFileSize: cfg.Convert.MaxFileSize,
		Throttle: convert.Throttle{
			BatchDelay:  cfg.Convert.BatchDelay,
			FetchWindow: cfg.Convert.FetchWindow,
			FetchDelay:  cfg.Convert.FetchDelay,
		},
	}

	var artifacts artifact.Store
	if cfg.Artifact.Enabled {
		s3, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			log.Fatalf("init artifact store: %v", err)
		}
		artifacts = s3
	} else {
		artifacts = artifact.NewMemoryStore()
	}

	h := handler.New(
		github.NewClient(),
		model,
		opts,
		artifacts,
		runstore.NewFromDSN(cfg.DatabaseURL),
		progress.NewBroker(),
	)
	h.DefaultToken = cfg.GitHubToken

	srv := server.New(cfg.Port, server.NewMux(h))

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
