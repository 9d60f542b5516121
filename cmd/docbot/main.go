package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"docbot/internal/api"
	"docbot/internal/config"
	"docbot/internal/rag/embeddings"
	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/llms"
	"docbot/internal/rag/service"
	"docbot/internal/rag/storages/blobstore"
	"docbot/internal/rag/storages/docstore"
	"docbot/internal/rag/storages/vectorstore"
	"docbot/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	log := logger.New("docbot")
	log.Info("Starting document QA service")

	ctx := context.Background()

	embedder, err := embeddings.New(ctx, cfg.Embedding)
	if err != nil {
		log.WithError(err).Fatal("Failed to create embedding client")
	}

	llm, err := llms.New(ctx, cfg.LLM)
	if err != nil {
		log.WithError(err).Fatal("Failed to create generation client")
	}

	var index interfaces.VectorIndex
	if cfg.Databases.Milvus.Address != "" {
		milvusIndex, err := vectorstore.NewMilvusIndex(
			ctx,
			cfg.Databases.Milvus.Address,
			cfg.Databases.Milvus.Collection,
			cfg.Embedding.Dimension,
			log.WithField("store", "milvus"),
		)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Milvus")
		}
		defer milvusIndex.Close()
		index = milvusIndex
	} else {
		log.Warn("No Milvus address configured, using in-memory vector index")
		index = vectorstore.NewMemoryIndex()
	}

	var docs interfaces.DocStore
	if cfg.Databases.MongoDB.Address != "" {
		docs, err = docstore.NewMongoDocStore(ctx, cfg.Databases.MongoDB)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MongoDB")
		}
	} else {
		log.Warn("No MongoDB address configured, using in-memory document store")
		docs = docstore.NewMemoryDocStore()
	}

	var blobs interfaces.BlobStore
	if cfg.Databases.MinIO.Endpoint != "" {
		blobs, err = blobstore.NewMinioBlobStore(ctx, cfg.Databases.MinIO)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MinIO")
		}
	}

	svc, err := service.New(cfg, embedder, llm, index, docs, blobs, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create service")
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewAPI(svc, log.WithField("layer", "http")))

	srv := &http.Server{Addr: *addr, Handler: router}
	go func() {
		log.Info(fmt.Sprintf("HTTP server listening on %s", *addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Server stopped")
}
