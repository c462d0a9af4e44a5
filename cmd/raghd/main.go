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

	"github.com/joho/godotenv"

	"ragh/internal/chunker"
	"ragh/internal/config"
	"ragh/internal/domain"
	"ragh/internal/embedding/hashing"
	embopenai "ragh/internal/embedding/openai"
	"ragh/internal/extract"
	"ragh/internal/index/flat"
	"ragh/internal/index/qdrant"
	"ragh/internal/logger"
	"ragh/internal/metadata/bolt"
	"ragh/internal/metadata/memory"
	"ragh/internal/metadata/sqlite"
	"ragh/internal/reader/extractive"
	readeropenai "ragh/internal/reader/openai"
	"ragh/internal/server"
	"ragh/internal/service"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragh/config.yaml if not provided)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()
	logger.SetVerbose(verbose)

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "hashing", "":
		emb = hashing.New(cfg.Embedder.Dim)
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := embopenai.New(embopenai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	ch, err := chunker.NewParagraphChunker(cfg.Chunker.MaxChars, cfg.Chunker.OverlapChars)
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}

	var idx domain.VectorIndex
	switch cfg.Index.Type {
	case "flat", "":
		fi, err := flat.New(cfg.Embedder.Dim)
		if err != nil {
			log.Fatalf("index init failed: %v", err)
		}
		if err := fi.Load(cfg.Index.Path); err != nil {
			log.Fatalf("index load failed: %v", err)
		}
		idx = fi
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		qi, err := qdrant.New(qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		}, cfg.Embedder.Dim)
		if err != nil {
			log.Fatalf("qdrant init failed: %v", err)
		}
		idx = qi
	default:
		log.Fatalf("unknown index: %s", cfg.Index.Type)
	}

	var meta domain.MetadataStore
	switch cfg.Metadata.Type {
	case "bolt", "":
		store, err := bolt.Open(cfg.Metadata.Path)
		if err != nil {
			log.Fatalf("metadata store init failed: %v", err)
		}
		meta = store
	case "sqlite":
		store, err := sqlite.Open(cfg.Metadata.Path)
		if err != nil {
			log.Fatalf("metadata store init failed: %v", err)
		}
		meta = store
	case "memory":
		meta = memory.NewStore()
	default:
		log.Fatalf("unknown metadata store: %s", cfg.Metadata.Type)
	}

	var gen domain.Generator
	switch cfg.Reader.Type {
	case "extractive", "":
		gen = extractive.New(0)
	case "openai":
		if cfg.Reader.OpenAI == nil {
			log.Fatalf("openai reader config missing")
		}
		client, err := readeropenai.New(readeropenai.Config{
			BaseURL:   cfg.Reader.OpenAI.BaseURL,
			APIKeyEnv: cfg.Reader.OpenAI.APIKeyEnv,
			Model:     cfg.Reader.OpenAI.Model,
			Timeout:   time.Duration(cfg.Reader.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai reader init failed: %v", err)
		}
		gen = client
	default:
		log.Fatalf("unknown reader: %s", cfg.Reader.Type)
	}

	limiter := service.NewLimiter(cfg.Server.ModelCallLimit)
	ingestor := service.NewIngestService(extract.NewPlainText(), ch, emb, idx, meta, limiter)
	retriever := service.NewRetrieverService(emb, idx, meta, limiter)
	pipeline := service.NewPipelineService(retriever, gen, limiter)
	srv := server.NewServer(pipeline, ingestor, idx, cfg.Server.TopK, cfg.Server.MaxUploadMB)

	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: srv.Router()}
	go func() {
		log.Printf("raghd listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	if cfg.Index.Type == "flat" || cfg.Index.Type == "" {
		if err := idx.Save(cfg.Index.Path); err != nil {
			log.Printf("index save failed: %v", err)
		}
	}
	if err := meta.Close(); err != nil {
		log.Printf("metadata close failed: %v", err)
	}
}
