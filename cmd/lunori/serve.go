package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"lunori/pkg/config"
	"lunori/pkg/engine"
	"lunori/pkg/handlers"
	"lunori/pkg/middleware"
	"lunori/pkg/services"
	"lunori/pkg/storage"
	"lunori/pkg/transcode"
)

type serveOptions struct {
	addr         string
	dataDir      string
	configPath   string
	staticDir    string
	whisperBin   string
	modelsDir    string
	ffmpegBin    string
	inferenceURL string
	logFile      string
	sessionTTL   time.Duration
	reapInterval time.Duration
}

func serveCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the journaling HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8000", "listen address")
	cmd.Flags().StringVar(&opts.dataDir, "data", "./data", "data directory")
	cmd.Flags().StringVar(&opts.configPath, "config", "./config.json", "config file path")
	cmd.Flags().StringVar(&opts.staticDir, "static", "./frontend", "static frontend directory")
	cmd.Flags().StringVar(&opts.whisperBin, "whisper-bin", "whisper-cli", "whisper.cpp CLI binary")
	cmd.Flags().StringVar(&opts.modelsDir, "models", "./models", "whisper model directory")
	cmd.Flags().StringVar(&opts.ffmpegBin, "ffmpeg-bin", "ffmpeg", "ffmpeg binary")
	cmd.Flags().StringVar(&opts.inferenceURL, "inference-url", "http://localhost:8178", "emotion/caption inference server URL")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "log file path (rotated); empty logs to stderr")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 24*time.Hour, "idle time before abandoned sessions are reaped")
	cmd.Flags().DurationVar(&opts.reapInterval, "reap-interval", time.Hour, "how often to sweep for abandoned sessions")

	return cmd
}

func runServe(opts *serveOptions) error {
	logger := newLogger(opts.logFile)

	cfgStore := config.NewStore(opts.configPath)
	if err := cfgStore.EnsureExists(); err != nil {
		logger.Warn("could not write default config", "path", opts.configPath, "error", err)
	}

	audio, err := storage.NewAudioStore(
		filepath.Join(opts.dataDir, "audio"),
		filepath.Join(opts.dataDir, "raw_audio"),
	)
	if err != nil {
		return err
	}

	entries, err := storage.NewEntryStore(filepath.Join(opts.dataDir, "entries"), logger)
	if err != nil {
		return err
	}

	sessions, err := storage.NewSessionStore(filepath.Join(opts.dataDir, "sessions"), logger)
	if err != nil {
		return err
	}

	images, err := storage.NewImageStore(filepath.Join(opts.dataDir, "images"))
	if err != nil {
		return err
	}

	factory := func(name string) (engine.Transcriber, error) {
		return engine.NewWhisperCLI(opts.whisperBin, engine.WhisperModelPath(opts.modelsDir, name))
	}

	registry, err := engine.NewRegistry(
		factory,
		cfgStore,
		engine.NewHTTPClassifier(opts.inferenceURL),
		engine.NewHTTPCaptioner(opts.inferenceURL),
		logger,
	)
	if err != nil {
		return err
	}

	// Apply model preference edits made directly to the config file.
	stopWatch, err := cfgStore.Watch(logger, func(cfg *config.Config) {
		if cfg.WhisperModel == registry.ModelName() {
			return
		}
		if err := registry.SetModel(cfg.WhisperModel); err != nil {
			logger.Warn("config file model change rejected", "model", cfg.WhisperModel, "error", err)
		}
	})
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	recording := services.NewRecordingService(sessions, audio, registry, transcode.NewFFmpeg(opts.ffmpegBin), logger)
	journal := services.NewJournalService(entries, audio, registry, logger)
	imageSvc := services.NewImageService(images, registry, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	recording.StartReaper(ctx, opts.reapInterval, opts.sessionTTL)

	router := newRouter(journal, recording, imageSvc, registry, opts.staticDir, logger)

	server := &http.Server{
		Addr:    opts.addr,
		Handler: router,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting", "addr", opts.addr, "model", registry.ModelName())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func newLogger(logFile string) *slog.Logger {
	var out io.Writer = os.Stderr
	if logFile != "" {
		out = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		}
	}
	return slog.New(slog.NewTextHandler(out, nil))
}

func newRouter(journal *services.JournalService, recording *services.RecordingService, imageSvc *services.ImageService, registry *engine.Registry, staticDir string, logger *slog.Logger) *chi.Mux {
	apiHandlers := handlers.NewAPIHandlers(journal, registry, logger)
	transcribeHandlers := handlers.NewTranscribeHandlers(recording, logger)
	imageHandlers := handlers.NewImageHandlers(imageSvc, logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PermissiveCORS)

	r.Get("/health", apiHandlers.HealthHandler)

	// Static frontend
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(staticDir, "index.html"))
	})

	r.Get("/config/whisper_model", apiHandlers.GetWhisperModelHandler)
	r.Post("/config/whisper_model", apiHandlers.SetWhisperModelHandler)

	r.Post("/transcribe/upload", transcribeHandlers.UploadHandler)
	r.Post("/transcribe/chunk", transcribeHandlers.ChunkHandler)
	r.Post("/transcribe/finalize", transcribeHandlers.FinalizeHandler)

	r.Post("/entries/save", apiHandlers.SaveEntryHandler)
	r.Get("/entries", apiHandlers.ListEntriesHandler)
	r.Get("/entries/{id}", apiHandlers.GetEntryHandler)
	r.Delete("/entries/{id}", apiHandlers.DeleteEntryHandler)

	r.Get("/audio/{filename}", transcribeHandlers.ServeAudioHandler)

	r.Post("/images/upload", imageHandlers.UploadImageHandler)
	r.Get("/images/{filename}", imageHandlers.ServeImageHandler)

	return r
}
