package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	ginprometheus "github.com/zsais/go-gin-prometheus"

	"github.com/gadgeski/bugmemo-sub000/internal/client"
	"github.com/gadgeski/bugmemo-sub000/internal/constants"
	"github.com/gadgeski/bugmemo-sub000/internal/handler"
	"github.com/gadgeski/bugmemo-sub000/internal/repository"
	"github.com/gadgeski/bugmemo-sub000/internal/service"
	"github.com/gadgeski/bugmemo-sub000/internal/store"
	"github.com/gadgeski/bugmemo-sub000/pkg/logger"
	"github.com/gadgeski/bugmemo-sub000/pkg/metrics"
)

func main() {
	log := logger.NewLogger("bugmemo")
	log.Info("Starting BugMemo server...")

	cfg := constants.Load()

	// The store is the one process-wide database handle; everything below
	// receives it by injection
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open store: ", err)
	}
	defer st.Close()
	log.WithField("path", cfg.DBPath).Info("Store opened")

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	stopStats := make(chan struct{})
	defer close(stopStats)
	m.CollectDBStats(st.DB, 15*time.Second, stopStats)

	noteRepo := repository.NewNoteRepository(st.DB, st.Notifier)
	folderRepo := repository.NewFolderRepository(st.DB, st.Notifier)
	settingsRepo := repository.NewSettingsRepository(st.DB, st.Notifier)

	svc := service.NewBugService(noteRepo, folderRepo, st.Notifier, log, m)

	ctx := context.Background()
	if err := svc.SeedIfEmpty(ctx,
		[]service.SeedFolder{{Name: "Inbox"}},
		[]service.SeedNote{{
			Title:   "Welcome to BugMemo",
			Content: "Capture bugs as short notes, file them into folders, and search as you type.",
			Folder:  "Inbox",
			Starred: true,
		}},
	); err != nil {
		log.Fatal("Failed to seed store: ", err)
	}

	gistClient := client.NewGistClient(cfg.GistAPIURL, cfg.GistToken)
	syncSvc := service.NewSyncService(noteRepo, gistClient, log, m)

	coordinator := service.NewCoordinator(svc, settingsRepo, log, cfg.SearchDebounce)
	defer coordinator.Close()
	restoreCoordinatorInputs(ctx, coordinator, settingsRepo, log)
	go func() {
		for snapshot := range coordinator.Notes() {
			log.WithField("results", len(snapshot)).Debug("search snapshot")
		}
	}()

	validator := handler.NewCustomValidator()
	noteHandler := handler.NewNoteHandler(svc, syncSvc, validator, log)
	folderHandler := handler.NewFolderHandler(svc, validator, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	prom := ginprometheus.NewPrometheus("bugmemo")
	prom.Use(router)

	handler.RegisterRoutes(router, noteHandler, folderHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown: ", err)
	}
	log.Info("Server stopped")
}

// restoreCoordinatorInputs replays the query and folder filter remembered
// from the previous run
func restoreCoordinatorInputs(ctx context.Context, c *service.Coordinator, settings *repository.SettingsRepository, log *logger.Logger) {
	if query, err := settings.Get(ctx, repository.SettingLastQuery); err != nil {
		log.WithError(err).Warn("failed to restore last query")
	} else if query != "" {
		c.SetQuery(query)
	}

	if raw, err := settings.Get(ctx, repository.SettingSelectedFolder); err != nil {
		log.WithError(err).Warn("failed to restore selected folder")
	} else if raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			c.SetFolderFilter(&id)
		}
	}
}
