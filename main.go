package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aouyang1/labboard/api"
	"github.com/aouyang1/labboard/board"
	"github.com/aouyang1/labboard/config"
	"github.com/aouyang1/labboard/events"
	"github.com/aouyang1/labboard/logging"
	"github.com/aouyang1/labboard/store"
	"github.com/aouyang1/labboard/wlrrandr"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

const feedTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := store.NewDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()
	settings := store.NewSettingsStore(database)

	composer, err := api.NewPageComposer(cfg.SlidesDir)
	if err != nil {
		log.Fatalf("Failed to create page composer: %v", err)
	}
	page, err := api.ComposePage(ctx, composer)
	if err != nil {
		log.Fatalf("Failed to compose board page: %v", err)
	}
	slog.Info("composed board page", "slides", page.Slides)

	clock := clockwork.NewRealClock()
	hub := api.NewHub()
	b := board.New(settings, board.Options{
		Clock:    clock,
		Location: cfg.Location,
		Slides:   page.Slides,
		Publish:  hub.Publish,
	})

	opts := api.Options{
		RootPath:   cfg.RootPath,
		AdminRate:  cfg.AdminRate,
		AdminBurst: cfg.AdminBurst,
	}
	if cfg.EventsFeedURL != "" {
		opts.Events = events.NewService(cfg.EventsFeedURL, &http.Client{Timeout: feedTimeout}, clock)
	}
	if cfg.SlidesDir != "" {
		opts.LocalManager, err = api.NewLocalManager(cfg.SlidesDir, clock)
		if err != nil {
			log.Fatal(err)
		}
	}
	if cfg.S3Bucket != "" {
		opts.RemoteManager, err = api.NewRemoteManager(ctx, api.RemoteOptions{
			Profile:  cfg.AWSProfile,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			RootPath: cfg.RootPath,
		})
		if err != nil {
			log.Fatal(err)
		}
	}
	if cfg.DisplayControl {
		display := wlrrandr.NewDisplay(cfg.DisplayOutput, nil)
		opts.Display = display
		if cfg.DisplayFollowsSchedule {
			opts.ScheduleManager, err = api.NewScheduleManager(b, display, clock)
			if err != nil {
				log.Fatal(err)
			}
		}
	}

	webServer, err := api.NewWebServer(b, settings, hub, composer, page, opts)
	if err != nil {
		log.Fatalf("Failed to create web server: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		b.Run(ctx)
	}()

	if err := webServer.Start(ctx, cfg.Addr); err != nil {
		slog.Error("web server exited", "error", err)
		stop()
	}
	wg.Wait()
	slog.Info("board stopped")
}
