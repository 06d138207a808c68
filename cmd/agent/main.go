package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clipsight/clipsight-agent/internal/analysis"
	"github.com/clipsight/clipsight-agent/internal/annotation"
	"github.com/clipsight/clipsight-agent/internal/api"
	"github.com/clipsight/clipsight-agent/internal/config"
	"github.com/clipsight/clipsight-agent/internal/db"
	"github.com/clipsight/clipsight-agent/internal/genai"
	"github.com/clipsight/clipsight-agent/internal/logging"
	"github.com/clipsight/clipsight-agent/internal/media"
	"github.com/clipsight/clipsight-agent/internal/playback"
	"github.com/clipsight/clipsight-agent/internal/probe"
	"github.com/clipsight/clipsight-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.PreviewDir(), 0755); err != nil {
		return fmt.Errorf("failed to create preview dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting clipsight agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := db.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                  CLIPSIGHT AGENT v0.1.0                   ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var client genai.Client
	if cfg.APIKey() != "" {
		client = genai.NewHTTPClient(cfg.APIBaseURL(), cfg.APIKey(), logger)
		logger.Info("generative client configured", "base_url", cfg.APIBaseURL(), "model", cfg.Model())
	} else {
		client = genai.NewStubClient(logger)
		logger.Warn("no API key configured, analysis requests will return a notice")
	}

	var prober probe.Prober
	ffprobe := probe.NewFFprobe(logging.WithComponent(logger, "probe"))
	if ffprobe.Available() {
		prober = ffprobe
	} else {
		logger.Info("ffprobe not found, duration comes from the player only")
		prober = probe.NewStubProber(logger)
	}

	manager := media.NewManager(media.ManagerConfig{
		Client:       client,
		Prober:       prober,
		PreviewDir:   cfg.PreviewDir(),
		PollInterval: cfg.PollInterval(),
		PollAttempts: cfg.PollAttempts(),
		Logger:       logging.WithComponent(logger, "media"),
	})

	orchestrator := analysis.NewOrchestrator(analysis.OrchestratorConfig{
		Client: client,
		Router: annotation.NewRouter(logging.WithComponent(logger, "annotation")),
		Media:  manager,
		Model:  cfg.Model(),
		Logger: logging.WithComponent(logger, "analysis"),
	})

	sync := playback.NewSynchronizer(logging.WithComponent(logger, "playback"))

	var tray *ui.Tray

	// A new drop invalidates everything derived from the previous video.
	manager.OnSessionChange(func(sessionID string) {
		orchestrator.ClearResults()
		sync.Reset()
		snap := manager.Snapshot()
		if snap.DurationSecs > 0 {
			sync.SetDuration(snap.DurationSecs)
		}
		if tray != nil {
			tray.UpdateStatus(snap.State)
			tray.UpdateVideo(snap.Filename)
		}
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:         cfg.Port(),
		Media:        manager,
		Orchestrator: orchestrator,
		Sync:         sync,
		Preview:      playback.NewPreviewServer(logging.WithComponent(logger, "preview")),
		Repository:   repo,
		Logger:       logging.WithComponent(logger, "api"),
		StartTime:    startTime,
		DeviceID:     deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	uiURL := fmt.Sprintf("http://127.0.0.1:%d/", cfg.Port())

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray = ui.NewTray(ui.TrayConfig{
			Logger: logging.WithComponent(logger, "ui"),
			OnOpenUI: func() error {
				return openBrowser(uiURL)
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

func ensureDeviceID(repo db.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, db.KeyDeviceID)
	if err == nil && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := repo.SetConfig(ctx, db.KeyDeviceID, deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(repo db.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, db.KeyAuthToken)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, db.KeyAuthToken, token); err != nil {
		return "", err
	}

	return token, nil
}
