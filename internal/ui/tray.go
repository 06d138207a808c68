// Package ui hosts the system tray icon. The tray mirrors the current media
// session and gives quick access to the browser UI.
package ui

import (
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
)

type Tray struct {
	logger *slog.Logger

	statusItem *systray.MenuItem
	videoItem  *systray.MenuItem

	mu sync.Mutex

	onOpenUI func() error
	onQuit   func()
}

type TrayConfig struct {
	Logger   *slog.Logger
	OnOpenUI func() error
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		logger:   cfg.Logger,
		onOpenUI: cfg.OnOpenUI,
		onQuit:   cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Clipsight")
	systray.SetTooltip("Clipsight Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current session status")
	t.statusItem.Disable()

	t.videoItem = systray.AddMenuItem("No video loaded", "Current video")
	t.videoItem.Disable()

	systray.AddSeparator()

	openItem := systray.AddMenuItem("Open Clipsight...", "Open the browser UI")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Clipsight Agent")

	go func() {
		for {
			select {
			case <-openItem.ClickedCh:
				t.handleOpenUI()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) handleOpenUI() {
	if t.onOpenUI != nil {
		if err := t.onOpenUI(); err != nil {
			t.logger.Error("failed to open browser UI", "error", err)
		}
	}
}

// UpdateStatus reflects the media session state in the tray menu.
func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.statusItem != nil {
		t.statusItem.SetTitle("Status: " + status)
	}
}

// UpdateVideo shows the filename of the current session, or the placeholder
// when none is loaded.
func (t *Tray) UpdateVideo(filename string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.videoItem == nil {
		return
	}
	if filename == "" {
		t.videoItem.SetTitle("No video loaded")
	} else {
		t.videoItem.SetTitle(filename)
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}
