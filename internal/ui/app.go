package ui

import (
	"context"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pixotope-settings-go/internal/backend"
	"pixotope-settings-go/internal/cache"
	"pixotope-settings-go/internal/colorspace"
	"pixotope-settings-go/internal/config"
	"pixotope-settings-go/internal/events"
	"pixotope-settings-go/internal/gateway"
)

// App is the settings panel: a Fyne window, the backend that feeds it and
// the controller that keeps the two in sync.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	cfg     *config.Config

	cache      *cache.Cache
	service    *backend.Service
	watcher    *backend.Watcher
	view       *View
	controller *Controller

	ctx         context.Context
	cancel      context.CancelFunc
	cleanupOnce sync.Once
}

// NewApp wires the panel. Nothing talks to the gateway until Start.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	fyneApp := app.NewWithID("com.pixotope.settings")
	window := fyneApp.NewWindow("Pixotope Settings")
	window.Resize(fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight)))

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		fyneApp: fyneApp,
		window:  window,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}

	a.setupCache()

	var store colorspace.Store
	if a.cache != nil {
		store = a.cache
	}
	catalog := colorspace.NewCatalog(cfg.OCIOConfigFile(), store)
	gw := gateway.NewClient(cfg.GatewayEndpoint, cfg.GatewayTimeout())
	log.Printf("[UI] Gateway %s, OCIO config %s", gw.Endpoint(), catalog.Path())

	a.service = backend.NewService(gw, catalog, events.NewBus())
	a.watcher = backend.NewWatcher(a.service, cfg.PollInterval())
	a.view = NewView(window)
	a.controller = NewController(a.service, a.service, a.view)

	return a
}

func (a *App) setupCache() {
	if !a.cfg.CacheEnabled {
		log.Println("[Cache] Disabled")
		return
	}
	c, err := cache.New(cache.Options{Dir: a.cfg.CacheDir})
	if err != nil {
		log.Printf("[Cache] WARNING: %v (parsing OCIO config on every load)", err)
		return
	}
	a.cache = c
	log.Printf("[Cache] Using %s", a.cfg.CacheDir)
}

// Start shows the window, loads the initial state and blocks in the Fyne
// event loop until the window closes.
func (a *App) Start() {
	a.setupUI()
	a.window.Show()
	go a.initialize()
	a.watcher.Start()
	a.fyneApp.Run()
}

// setupUI shows a placeholder until the initial state arrives.
func (a *App) setupUI() {
	loading := widget.NewLabel("Connecting to Pixotope...")
	a.window.SetContent(container.NewCenter(loading))
	a.window.SetCloseIntercept(func() {
		log.Println("[UI] Window closed")
		a.cleanup()
	})
}

func (a *App) initialize() {
	if err := a.controller.Initialize(a.ctx); err != nil {
		log.Printf("[UI] Panel not rendered: %v", err)
	}
}

// cleanup stops polling, waits for pending selections and quits.
func (a *App) cleanup() {
	a.cleanupOnce.Do(func() {
		log.Println("[UI] Cleanup: stopping watcher...")
		a.watcher.Stop()
		a.watcher.Wait()

		a.controller.Close()
		a.cancel()

		if err := a.cache.Close(); err != nil {
			log.Printf("[Cache] WARNING: %v", err)
		}

		log.Println("[UI] Cleanup: complete, exiting...")
		a.fyneApp.Quit()
	})
}

// Cleanup is exported for external use (e.g., from main)
func (a *App) Cleanup() {
	a.cleanup()
}
