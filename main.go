package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"pixotope-settings-go/internal/config"
	"pixotope-settings-go/internal/ui"
)

// Version information - set by linker flags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	configPath := flag.String("config", "", "Path to config.ini (default: ./config.ini or $PIXOTOPE_SETTINGS_CONFIG)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Pixotope Settings %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Go version: %s\n", GoVersion)
		fmt.Printf("  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("[Main] WARNING: Config load error: %v (using defaults)", err)
	}

	logCleanup, err := config.ConfigureLogging(cfg)
	if err != nil {
		log.Printf("[Main] WARNING: Logging setup error: %v", err)
	}
	defer logCleanup()

	log.Printf("[Main] Pixotope Settings %s starting...", Version)
	log.Printf("[Main] Config: gateway=%s poll=%v installation=%s",
		cfg.GatewayEndpoint, cfg.PollInterval(), cfg.Installation)

	ok, warnings := cfg.Validate()
	if !ok {
		log.Printf("[Main] WARNING: Config validation failed!")
	}
	for _, w := range warnings {
		log.Printf("[Main] WARNING: %s", w)
	}

	app := ui.NewApp(cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("[Main] Received signal %v, cleaning up...", sig)
		app.Cleanup()
	}()

	app.Start()

	app.Cleanup()
}
