package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/flightdeck/internal/app"
	"github.com/rook-computer/flightdeck/internal/config"
	"github.com/rook-computer/flightdeck/internal/deck"
	"github.com/rook-computer/flightdeck/internal/deck/fbdeck"
	"github.com/rook-computer/flightdeck/internal/deck/hiddeck"
	"github.com/rook-computer/flightdeck/internal/render"
	"github.com/rook-computer/flightdeck/internal/sim"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	configFile = kingpin.Flag("config", "Config file (default: flightdeck.yaml in ., ./config, /etc/flightdeck)").Short('c').String()
	assetsDir  = kingpin.Flag("assets", "Directory holding Icons/ and Fonts/").Short('a').String()
	backend    = kingpin.Flag("backend", "Deck backend: hid | framebuffer").Short('b').String()
	bridgeURL  = kingpin.Flag("bridge", "Simulator bridge URL").String()
	brightness = kingpin.Flag("brightness", "Deck brightness in percent").Default("-1").Int()
	interval   = kingpin.Flag("interval", "Key refresh interval").Duration()
	debug      = kingpin.Flag("debug", "Also log to ./flightdeck-debug.log").Bool()
	stdioLog   = kingpin.Flag("stdio-log", "Redirect stdout+stderr (including panics) to this file; also configurable via FLIGHTDECK_STDIO_LOG").String()
)

func main() {
	kingpin.Version("0.1.0")
	kingpin.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	// Redirect stdout/stderr, including panic stack traces, so crashes are
	// diagnosable when the console was left in graphics mode.
	if cfg.StdioLog != "" {
		if err := redirectStdIO(cfg.StdioLog); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var out io.Writer = os.Stdout
	if cfg.Debug {
		f, err := os.OpenFile("./flightdeck-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Println("debug log open error:", err)
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	logger := app.NewFileLogger(out)
	if cfg.Debug {
		logger.Infof("main", "debug logging enabled")
	}

	if err := run(cfg, logger); err != nil {
		fmt.Println("flightdeck:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	v := config.New()
	if *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if *assetsDir != "" {
		v.Set("assets_dir", *assetsDir)
	}
	if *backend != "" {
		v.Set("backend", *backend)
	}
	if *bridgeURL != "" {
		v.Set("bridge.url", *bridgeURL)
	}
	if *brightness >= 0 {
		v.Set("brightness", *brightness)
	}
	if *interval > 0 {
		v.Set("refresh_interval", *interval)
	}
	if *debug {
		v.Set("debug", true)
	}
	if *stdioLog != "" {
		v.Set("stdio_log", *stdioLog)
	}
	return config.Load(v)
}

func run(cfg *config.Config, logger app.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	decks, cleanup, err := enumerate(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	fmt.Printf("Found %d Stream Deck(s).\n", len(decks))

	bridge := sim.NewBridge(cfg.Bridge.URL, cfg.Bridge.Timeout)
	bridge.Logger = logger
	var client sim.Client = bridge
	if cfg.Bridge.CacheTTL > 0 {
		client = sim.NewCache(bridge, cfg.Bridge.CacheTTL)
	}

	assets := render.NewAssets()
	assets.Logger = logger
	if cfg.WatchAssets {
		if err := assets.Watch(ctx, cfg.AssetsDir); err != nil {
			logger.Errorf("main", "asset watch disabled: %v", err)
		}
	}

	a := app.New(decks, client, render.NewKeyRenderer(assets))
	a.AssetsDir = cfg.AssetsDir
	a.Brightness = cfg.Brightness
	a.Interval = cfg.RefreshInterval
	a.Logger = logger
	return shutdownError(a.Start(ctx))
}

// shutdownError drops the error of a signal-driven stop.
func shutdownError(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func enumerate(cfg *config.Config, logger app.Logger) ([]deck.Device, func(), error) {
	switch cfg.Backend {
	case config.BackendFramebuffer:
		decks, err := fbdeck.Enumerate(fbdeck.Options{
			Device:    cfg.Framebuffer.Device,
			Keyboard:  cfg.Framebuffer.Keyboard,
			Columns:   cfg.Framebuffer.Columns,
			Rows:      cfg.Framebuffer.Rows,
			StatusURL: cfg.Bridge.URL,
			Logger:    logger,
		})
		return decks, func() {}, err
	default:
		if err := hiddeck.Init(); err != nil {
			return nil, func() {}, err
		}
		cleanup := func() {
			if err := hiddeck.Exit(); err != nil {
				logger.Errorf("main", "%v", err)
			}
		}
		decks, err := hiddeck.Enumerate(logger)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		return decks, cleanup, nil
	}
}
