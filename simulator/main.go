package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rook-computer/flightdeck/internal/app"
	"github.com/rook-computer/flightdeck/internal/sim"
	"github.com/rook-computer/flightdeck/internal/state"
	"github.com/rook-computer/flightdeck/internal/web"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(web.DefaultListenAddr)
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := kingpin.Flag("listen", "HTTP listen address; also configurable via "+web.EnvListenAddr).Default(defaults.ListenAddr).String()
	devMode := kingpin.Flag("dev", "Enable permissive CORS; also configurable via "+web.EnvDevMode).Default(fmt.Sprint(defaults.DevMode)).Bool()
	scenario := kingpin.Flag("scenario", describeScenarios()).Default("cruise").Short('s').String()
	tick := kingpin.Flag("tick", "Simulated clock step").Default("1s").Duration()
	interactive := kingpin.Flag("interactive", "Fly the aircraft from the terminal keyboard").Default("true").Bool()
	verbose := kingpin.Flag("verbose", "Log every bridge request").Short('v').Bool()
	kingpin.Parse()

	var logger app.Logger = app.NoopLogger{}
	if *verbose {
		logger = app.NewFileLogger(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aircraft := sim.NewAircraft(state.NewStore())
	control := NewSimControl(aircraft, *scenario)
	if err := control.ApplyScenario(*scenario); err != nil {
		fmt.Println("scenario init error:", err)
		os.Exit(2)
	}

	mux := web.NewDefaultMux(web.APIV1Deps{Sim: aircraft, Name: "simulator", Logger: logger})
	registerSimEndpoints(mux, control)

	server := web.NewHTTPServer(*listenAddr, mux)
	server.DevMode = *devMode
	server.Logger = logger
	if err := server.Start(ctx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}
	defer func() { _ = server.Stop() }()

	fmt.Println("flightdeck simulator listening on", server.ListenAddr())
	fmt.Println("Scenario:", control.Scenario())
	fmt.Println("API: http://" + displayAddr(server.ListenAddr()) + "/api/v1/")

	go runClock(ctx, control, *tick)

	if *interactive && interactiveAvailable() {
		if err := runKeyboard(ctx, control, stop); err != nil {
			fmt.Println("keyboard control error:", err)
		}
	}
	<-ctx.Done()
}

func runClock(ctx context.Context, control *SimControl, step time.Duration) {
	if step <= 0 {
		step = time.Second
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			control.Tick(now.Sub(last))
			last = now
		}
	}
}

func displayAddr(addr string) string {
	switch {
	case strings.HasPrefix(addr, ":"):
		return "127.0.0.1" + addr
	case strings.HasPrefix(addr, "[::]:"):
		return "127.0.0.1" + strings.TrimPrefix(addr, "[::]")
	}
	return addr
}
