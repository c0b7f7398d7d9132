// Command qcecd runs the equivalence checker as an HTTP service:
// POST /v1/verify accepts two circuits and returns a result.Results
// JSON document, GET /health is a liveness probe, and GET / reports the
// service name and version. It is a thin shell over internal/app.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/kegliz/qcec/internal/app"
	"github.com/kegliz/qcec/internal/config"
	"github.com/kegliz/qcec/internal/version"
)

func main() {
	port := flag.Int("port", 8080, "listen port")
	localOnly := flag.Bool("local-only", false, "bind to 127.0.0.1 instead of all interfaces")
	debug := flag.Bool("debug", false, "enable debug logging")
	configFile := flag.String("config", "", "optional YAML configuration file")
	flag.Parse()

	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "qcecd: GOMAXPROCS detection failed: %v\n", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.9),
		memlimit.WithProvider(memlimit.FromCgroup),
	); err != nil {
		fmt.Fprintf(os.Stderr, "qcecd: memory limit detection skipped: %v\n", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qcecd: %v\n", err)
		os.Exit(1)
	}

	srv, err := app.NewServer(app.ServerOptions{
		C:       cfg,
		Debug:   *debug,
		Version: version.String(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "qcecd: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(*port, *localOnly)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "qcecd: %v\n", err)
			os.Exit(1)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "qcecd: shutdown: %v\n", err)
			os.Exit(1)
		}
	}
}
