package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/fingercount/internal/app"
	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/config"
	"github.com/ayusman/fingercount/internal/display"
	"github.com/ayusman/fingercount/internal/server"
	"github.com/ayusman/fingercount/internal/store"
	"github.com/ayusman/fingercount/internal/tray"
	"github.com/ayusman/fingercount/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fingercount: %v", err)
	}
}

func run(cfg *config.Config) error {
	fmt.Println("fingercount - raised finger counter")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := capture.ParseSource(cfg.Source)
	if err != nil {
		return err
	}
	camera := capture.NewSource(src)
	if err := camera.Open(); err != nil {
		return err
	}
	defer camera.Close()

	var sinks display.Multi
	var observers []app.Observer

	if cfg.Windows() {
		windows := display.NewWindows()
		defer func() {
			if err := windows.Close(); err != nil {
				log.Printf("Error closing windows: %v", err)
			}
		}()
		sinks = append(sinks, windows)
	}

	var st *store.Store
	if cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		st, err = store.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("initialize store: %w", err)
		}
		defer st.Close()

		recorder := store.NewRecorder(st, src.String(), cfg.ROI)
		defer recorder.Close()
		observers = append(observers, recorder)
		fmt.Printf("Recording sessions to %s\n", cfg.DBPath)
	}

	var frames *server.FrameSink
	var counts *server.CountsHandler
	if cfg.Addr != "" {
		frames = server.NewFrameSink()
		counts = server.NewCountsHandler()
		sinks = append(sinks, frames)
		observers = append(observers, counts)
	}

	loopCfg := app.Config{
		ROI:      cfg.ROI,
		Options:  vision.Options{BlurSize: cfg.BlurSize},
		ShowMask: cfg.ShowMask,
	}
	loop := app.New(loopCfg, camera, sinks, observers...)

	if cfg.Addr != "" {
		srv := server.New(server.Config{
			StaticDir: cfg.StaticDir,
			Store:     st,
			Frames:    frames,
			Counts:    counts,
			Loop:      loop,
		})

		fmt.Printf("Starting server on %s\n", cfg.Addr)
		go func() {
			if err := srv.Serve(ctx, cfg.Addr); err != nil {
				log.Printf("Server failed: %v", err)
				stop()
			}
		}()
	}

	if !cfg.Tray {
		return loop.Run(ctx)
	}

	return runWithTray(ctx, stop, loop)
}

// runWithTray runs the frame loop in the background while the tray owns
// the main goroutine, as the system tray requires.
func runWithTray(ctx context.Context, stop context.CancelFunc, loop *app.Loop) error {
	t := tray.New()
	t.OnQuit(stop)
	loop.AddObserver(t)

	errCh := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		t.Quit()
		errCh <- err
	}()

	t.Run()

	// The tray can exit on its own; make sure the loop follows.
	stop()
	err := <-errCh
	if errors.Is(err, app.ErrStopped) {
		return nil
	}
	return err
}
