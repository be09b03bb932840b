package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vimeh/gridcore-sub002/calc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the grid engine HTTP server",
	Run:   runServe,
}

func registerRoutes() {
	http.HandleFunc("/cells", handleCells)
	http.HandleFunc("/grid", handleGrid)
	http.HandleFunc("/grid/load", handleLoad)
	http.HandleFunc("/evaluate", handleEvaluate)
	http.HandleFunc("/transform/copy", handleTransformCopy)
	http.HandleFunc("/transform/fill", handleTransformFill)
	http.HandleFunc("/transform/preview", handleTransformPreview)
	http.HandleFunc("/fill", handleFill)
	http.HandleFunc("/pivot", handlePivot)
	http.HandleFunc("/undo", handleUndo)
	http.HandleFunc("/redo", handleRedo)
	http.HandleFunc("/ws", handleWS)
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func runServe(cmd *cobra.Command, args []string) {
	bus.Subscribe(calc.EventCellCalculated, func(ev calc.Event) {
		cellEventsTotal.Inc()
		status := "ok"
		if ev.Data != nil && ev.Data.HasError() {
			status = "error"
		}
		calculationsTotal.WithLabelValues(status).Inc()
		events.broadcast(ev)
	})

	registerRoutes()
	srv := &http.Server{Addr: cfg.ListenAddr}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
	log.Println("server stopped")
}
