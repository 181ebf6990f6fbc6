package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve yard reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		merger := newMerger()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/sites", func(w http.ResponseWriter, req *http.Request) {
			sites := make([]string, 0, len(cfg.Sites.RoutingAccounts))
			for site := range cfg.Sites.RoutingAccounts {
				sites = append(sites, site)
			}
			sort.Strings(sites)
			writeJSON(w, http.StatusOK, map[string]any{"sites": sites})
		})

		r.Get("/sites/{site}/report", func(w http.ResponseWriter, req *http.Request) {
			site := chi.URLParam(req, "site")
			if !cfg.Sites.Known(site) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown site"})
				return
			}

			report, err := merger.Run(req.Context(), site)
			if err != nil {
				zap.L().Error("serve: report build failed",
					zap.String("site", site),
					zap.Error(err),
				)
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"Main": report})
		})

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(cmd.Context())
		}()

		zap.L().Info("serve: listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override listen port")
	rootCmd.AddCommand(serveCmd)
}
