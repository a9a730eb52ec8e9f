package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pystyle/pystyle/pkg/store"
)

// serveCommand creates the serve command, a small read-only HTTP API
// over a JSON store so computed statistics can be browsed without
// shelling into the crawl host.
func (c *CLI) serveCommand() *cobra.Command {
	addr := ":8080"

	cmd := &cobra.Command{
		Use:   "serve <json-store>",
		Short: "Serve computed style statistics over HTTP",
		Long: `Serve exposes a JSON store read-only:

  GET /repos                  list analyzed repositories
  GET /repos/{owner}/{name}   style record of one repository`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", addr, "listen address")
	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, jsonStore, addr string) error {
	js, err := store.NewJSONStore(jsonStore, c.Logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           serveHandler(js),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Shut down cleanly when the command context is canceled (SIGINT).
	ctx := cmd.Context()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	printKeyValue("Address", addr)
	printKeyValue("Store", jsonStore)
	c.Logger.Info("serving statistics", "addr", addr, "store", jsonStore)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// serveHandler builds the read-only router over a JSON store.
func serveHandler(js *store.JSONStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/repos", func(w http.ResponseWriter, req *http.Request) {
		repos, err := js.Repos()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"repos": repos})
	})

	r.Get("/repos/{owner}/{name}", func(w http.ResponseWriter, req *http.Request) {
		repo := chi.URLParam(req, "owner") + "/" + chi.URLParam(req, "name")
		data, err := os.ReadFile(js.Path(repo))
		if err != nil {
			http.Error(w, "unknown repository", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
