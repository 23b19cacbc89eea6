package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dvkuznetsov/longform-crawl/internal/store"
)

// StatusServer exposes a read-only JSON snapshot of the same
// task/document group counts the progress reporter logs. It is
// additive observability, gated by a non-zero logic.status_port; it
// does not accept any control input.
type StatusServer struct {
	Tasks    store.TaskStore
	Docs     store.DocumentStore
	Registry *Registry
	Logger   *slog.Logger

	server *http.Server
}

type statusPayload struct {
	Tasks     []store.TaskGroup `json:"tasks"`
	Documents []store.DocGroup  `json:"documents"`
	Workers   []WorkerStatus    `json:"workers"`
}

// Start begins serving /status on port in the background. Call
// Shutdown to stop it.
func (s *StatusServer) Start(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("status server failed", "error", err)
		}
	}()
	s.Logger.Info("status server listening", "port", port)
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	payload := statusPayload{}

	if taskGroups, err := s.Tasks.StatsBySourceAndState(ctx); err == nil {
		payload.Tasks = taskGroups
	} else {
		s.Logger.Warn("status: tasks query failed", "error", err)
	}
	if docGroups, err := s.Docs.StatsBySource(ctx); err == nil {
		payload.Documents = docGroups
	} else {
		s.Logger.Warn("status: docs query failed", "error", err)
	}
	if s.Registry != nil {
		payload.Workers = s.Registry.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.Logger.Warn("status: encode failed", "error", err)
	}
}

// Shutdown stops the status server, if started.
func (s *StatusServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
