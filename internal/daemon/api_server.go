package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"gaffer/internal/api"
	"gaffer/internal/config"
	"gaffer/internal/logging"
	"gaffer/internal/store"
)

type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	runSvc   *api.RunService
	assetSvc *api.AssetService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:     bind,
		logger:   logger,
		daemon:   d,
		runSvc:   api.NewRunService(d.store),
		assetSvc: api.NewAssetService(d.store),
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/runs", authMiddleware(token, srv.handleRuns))
	mux.HandleFunc("/api/runs/", authMiddleware(token, srv.handleRun))
	mux.HandleFunc("/api/assets", authMiddleware(token, srv.handleAssets))
	mux.HandleFunc("/healthz", srv.handleHealthz)
	if d.metrics != nil {
		mux.Handle("/metrics", d.metrics.Handler())
	}

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DBPath:       status.DBPath,
		LockFilePath: status.LockFilePath,
		Worker: api.WorkerStatus{
			Running:   status.Worker.Running,
			RunStats:  api.MergeRunStats(status.Worker.RunStats),
			LastError: status.Worker.LastError,
		},
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRuns(w, r)
	case http.MethodPost:
		s.queueRun(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) listRuns(w http.ResponseWriter, r *http.Request) {
	var statuses []store.RunStatus
	for _, value := range r.URL.Query()["status"] {
		status, ok := store.ParseRunStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown run status %q", value))
			return
		}
		statuses = append(statuses, status)
	}

	runs, err := s.runSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RunListResponse{Runs: runs})
}

func (s *apiServer) queueRun(w http.ResponseWriter, r *http.Request) {
	var req api.QueueRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	run, err := s.runSvc.Queue(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log().Info("run queued",
		logging.String(logging.FieldRunID, run.ID),
		logging.String(logging.FieldGraphID, run.GraphID),
		logging.String(logging.FieldNodeID, run.NodeID))
	s.writeJSON(w, http.StatusCreated, api.RunResponse{Run: *run})
}

func (s *apiServer) handleRun(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	if id, ok := strings.CutSuffix(rest, "/retry"); ok {
		s.retryRun(w, r, id)
		return
	}
	if strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	run, err := s.runSvc.Describe(r.Context(), rest)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.RunResponse{Run: *run})
}

func (s *apiServer) retryRun(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if id == "" {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	retried, err := s.runSvc.Retry(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if retried == 0 {
		s.writeError(w, http.StatusConflict, "run is not in a failed state")
		return
	}
	s.writeJSON(w, http.StatusOK, api.RetryResponse{Retried: retried})
}

func (s *apiServer) handleAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	projectID := strings.TrimSpace(r.URL.Query().Get("project"))
	assets, err := s.assetSvc.List(r.Context(), projectID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.AssetListResponse{Assets: assets})
}

func (s *apiServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	health, err := s.daemon.RunHealth(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"runs": map[string]int{
			"total":      health.Total,
			"queued":     health.Queued,
			"processing": health.Processing,
			"completed":  health.Completed,
			"failed":     health.Failed,
		},
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
