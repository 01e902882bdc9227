package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/fieldstate/internal/engine"
	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
	"github.com/danielpatrickdp/fieldstate/internal/motion"
	"github.com/danielpatrickdp/fieldstate/internal/store"
)

// #region server

// Server is the HTTP collaborator over the engine: it parses requests,
// invokes the engine, persists events, and exposes Prometheus metrics.
// The engine stays transport-agnostic; this is its reference surface.
type Server struct {
	engine  *engine.Engine
	store   *store.Store // optional; nil disables persistence
	logger  *zap.Logger
	metrics *metrics
	router  chi.Router
}

// NewServer wires the routes. store may be nil.
func NewServer(eng *engine.Engine, st *store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:  eng,
		store:   st,
		logger:  logger,
		metrics: newMetrics(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/motions", s.handleApplyMotion)
		r.Post("/tick", s.handleTick)
		r.Post("/reset", s.handleReset)
		r.Get("/state", s.handleGetState)
		r.Get("/gates", s.handleGates)
		r.Get("/entropy", s.handleEntropy)
		r.Get("/nodes", s.handleListNodes)
		r.Get("/nodes/{id}", s.handleGetNode)
		r.Get("/snapshot", s.handleGetSnapshot)
		r.Post("/snapshot", s.handleSaveSnapshot)
		r.Get("/journal", s.handleJournal)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// #endregion server

// #region dto

// motionRequest carries an optional delta: when absent, the motion's
// default magnitude applies.
type motionRequest struct {
	Dimension string   `json:"dimension"`
	Motion    string   `json:"motion"`
	Delta     *float64 `json:"delta,omitempty"`
}

type motionResponse struct {
	Seq     uint64                  `json:"seq"`
	Tick    uint64                  `json:"tick"`
	Effects map[string]field.Change `json:"effects"`
	Warning string                  `json:"warning,omitempty"`
}

type nodeDTO struct {
	ID        string  `json:"id"`
	Dimension string  `json:"dimension"`
	Tier      string  `json:"tier"`
	Index     int     `json:"index"`
	Value     float64 `json:"value"`
	LastTick  uint64  `json:"last_updated_tick"`
}

func toNodeDTO(n field.Node) nodeDTO {
	return nodeDTO{
		ID:        n.ID,
		Dimension: n.Dimension.String(),
		Tier:      n.Tier.String(),
		Index:     n.Index,
		Value:     n.Value,
		LastTick:  n.LastTick,
	}
}

type snapshotDTO struct {
	Tick   uint64          `json:"tick"`
	Hash   string          `json:"hash"`
	Values []float64       `json:"values"`
	Gates  map[string]bool `json:"gates"`
}

func toSnapshotDTO(snap field.Snapshot) snapshotDTO {
	gates := make(map[string]bool, field.DimensionCount)
	for _, d := range field.Dimensions() {
		gates[d.String()] = snap.Gates[d]
	}
	return snapshotDTO{Tick: snap.Tick, Hash: snap.Hash(), Values: snap.Values, Gates: gates}
}

// #endregion dto

// #region mutation-handlers

func (s *Server) handleApplyMotion(w http.ResponseWriter, r *http.Request) {
	var req motionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	d, err := field.ParseDimension(req.Dimension)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	m, err := motion.ParseMotion(req.Motion)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	delta := m.DefaultMagnitude()
	if req.Delta != nil {
		delta = *req.Delta
	}

	result, err := s.engine.ApplyMotion(d, m, delta)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.metrics.motions.WithLabelValues(d.String(), m.String()).Inc()
	s.metrics.observeState(s.engine.Entropy(), s.engine.EvaluateGates())
	s.persistEvent(result.Event)

	s.writeJSON(w, http.StatusOK, motionResponse{
		Seq:     result.Event.Seq,
		Tick:    result.Event.Tick,
		Effects: result.Effects,
		Warning: result.Warning,
	})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	deltas := s.tick()

	out := make(map[string]float64, len(deltas))
	for d, v := range deltas {
		out[d.String()] = v
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tick":   s.engine.CurrentTick(),
		"deltas": out,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	drained := s.engine.Reset()
	s.metrics.resets.Inc()
	s.metrics.observeState(s.engine.Entropy(), s.engine.EvaluateGates())

	batchID := ""
	if s.store != nil && len(drained) > 0 {
		id, err := s.store.ArchiveJournal(drained)
		if err != nil {
			s.logger.Error("archive journal", zap.Error(err))
		} else {
			batchID = id
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"archived_events": len(drained),
		"batch_id":        batchID,
	})
}

// tick runs one decay step with the same metrics and persistence side
// effects as the HTTP endpoint. Shared with RunTicker. It persists the
// event returned by the engine, never a re-read of the journal tail, so
// concurrent ticks and motions each store their own entry.
func (s *Server) tick() map[field.Dimension]float64 {
	deltas, event := s.engine.Tick()
	s.metrics.ticks.Inc()
	s.metrics.observeState(s.engine.Entropy(), s.engine.EvaluateGates())
	s.persistEvent(event)
	return deltas
}

// RunTicker applies decay on a fixed interval until ctx is cancelled.
func (s *Server) RunTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
			s.logger.Debug("scheduled tick", zap.Uint64("tick", s.engine.CurrentTick()))
		}
	}
}

func (s *Server) persistEvent(ev journal.Event) {
	if s.store == nil {
		return
	}
	if err := s.store.AppendEvent(ev); err != nil {
		s.logger.Error("persist event", zap.Uint64("seq", ev.Seq), zap.Error(err))
	}
}

// #endregion mutation-handlers

// #region read-handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	state := s.engine.GetState()
	out := make(map[string]float64, len(state))
	for d, v := range state {
		out[d.String()] = v
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGates(w http.ResponseWriter, r *http.Request) {
	gates := s.engine.EvaluateGates()
	out := make(map[string]interface{}, len(gates))
	for d, st := range gates {
		out[d.String()] = st
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEntropy(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]float64{"entropy": s.engine.Entropy()})
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.engine.ListNodes()
	out := make([]nodeDTO, len(nodes))
	for i, n := range nodes {
		out[i] = toNodeDTO(n)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.GetNode(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toNodeDTO(n))
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, toSnapshotDTO(s.engine.Snapshot()))
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}
	snap := s.engine.Snapshot()
	id, err := s.store.SaveSnapshot(snap)
	if err != nil {
		s.logger.Error("save snapshot", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "snapshot save failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"version_id": id, "hash": snap.Hash()})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Journal())
}

// #endregion read-handlers

// #region responses

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine error types to HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var notFound *field.NotFoundError
	if errors.As(err, &notFound) {
		s.writeError(w, http.StatusNotFound, notFound.Error())
		return
	}
	s.logger.Error("engine error", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

// #endregion responses
