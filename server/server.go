// Package server wires the resolver, validator, and scheduler into the REST
// API consumed by the dashboard and by proxy clients.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vans-aj/SwiftCache/proxy"
	"github.com/vans-aj/SwiftCache/scheduler"
	"github.com/vans-aj/SwiftCache/validate"
)

// Server holds the collaborators behind the HTTP routes.
type Server struct {
	resolver  *proxy.Resolver
	fetch     proxy.FetchFunc
	validator *validate.Validator
	logger    log.Logger
}

// New constructs a Server. fetch is the origin retrieval collaborator passed
// to every Resolve; logger may be nil.
func New(resolver *proxy.Resolver, fetch proxy.FetchFunc, validator *validate.Validator, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		resolver:  resolver,
		fetch:     fetch,
		validator: validator,
		logger:    logger,
	}
}

// Handler returns the route mux. The /metrics endpoint is mounted by the
// caller so this package stays decoupled from the metrics backend.
func (s *Server) Handler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /fetch", s.handleFetch)
	mux.HandleFunc("GET /cache", s.handleCache)
	mux.HandleFunc("GET /scheduler", s.handleSchedulerGet)
	mux.HandleFunc("PUT /scheduler", s.handleSchedulerPut)
	mux.HandleFunc("GET /admin/blocklist", s.handleBlocklistGet)
	mux.HandleFunc("POST /admin/blocklist", s.handleBlocklistAdd)
	mux.HandleFunc("DELETE /admin/blocklist", s.handleBlocklistRemove)
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "swiftcache",
	})
}

type fetchRequest struct {
	URL string `json:"url"`
}

// handleFetch validates the URL, resolves it (from cache or origin), and
// replays the upstream response. X-Cache reports the caller's role and
// X-Cached whether the payload was admitted to the store.
func (s *Server) handleFetch(w http.ResponseWriter, req *http.Request) {
	var body fetchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	if err := s.validator.Check(body.URL); err != nil {
		level.Info(s.logger).Log("msg", "url denied", "url", body.URL, "err", err)
		code := http.StatusForbidden
		if errors.Is(err, validate.ErrInvalidURL) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err.Error())
		return
	}

	res, err := s.resolver.Resolve(req.Context(), body.URL, s.fetch)
	if err != nil {
		level.Warn(s.logger).Log("msg", "resolve failed", "url", body.URL, "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	level.Info(s.logger).Log("msg", "resolved", "url", body.URL,
		"role", res.Role, "status", res.Entry.Status, "took", res.Elapsed)

	h := w.Header()
	for k, vs := range res.Entry.Header {
		h[k] = vs
	}
	h.Set("X-Cache", res.Role.String())
	if res.Cached {
		h.Set("X-Cached", "1")
	} else {
		h.Set("X-Cached", "0")
	}
	w.WriteHeader(res.Entry.Status)
	_, _ = w.Write(res.Entry.Body)
}

func (s *Server) handleCache(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": s.resolver.Stats(),
		"items": s.resolver.Entries(),
	})
}

func (s *Server) handleSchedulerGet(w http.ResponseWriter, _ *http.Request) {
	snap := s.resolver.SchedulerSnapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"scheduler": snap,
		"available": scheduler.Algorithms(),
	})
}

type schedulerRequest struct {
	Algorithm string `json:"algorithm"`
}

func (s *Server) handleSchedulerPut(w http.ResponseWriter, req *http.Request) {
	var body schedulerRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "missing algorithm")
		return
	}
	if err := s.resolver.SetAlgorithm(body.Algorithm); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	level.Info(s.logger).Log("msg", "scheduler algorithm changed", "algorithm", body.Algorithm)
	writeJSON(w, http.StatusOK, map[string]string{"current_algorithm": body.Algorithm})
}

type blocklistRequest struct {
	Domain string `json:"domain"`
}

func (s *Server) handleBlocklistGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"blocklist": s.validator.List()})
}

func (s *Server) handleBlocklistAdd(w http.ResponseWriter, req *http.Request) {
	var body blocklistRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Domain == "" {
		writeError(w, http.StatusBadRequest, "missing domain")
		return
	}
	added := s.validator.Add(body.Domain)
	code := http.StatusCreated
	if !added {
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]any{
		"added":     added,
		"domain":    body.Domain,
		"blocklist": s.validator.List(),
	})
}

func (s *Server) handleBlocklistRemove(w http.ResponseWriter, req *http.Request) {
	var body blocklistRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Domain == "" {
		writeError(w, http.StatusBadRequest, "missing domain")
		return
	}
	removed := s.validator.Remove(body.Domain)
	code := http.StatusOK
	if !removed {
		code = http.StatusNotFound
	}
	writeJSON(w, code, map[string]any{
		"removed":   removed,
		"domain":    body.Domain,
		"blocklist": s.validator.List(),
	})
}
