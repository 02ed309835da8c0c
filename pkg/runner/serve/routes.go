package serve

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/command"
	"tableflip.dev/marklet/pkg/engine"
)

// Routes builds the daemon's HTTP handler around svc.
func Routes(svc *app.Service, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	h := &handler{svc: svc, log: log}

	r.Get("/healthz", h.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", h.message)
		r.Post("/commands/{name}", h.command)
		r.Get("/bookmarklets", h.bookmarklets)
	})
	return r
}

type handler struct {
	svc *app.Service
	log *zap.Logger
}

// commandReply is the body of POST /v1/commands/{name}.
type commandReply struct {
	Action  string          `json:"action"`
	Message string          `json:"message,omitempty"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *handler) message(w http.ResponseWriter, r *http.Request) {
	var req app.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, app.Response{OK: false, Message: "Unknown request."})
		return
	}
	writeJSON(w, http.StatusOK, h.svc.HandleMessage(r.Context(), req))
}

func (h *handler) command(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := h.svc.HandleCommand(r.Context(), name)
	if err != nil {
		h.log.Error("command failed", zap.String("command", name), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, app.ErrNoSurface) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	reply := commandReply{Outcome: d.Outcome}
	if d.Action != nil {
		reply.Action = d.Action.Type()
	}
	if none, ok := d.Action.(command.None); ok {
		reply.Message = none.Message
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *handler) bookmarklets(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Launcher(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.log.Error("list failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request through zap instead of the chi text logger.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
			)
		})
	}
}
