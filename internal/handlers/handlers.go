package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/fanout"
	"github.com/fortuna/services/playbyplay-service/internal/poller"
	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxInvokeBody = 4 << 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Invoker runs one task payload
type Invoker interface {
	Invoke(ctx context.Context, payload []byte) error
}

// Handler serves artifacts, subscriber connections and task invocation
type Handler struct {
	hub     *fanout.Hub
	store   storage.Store
	invoker Invoker
	ctx     context.Context
}

// NewHandler creates a handler. Client pumps and invocations run under ctx.
func NewHandler(ctx context.Context, hub *fanout.Hub, store storage.Store, invoker Invoker) *Handler {
	return &Handler{
		hub:     hub,
		store:   store,
		invoker: invoker,
		ctx:     ctx,
	}
}

// HandleWebSocket upgrades HTTP connections to WebSocket subscribers
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[handlers] websocket upgrade error: %v", err)
		return
	}

	clientID := uuid.New().String()
	c := fanout.NewClient(clientID, conn, h.hub, h.hub.Subscriptions())
	h.hub.Register(c)

	// Pumps outlive the request
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}

// HandleHealth returns service health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"service":        "playbyplay-service",
		"timestamp":      time.Now().UTC(),
		"active_clients": h.hub.GetClientCount(),
	})
}

// HandleMetrics returns hub metrics
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.hub.GetMetrics())
}

// GetSchedule serves the stored schedule artifact for a date
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, ok := storage.DateFromScheduleKey(storage.ScheduleKey(date)); !ok {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
		return
	}
	h.serveArtifact(w, r, storage.ScheduleKey(date))
}

// GetGamepack serves the stored gamepack for a public id
func (h *Handler) GetGamepack(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicId")
	if _, ok := storage.PublicIDFromGamepackKey(storage.GamepackKey(publicID)); !ok {
		respondError(w, http.StatusBadRequest, "invalid game id", nil)
		return
	}
	h.serveArtifact(w, r, storage.GamepackKey(publicID))
}

// GetInit serves the landing state
func (h *Handler) GetInit(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, storage.InitKey)
}

// GetManifest serves the final-game manifest
func (h *Handler) GetManifest(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, storage.ManifestKey)
}

// serveArtifact writes stored bytes with the metadata they were stored with.
// Bodies stay compressed; clients decode per Content-Encoding.
func (h *Handler) serveArtifact(w http.ResponseWriter, r *http.Request, key string) {
	obj, err := h.store.Get(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "artifact not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read artifact", err)
		return
	}

	etag := `"` + storage.Version(obj.Body) + `"`
	w.Header().Set("ETag", etag)
	if obj.CacheControl != "" {
		w.Header().Set("Cache-Control", obj.CacheControl)
	}
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	if obj.ContentEncoding != "" {
		w.Header().Set("Content-Encoding", obj.ContentEncoding)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(obj.Body)
}

// Invoke runs a task in the background. The body is a task payload such as
// {"task":"manager"}; an empty body polls.
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxInvokeBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err)
		return
	}

	task, err := poller.DecodeTask(payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task payload", err)
		return
	}

	go func() {
		if err := h.invoker.Invoke(h.ctx, payload); err != nil {
			log.Printf("[handlers] task %s failed: %v", task.Name(), err)
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"task":   task.Name(),
		"status": "accepted",
	})
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[handlers] error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("[handlers] %s: %v", message, err)
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
