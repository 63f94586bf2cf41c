package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/syncer"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	messageBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards may be served from another origin
	},
}

// SyncHandler serves sync status, forced flushes, the status stream and the
// manual connectivity switch.
type SyncHandler struct {
	store Store
	sw    Switch
	log   logger.Logger
}

// NewSyncHandler creates a new sync handler. sw may be nil.
func NewSyncHandler(s Store, sw Switch, log logger.Logger) *SyncHandler {
	return &SyncHandler{store: s, sw: sw, log: logger.OrNop(log)}
}

type connectivityRequest struct {
	Online *bool `json:"online"`
}

type connectivityResponse struct {
	Online  bool `json:"online"`
	Changed bool `json:"changed"`
}

// HandleStatus handles GET /sync.
func (h *SyncHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.SyncStatus())
}

// HandleForce handles POST /sync. A failed write is reported in the returned
// status, not as an HTTP error.
func (h *SyncHandler) HandleForce(w http.ResponseWriter, r *http.Request) {
	const op = "api.force_sync"
	err := h.store.ForceSync(r.Context())
	switch {
	case errors.Is(err, syncer.ErrOffline), errors.Is(err, syncer.ErrClosed):
		writeError(w, WrapKind(op, ErrUnavailable, err))
		return
	case errors.Is(err, syncer.ErrSyncInProgress):
		writeError(w, WrapKind(op, ErrConflict, err))
		return
	}
	writeJSON(w, http.StatusOK, h.store.SyncStatus())
}

// HandleConnectivity handles POST /connectivity.
func (h *SyncHandler) HandleConnectivity(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_connectivity"
	if h.sw == nil {
		writeError(w, WrapKind(op, ErrConflict, errors.New("connectivity is driven by a probe")))
		return
	}
	var req connectivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Online == nil {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing online")))
		return
	}
	changed := h.sw.Set(*req.Online)
	writeJSON(w, http.StatusOK, connectivityResponse{Online: h.sw.Online(), Changed: changed})
}

// HandleStream handles GET /sync/ws. The current status is sent on connect,
// then every change. Updates that find the buffer full are dropped; the next
// one carries the latest state.
func (h *SyncHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	updates := make(chan model.SyncStatus, messageBufferSize)
	updates <- h.store.SyncStatus()
	unsubscribe := h.store.SubscribeSyncStatus(func(s model.SyncStatus) {
		select {
		case updates <- s:
		default:
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(pongDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongDeadline))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case s := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(s); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
