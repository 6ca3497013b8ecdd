package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"brewdash/backend/services/dashboard-service/internal/models"
	"brewdash/backend/services/dashboard-service/internal/reconcile"
	"brewdash/backend/services/dashboard-service/internal/session"
)

const maxMessageSize = 64 * 1024

// WSOptions tunes session connections.
type WSOptions struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
}

// WSHandler upgrades /ws and runs one session per connection.
type WSHandler struct {
	snapshots SnapshotSource
	fetcher   session.Fetcher
	manager   *session.Manager
	opts      WSOptions
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewWSHandler builds ws handler.
func NewWSHandler(snapshots SnapshotSource, fetcher session.Fetcher, manager *session.Manager, opts WSOptions, logger *zap.Logger) *WSHandler {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	return &WSHandler{
		snapshots: snapshots,
		fetcher:   fetcher,
		manager:   manager,
		opts:      opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Serve handles GET /ws. The seed is resolved before upgrading so a load failure is
// reported as a plain HTTP error.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Current(r.Context())
	if err != nil {
		h.logger.Error("session refused, seed unavailable", zap.Error(err))
		writeError(w, http.StatusInternalServerError, models.ErrorKindSeedLoad, err.Error())
		return
	}
	core, err := reconcile.New(snap.Series)
	if err != nil {
		kind := models.ErrorKindInternal
		if errors.Is(err, models.ErrEmptySeed) {
			kind = models.ErrorKindSeedLoad
		}
		h.logger.Error("session refused", zap.String("hydrometer_id", snap.HydrometerID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, kind, err.Error())
		return
	}
	core.SetCredentials(snap.AccessToken, snap.HydrometerID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	pongWait := 2 * h.opts.PingInterval
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	s := session.New(conn, core, h.fetcher, session.Options{
		Formatter:    formatterFor(r),
		WriteTimeout: h.opts.WriteTimeout,
	}, h.logger)
	h.manager.Add(s)
	defer h.manager.Remove(s.ID())

	h.logger.Info("session opened", zap.String("session_id", s.ID().String()), zap.String("hydrometer_id", snap.HydrometerID))
	if err := s.Run(r.Context()); err != nil {
		h.logger.Info("session ended", zap.String("session_id", s.ID().String()), zap.Error(err))
		return
	}
	h.logger.Info("session ended", zap.String("session_id", s.ID().String()))
}
