package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/multiview/internal/repository/connection"
	"github.com/sharetube/multiview/internal/service/viewer"
	"github.com/sharetube/multiview/pkg/ctxlogger"
)

const closeAlreadyConnected = 4009

type connectViewerParams struct {
	ViewerID string `json:"viewer-id" validate:"omitempty,max=64"`
}

func (c controller) connectViewer(w http.ResponseWriter, r *http.Request) {
	params := connectViewerParams{ViewerID: r.URL.Query().Get("viewer-id")}
	if errs, ok := c.validate.Validate(&params); !ok {
		c.logger.DebugContext(r.Context(), "invalid connect params", "errors", errs)
		http.Error(w, "invalid viewer-id", http.StatusBadRequest)
		return
	}
	viewerID := params.ViewerID
	if viewerID == "" {
		viewerID = uuid.NewString()
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	if err := c.connRepo.Add(conn, viewerID); err != nil {
		c.logger.InfoContext(r.Context(), "failed to add conn", "viewer_id", viewerID, "error", err)
		if errors.Is(err, connection.ErrAlreadyExists) {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(closeAlreadyConnected, "already connected"),
				time.Now().Add(writeWait),
			)
		}
		return
	}
	defer c.connRepo.RemoveByConn(conn)

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("viewer_id", viewerID))

	vc := newViewerConn(conn, c.logger)
	session := c.viewerService.Start(ctx, &viewer.StartParams{
		ViewerID:   viewerID,
		Publisher:  vc,
		Fullscreen: vc.fullscreenAPIs(),
	})
	defer session.Close()

	view, err := session.View()
	if err != nil {
		c.logger.WarnContext(ctx, "failed to get view", "error", err)
		return
	}
	vc.Publish(&view)

	ctx = context.WithValue(ctx, viewerConnCtxKey, vc)
	ctx = context.WithValue(ctx, sessionCtxKey, session)

	if err := c.getWSRouter().ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "viewer disconnected", "error", err)
		return
	}
}

func (c controller) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
