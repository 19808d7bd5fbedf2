package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/multiview/internal/service/gift"
	"github.com/sharetube/multiview/internal/service/viewer"
	"github.com/sharetube/multiview/pkg/validator"
)

type iViewerService interface {
	Start(context.Context, *viewer.StartParams) *viewer.Session
}

type iGiftService interface {
	SendGift(context.Context, *gift.SendGiftParams) (gift.Result, error)
	SendDonation(context.Context, *gift.SendDonationParams) (gift.Result, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, viewerID string) error
	RemoveByConn(conn *websocket.Conn) error
}

type controller struct {
	viewerService iViewerService
	giftService   iGiftService
	connRepo      iConnRepo
	metrics       http.Handler
	upgrader      websocket.Upgrader
	validate      *validator.Validator
	logger        *slog.Logger
}

func NewController(viewerService iViewerService, giftService iGiftService, connRepo iConnRepo, metrics http.Handler, logger *slog.Logger) *controller {
	return &controller{
		viewerService: viewerService,
		giftService:   giftService,
		connRepo:      connRepo,
		metrics:       metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
}
