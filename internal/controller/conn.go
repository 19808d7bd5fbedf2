package controller

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/multiview/internal/media/remote"
	"github.com/sharetube/multiview/internal/service/viewer"
	"github.com/sharetube/multiview/pkg/fullscreen"
	"golang.org/x/exp/slices"
)

const writeWait = 5 * time.Second

var fullscreenVendors = []string{"standard", "webkit", "moz", "ms"}

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// viewerConn is the viewer's side of the session: it publishes views and
// sends media commands. Writes come from both the session goroutine and the
// reader goroutine, so they are serialized.
type viewerConn struct {
	conn       *websocket.Conn
	fullscreen []*remote.FullscreenAPI
	logger     *slog.Logger

	mu sync.Mutex
}

func newViewerConn(conn *websocket.Conn, logger *slog.Logger) *viewerConn {
	vc := &viewerConn{conn: conn, logger: logger}
	for _, vendor := range fullscreenVendors {
		vc.fullscreen = append(vc.fullscreen, remote.NewFullscreenAPI(vendor, vc))
	}

	return vc
}

func (vc *viewerConn) write(output *Output) error {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	vc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return vc.conn.WriteJSON(output)
}

func (vc *viewerConn) Publish(view *viewer.View) {
	if err := vc.write(&Output{Type: "VIEW", Payload: view}); err != nil {
		vc.logger.Debug("failed to publish view", "error", err)
	}
}

// Leave tells the page there is nothing left to watch and starts the close
// handshake.
func (vc *viewerConn) Leave() {
	if err := vc.write(&Output{Type: "LEAVE", Payload: nil}); err != nil {
		vc.logger.Debug("failed to write leave", "error", err)
	}

	vc.mu.Lock()
	defer vc.mu.Unlock()

	vc.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "leave"),
		time.Now().Add(writeWait),
	)
}

func (vc *viewerConn) SendCommand(cmd *remote.Command) error {
	return vc.write(&Output{Type: "MEDIA_COMMAND", Payload: cmd})
}

func (vc *viewerConn) fullscreenAPIs() []fullscreen.API {
	apis := make([]fullscreen.API, 0, len(vc.fullscreen))
	for _, api := range vc.fullscreen {
		apis = append(apis, api)
	}

	return apis
}

// setFullscreenSupport marks the vendor APIs the page reported as usable.
func (vc *viewerConn) setFullscreenSupport(supported []string) {
	for _, api := range vc.fullscreen {
		api.SetAvailable(slices.Contains(supported, api.Name()))
	}
}
