package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharetube/multiview/internal/metrics"
	"github.com/sharetube/multiview/internal/repository/connection/inmemory"
	volumeinmemory "github.com/sharetube/multiview/internal/repository/volume/inmemory"
	"github.com/sharetube/multiview/internal/service/gift"
	"github.com/sharetube/multiview/internal/service/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGifts struct{}

func (fakeGifts) SendGift(_ context.Context, params *gift.SendGiftParams) (gift.Result, error) {
	if params.Amount <= 0 {
		return gift.Result{}, errors.New("amount must be greater than 0")
	}
	return gift.Result{Success: true}, nil
}

func (fakeGifts) SendDonation(context.Context, *gift.SendDonationParams) (gift.Result, error) {
	return gift.Result{Success: false, Error: "donation could not be sent, please try again"}, nil
}

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.Default()
	reg := prometheus.NewRegistry()
	viewerService := viewer.NewService(&viewer.Config{
		StreamsLimit:   3,
		TickInterval:   20 * time.Millisecond,
		SwapDuration:   50 * time.Millisecond,
		PersistTimeout: time.Second,
	}, &viewer.Deps{
		Volumes:  volumeinmemory.NewRepo(),
		Recorder: metrics.NewCollector(reg),
		Logger:   logger,
	})

	c := NewController(viewerService, fakeGifts{}, inmemory.NewRepo(logger), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)
	srv := httptest.NewServer(c.GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server, viewerID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/viewer?viewer-id=" + viewerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}))
}

// readUntil skips output until a message of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType && (match == nil || match(msg.Payload)) {
			return msg.Payload
		}
	}
}

func viewWithStreams(n int) func(json.RawMessage) bool {
	return func(raw json.RawMessage) bool {
		var view viewer.View
		return json.Unmarshal(raw, &view) == nil && len(view.Streams) == n
	}
}

func TestViewerSessionOverWebsocket(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "viewer-1")

	readUntil(t, conn, "VIEW", viewWithStreams(0))

	send(t, conn, "ADD_STREAM", map[string]any{"id": "a", "source_url": "https://cdn.example.com/a.m3u8"})
	raw := readUntil(t, conn, "VIEW", viewWithStreams(1))

	var view viewer.View
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.Equal(t, 0, view.MainIndex)
	assert.Equal(t, "a", view.Streams[0].ID)
	assert.Equal(t, viewer.QualityAuto, view.Quality)

	send(t, conn, "MEDIA_EVENT", map[string]any{
		"stream_id": "a",
		"event":     "mounted",
		"report":    map[string]any{"paused": true, "volume": 1, "duration": 60},
	})
	readUntil(t, conn, "MEDIA_COMMAND", func(raw json.RawMessage) bool {
		var cmd struct {
			StreamID string `json:"stream_id"`
			Op       string `json:"op"`
		}
		return json.Unmarshal(raw, &cmd) == nil && cmd.StreamID == "a" && cmd.Op == "play"
	})

	send(t, conn, "SET_VOLUME", map[string]any{"volume": 150})
	raw = readUntil(t, conn, "ERROR", nil)
	assert.Contains(t, string(raw), "volume")

	send(t, conn, "SET_VOLUME", map[string]any{"volume": 40})
	readUntil(t, conn, "VIEW", func(raw json.RawMessage) bool {
		var view viewer.View
		return json.Unmarshal(raw, &view) == nil && len(view.Streams) == 1 && view.Streams[0].State.Volume == 40
	})

	send(t, conn, "SEND_GIFT", map[string]any{"stream_id": "a", "amount": 5, "currency_id": "USD"})
	raw = readUntil(t, conn, "GIFT_RESULT", nil)
	assert.JSONEq(t, `{"success":true}`, string(raw))

	send(t, conn, "UNKNOWN", nil)
	readUntil(t, conn, "ERROR", nil)

	send(t, conn, "REMOVE_STREAM", map[string]any{"index": 0})
	readUntil(t, conn, "LEAVE", nil)
}

func TestSecondConnectionForSameViewerIsRejected(t *testing.T) {
	srv := newTestServer(t)
	first := dial(t, srv, "viewer-1")
	readUntil(t, first, "VIEW", nil)

	second := dial(t, srv, "viewer-1")
	require.NoError(t, second.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := second.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, closeAlreadyConnected, closeErr.Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
