package wsrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingInput struct {
	N int `json:"n"`
}

func serve(t *testing.T, r *WSRouter) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		r.ServeConn(context.Background(), conn)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestServeConnDispatchesTypedPayload(t *testing.T) {
	r := New()

	var (
		mu    sync.Mutex
		trace []string
		got   []int
	)
	r.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, input any) error {
			mu.Lock()
			trace = append(trace, GetMessageTypeFromCtx(ctx))
			mu.Unlock()
			return next(ctx, conn, input)
		}
	})
	Handle(r, "PING", func(_ context.Context, conn *websocket.Conn, input pingInput) error {
		mu.Lock()
		got = append(got, input.N)
		mu.Unlock()
		return conn.WriteJSON(map[string]int{"pong": input.N})
	})

	conn := serve(t, r)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "PING", "payload": map[string]int{"n": 7}}))

	var out map[string]int
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, 7, out["pong"])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PING"}, trace)
	assert.Equal(t, []int{7}, got)
}

func TestServeConnReportsErrors(t *testing.T) {
	r := New()
	r.OnError(func(_ context.Context, conn *websocket.Conn, err error) {
		conn.WriteJSON(map[string]string{"error": err.Error()})
	})
	Handle(r, "PING", func(context.Context, *websocket.Conn, pingInput) error {
		return nil
	})

	conn := serve(t, r)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "NOPE"}))
	var out map[string]string
	require.NoError(t, conn.ReadJSON(&out))
	assert.Contains(t, out["error"], ErrUnknownMessageType.Error())

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "PING", "payload": "not an object"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Contains(t, out["error"], ErrInvalidPayload.Error())
}
